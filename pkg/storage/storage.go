package storage

import (
	"context"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/items"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// Snapshot is the persisted admin-authored state: dialogue graph, item
// catalog and the positions of live NPCs
type Snapshot struct {
	Dialogue  *dialogue.Snapshot `json:"dialogue"`
	Items     *items.Snapshot    `json:"items"`
	Placement []world.Placed     `json:"placement,omitempty"`
	SavedAt   time.Time          `json:"saved_at"`
}

// Storage defines the persistence operations the engine needs
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Snapshot operations. LoadSnapshot returns nil, nil when nothing was saved yet.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context) error
}
