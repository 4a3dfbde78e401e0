// Package admin is the boundary between request handlers and the dialogue,
// world and item packages. Every call is checked against the caller's tier,
// serialized behind one lock and answered with a Result envelope.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/access"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/items"
	"github.com/jwebster45206/npc-engine/pkg/storage"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// AuditSink receives one line per successful mutation
type AuditSink interface {
	Record(ctx context.Context, line string) error
}

// Deps are the collaborators of a Service. Storage and Audit may be nil.
type Deps struct {
	Store     *dialogue.Store
	World     *world.World
	Placement *world.Placement
	Catalog   *items.Catalog
	Storage   storage.Storage
	Audit     AuditSink
	Logger    *slog.Logger
}

// Service exposes the admin operations
type Service struct {
	mu        sync.Mutex
	store     *dialogue.Store
	world     *world.World
	placement *world.Placement
	catalog   *items.Catalog

	storage storage.Storage
	audit   AuditSink
	logger  *slog.Logger

	lastObserverID int
}

// NewService creates a Service over already-loaded state
func NewService(d Deps) *Service {
	return &Service{
		store:     d.Store,
		world:     d.World,
		placement: d.Placement,
		catalog:   d.Catalog,
		storage:   d.Storage,
		audit:     d.Audit,
		logger:    d.Logger,
	}
}

// query runs a read-only operation
func (s *Service) query(ctx context.Context, required access.Tier, name string, fn func() (Result, error)) Result {
	return s.run(ctx, required, name, false, fn)
}

// mutate runs a write. On success the audit line is recorded and a snapshot
// taken under the lock is persisted after the lock is released.
func (s *Service) mutate(ctx context.Context, name string, fn func() (Result, error)) Result {
	return s.run(ctx, access.SuperAdmin, name, true, fn)
}

func (s *Service) run(ctx context.Context, required access.Tier, name string, mutates bool, fn func() (Result, error)) Result {
	caller := access.FromContext(ctx)
	if !caller.Allows(required) {
		s.logger.Warn("Admin operation denied",
			"operation", name,
			"tier", caller.String(),
			"required", required.String())
		return denied(required)
	}

	res, snap := s.locked(name, mutates, fn)
	if !mutates || !res.Success {
		return res
	}

	s.recordAudit(ctx, caller, res.Message)
	if snap != nil {
		s.persist(ctx, snap)
	}
	return res
}

func (s *Service) locked(name string, mutates bool, fn func() (Result, error)) (res Result, snap *storage.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Admin operation panicked",
				"operation", name,
				"panic", r,
				"stack", string(debug.Stack()))
			res = Result{Message: fmt.Sprintf("%s failed: %v", name, r), Category: CategoryUnexpected}
			snap = nil
		}
	}()

	res, err := fn()
	if err != nil {
		return s.failure(name, err), nil
	}
	if mutates && s.storage != nil {
		snap = s.snapshotLocked()
	}
	return res, snap
}

func (s *Service) failure(name string, err error) Result {
	cat := classify(err)
	if cat == CategoryUnexpected {
		s.logger.Error("Admin operation failed", "operation", name, "error", err)
	} else {
		s.logger.Debug("Admin operation rejected", "operation", name, "category", cat, "error", err)
	}
	return Result{Message: fmt.Sprintf("%s failed: %v", name, err), Category: cat}
}

func (s *Service) recordAudit(ctx context.Context, caller access.Tier, message string) {
	line := fmt.Sprintf("[Admin:%s] %s", caller, message)
	s.logger.Info(line)
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, line); err != nil {
		s.logger.Warn("Failed to record audit line", "error", err)
	}
}

// snapshotLocked copies the state for persistence; s.mu must be held
func (s *Service) snapshotLocked() *storage.Snapshot {
	return &storage.Snapshot{
		Dialogue:  s.store.Snapshot(),
		Items:     s.catalog.Snapshot(),
		Placement: s.placement.Snapshot(),
		SavedAt:   time.Now(),
	}
}

func (s *Service) persist(ctx context.Context, snap *storage.Snapshot) {
	if err := s.storage.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("Failed to persist snapshot", "error", err)
	}
}

// Save persists the current state regardless of pending mutations
func (s *Service) Save(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.storage.SaveSnapshot(ctx, snap)
}

// resolvePage finds a page through the index or the graph
func (s *Service) resolvePage(id int) (*dialogue.Page, error) {
	return s.store.ResolvePage(id)
}

// requireItem checks an optional item reference; 0 means none
func (s *Service) requireItem(id int) error {
	if id != 0 && s.catalog.Item(id) == nil {
		return errNotFound("item %d", id)
	}
	return nil
}

// requireMap checks an optional map reference; 0 means none
func (s *Service) requireMap(id int) error {
	if id != 0 && s.world.Partition(id) == nil {
		return errNotFound("map %d", id)
	}
	return nil
}

// requireTarget checks an optional page reference; 0 means none
func (s *Service) requireTarget(id int) error {
	if id == 0 {
		return nil
	}
	_, err := s.resolvePage(id)
	return err
}
