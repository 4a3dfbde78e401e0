package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/world"
	"github.com/redis/go-redis/v9"
)

// Event is the envelope published for every position update
type Event struct {
	ID        string               `json:"id"`
	Type      world.UpdateKind     `json:"type"`
	MapID     int                  `json:"map_id"`
	Timestamp time.Time            `json:"timestamp"`
	Data      world.PositionUpdate `json:"data"`
}

// Channel returns the pub/sub channel for one map
func Channel(mapID int) string {
	return fmt.Sprintf("map-events:%d", mapID)
}

// Broadcaster publishes position updates to Redis Pub/Sub for the websocket relay
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ world.Notifier = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// NotifyPosition publishes u on the channel of its map. A move between maps
// is also published on the map the object left.
func (b *Broadcaster) NotifyPosition(ctx context.Context, u world.PositionUpdate) error {
	event := Event{
		ID:        uuid.New().String(),
		Type:      u.Kind,
		MapID:     u.MapID,
		Timestamp: time.Now().UTC(),
		Data:      u,
	}
	if err := b.publishToMap(ctx, u.MapID, event); err != nil {
		return err
	}
	if u.FromMapID != 0 && u.FromMapID != u.MapID {
		return b.publishToMap(ctx, u.FromMapID, event)
	}
	return nil
}

// publishToMap publishes an event to the map-specific channel
func (b *Broadcaster) publishToMap(ctx context.Context, mapID int, event Event) error {
	channel := Channel(mapID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"event_id", event.ID,
		"npc_id", event.Data.NPCID)

	return nil
}
