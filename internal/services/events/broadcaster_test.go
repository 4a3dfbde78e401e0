package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/npc-engine/pkg/world"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *Broadcaster) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return client, NewBroadcaster(client, logger)
}

func receive(t *testing.T, ch <-chan *redis.Message) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			t.Fatalf("Failed to unmarshal event: %v", err)
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_NotifyPosition(t *testing.T) {
	client, b := setupTestRedis(t)
	ctx := context.Background()

	pubsub := client.Subscribe(ctx, Channel(3))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	u := world.PositionUpdate{
		Kind:      world.UpdateSpawned,
		ObjectID:  7,
		NPCID:     2,
		MapID:     3,
		Point:     world.Point{X: 4, Y: 5},
		Observers: []int{11},
	}
	if err := b.NotifyPosition(ctx, u); err != nil {
		t.Fatalf("NotifyPosition() error = %v", err)
	}

	event := receive(t, pubsub.Channel())
	if event.ID == "" {
		t.Error("expected an event id")
	}
	if event.Type != world.UpdateSpawned || event.MapID != 3 {
		t.Errorf("event = %+v", event)
	}
	if event.Data.NPCID != 2 || event.Data.Point != (world.Point{X: 4, Y: 5}) {
		t.Errorf("data = %+v", event.Data)
	}
}

func TestBroadcaster_MoveBetweenMaps(t *testing.T) {
	client, b := setupTestRedis(t)
	ctx := context.Background()

	pubsub := client.Subscribe(ctx, Channel(1), Channel(2))
	defer pubsub.Close()
	for range 2 {
		if _, err := pubsub.Receive(ctx); err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}
	}

	u := world.PositionUpdate{Kind: world.UpdateMoved, NPCID: 5, MapID: 2, FromMapID: 1}
	if err := b.NotifyPosition(ctx, u); err != nil {
		t.Fatalf("NotifyPosition() error = %v", err)
	}

	ch := pubsub.Channel()
	first, second := receive(t, ch), receive(t, ch)
	if first.ID != second.ID {
		t.Errorf("both maps should see the same event, got %s and %s", first.ID, second.ID)
	}
}

func TestChannel(t *testing.T) {
	if got := Channel(42); got != "map-events:42" {
		t.Errorf("Channel(42) = %q", got)
	}
}
