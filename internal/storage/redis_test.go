package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/items"
	"github.com/jwebster45206/npc-engine/pkg/storage"
	"github.com/jwebster45206/npc-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := NewRedisClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("Failed to create redis client: %v", err)
	}

	rs := NewRedisStorage(client, "test:snapshot", logger)
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	if _, err := NewRedisClient("not a url"); err == nil {
		t.Error("expected an error for an invalid redis URL")
	}
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.Ping(ctx))
	require.NoError(t, rs.WaitForConnection(ctx, 3, time.Millisecond))

	mr.Close()
	assert.Error(t, rs.Ping(ctx))
	assert.Error(t, rs.WaitForConnection(ctx, 2, time.Millisecond))
}

func TestRedisStorage_LoadMissing(t *testing.T) {
	rs, _ := setupTestRedis(t)

	snap, err := rs.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisStorage_SaveLoadDelete(t *testing.T) {
	rs, mr := setupTestRedis(t)
	ctx := context.Background()

	store := dialogue.NewStore()
	npc, err := store.CreateNPC("Innkeeper", 3, 0)
	require.NoError(t, err)
	page := store.CreatePage(dialogue.PageFields{Description: "Greeting", Say: "Welcome!"})
	require.NoError(t, store.SetEntryPage(npc.ID, page.ID))

	catalog := items.NewCatalog()
	item, err := catalog.CreateItem(items.ItemFields{Name: "Ale", Price: 2})
	require.NoError(t, err)
	_, err = catalog.ReconcileStats(item.ID, map[items.StatKind]int{items.StatMaxAC: 5})
	require.NoError(t, err)

	snap := &storage.Snapshot{
		Dialogue:  store.Snapshot(),
		Items:     catalog.Snapshot(),
		Placement: []world.Placed{{NPCID: npc.ID, MapID: 1, Point: world.Point{X: 2, Y: 3}}},
	}
	require.NoError(t, rs.SaveSnapshot(ctx, snap))
	assert.True(t, mr.Exists("test:snapshot"))

	loaded, err := rs.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.False(t, loaded.SavedAt.IsZero())
	assert.Equal(t, snap.Placement, loaded.Placement)

	restored, err := dialogue.Restore(loaded.Dialogue)
	require.NoError(t, err)
	require.NotNil(t, restored.NPC(npc.ID))
	assert.Equal(t, page.ID, restored.NPC(npc.ID).EntryPageID)
	assert.Equal(t, "Welcome!", restored.Page(page.ID).Say)

	restoredCatalog, err := items.Restore(loaded.Items)
	require.NoError(t, err)
	require.NotNil(t, restoredCatalog.Item(item.ID))
	stat := restoredCatalog.Item(item.ID).Stat(items.StatMaxAC)
	require.NotNil(t, stat)
	assert.Equal(t, 5, stat.Amount)

	require.NoError(t, rs.DeleteSnapshot(ctx))
	loaded, err = rs.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_LoadCorrupt(t *testing.T) {
	rs, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("test:snapshot", "{not json"))

	_, err := rs.LoadSnapshot(context.Background())
	assert.Error(t, err)
}

func TestRedisStorage_SaveNil(t *testing.T) {
	rs, _ := setupTestRedis(t)
	assert.Error(t, rs.SaveSnapshot(context.Background(), nil))
}
