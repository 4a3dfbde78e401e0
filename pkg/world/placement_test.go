package world

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestWorld builds map 1 (partitionA, 10x10, all open) and map 2
// (partitionB, 10x10, only (1,1) and (2,2) defined, (2,2) blocked)
func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := New()
	a := NewPartition(1, "partitionA", 10, 10)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			if err := a.SetCell(Point{x, y}, false); err != nil {
				t.Fatal(err)
			}
		}
	}
	b := NewPartition(2, "partitionB", 10, 10)
	if err := b.SetCell(Point{1, 1}, false); err != nil {
		t.Fatal(err)
	}
	if err := b.SetCell(Point{2, 2}, true); err != nil {
		t.Fatal(err)
	}
	for _, pt := range []*Partition{a, b} {
		if err := w.AddPartition(pt); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []PositionUpdate
	err     error
}

func (n *recordingNotifier) NotifyPosition(_ context.Context, u PositionUpdate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, u)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.updates)
}

func TestSpawn(t *testing.T) {
	tests := []struct {
		name    string
		mapID   int
		point   Point
		wantErr error
	}{
		{"open cell", 1, Point{5, 5}, nil},
		{"undefined cell", 2, Point{9, 9}, ErrInvalidCell},
		{"blocked cell", 2, Point{2, 2}, ErrInvalidCell},
		{"out of bounds", 1, Point{10, 0}, ErrInvalidCell},
		{"unknown map", 7, Point{1, 1}, ErrUnknownMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			pl := NewPlacement(w, nil, testLogger(), PlacementConfig{})

			obj, err := pl.Spawn(42, tt.mapID, tt.point)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Spawn() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if pl.Live(42) != nil {
					t.Error("failed spawn left a live object")
				}
				return
			}
			if obj.MapID() != tt.mapID || obj.Point != tt.point {
				t.Errorf("obj at map %d %s, want map %d %s", obj.MapID(), obj.Point, tt.mapID, tt.point)
			}
			pt := w.Partition(tt.mapID)
			if len(pt.NPCs()) != 1 || len(pt.Cell(tt.point).Occupants()) != 1 {
				t.Error("object not registered on partition and cell")
			}
		})
	}
}

func TestSpawn_SecondInstanceRejected(t *testing.T) {
	pl := NewPlacement(newTestWorld(t), nil, testLogger(), PlacementConfig{})
	if _, err := pl.Spawn(1, 1, Point{0, 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := pl.Spawn(1, 1, Point{1, 1}); !errors.Is(err, ErrAlreadyLive) {
		t.Errorf("Spawn() error = %v, want ErrAlreadyLive", err)
	}
}

func TestMove_InvalidTargetLeavesObjectUntouched(t *testing.T) {
	w := newTestWorld(t)
	pl := NewPlacement(w, nil, testLogger(), PlacementConfig{})
	obj, err := pl.Spawn(1, 1, Point{5, 5})
	if err != nil {
		t.Fatal(err)
	}
	cell := obj.Cell()

	err = pl.Move(obj, 2, Point{9, 9})
	if !errors.Is(err, ErrInvalidCell) {
		t.Fatalf("Move() error = %v, want ErrInvalidCell", err)
	}
	if obj.Point != (Point{5, 5}) || obj.MapID() != 1 || obj.Cell() != cell {
		t.Errorf("object changed after failed move: map %d %s", obj.MapID(), obj.Point)
	}
	if len(cell.Occupants()) != 1 || len(w.Partition(1).NPCs()) != 1 {
		t.Error("object detached after failed move")
	}
	if len(w.Partition(2).NPCs()) != 0 {
		t.Error("object registered on target after failed move")
	}
}

func TestMove_AcrossPartitions(t *testing.T) {
	w := newTestWorld(t)
	pl := NewPlacement(w, nil, testLogger(), PlacementConfig{})
	obj, err := pl.Spawn(1, 1, Point{5, 5})
	if err != nil {
		t.Fatal(err)
	}
	src := obj.Cell()

	if err := pl.Move(obj, 2, Point{1, 1}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if obj.MapID() != 2 || obj.Point != (Point{1, 1}) {
		t.Errorf("obj at map %d %s", obj.MapID(), obj.Point)
	}
	if len(src.Occupants()) != 0 || len(w.Partition(1).NPCs()) != 0 {
		t.Error("object still attached to source")
	}
	if len(w.Partition(2).Cell(Point{1, 1}).Occupants()) != 1 || len(w.Partition(2).NPCs()) != 1 {
		t.Error("object not attached to destination")
	}
}

func TestMove_WithinPartitionKeepsRegistration(t *testing.T) {
	w := newTestWorld(t)
	pl := NewPlacement(w, nil, testLogger(), PlacementConfig{})
	obj, _ := pl.Spawn(1, 1, Point{0, 0})
	if err := pl.Move(obj, 1, Point{3, 4}); err != nil {
		t.Fatal(err)
	}
	if len(w.Partition(1).NPCs()) != 1 {
		t.Error("object lost its partition registration")
	}
	if len(w.Partition(1).Cell(Point{0, 0}).Occupants()) != 0 {
		t.Error("old cell still occupied")
	}
}

func TestAssignRegion(t *testing.T) {
	w := newTestWorld(t)
	region := &Region{ID: 5, MapID: 1, Description: "market", Points: []Point{{2, 2}, {3, 3}, {4, 4}}}
	if err := w.AddRegion(region); err != nil {
		t.Fatal(err)
	}
	pl := NewPlacement(w, nil, testLogger(), PlacementConfig{})
	pl.intn = func(n int) int { return n - 1 }

	obj, err := pl.AssignRegion(9, 5, nil)
	if err != nil {
		t.Fatalf("AssignRegion() error = %v", err)
	}
	if obj.Point != (Point{4, 4}) {
		t.Errorf("spawned at %s, want (4,4)", obj.Point)
	}

	explicit := Point{7, 7}
	again, err := pl.AssignRegion(9, 5, &explicit)
	if err != nil {
		t.Fatal(err)
	}
	if again != obj || obj.Point != explicit {
		t.Errorf("expected live object moved to %s, got %s", explicit, obj.Point)
	}

	if _, err := pl.AssignRegion(9, 99, nil); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("AssignRegion() error = %v, want ErrUnknownRegion", err)
	}
}

func TestDespawn(t *testing.T) {
	w := newTestWorld(t)
	pl := NewPlacement(w, nil, testLogger(), PlacementConfig{})
	obj, _ := pl.Spawn(1, 1, Point{1, 1})
	if err := pl.Despawn(1); err != nil {
		t.Fatal(err)
	}
	if pl.Live(1) != nil || len(obj.Cell().Occupants()) != 0 || len(w.Partition(1).NPCs()) != 0 {
		t.Error("despawned object still registered")
	}
	if err := pl.Despawn(1); !errors.Is(err, ErrNotLive) {
		t.Errorf("Despawn() error = %v, want ErrNotLive", err)
	}
	if err := pl.Move(obj, 1, Point{2, 2}); !errors.Is(err, ErrNotLive) {
		t.Errorf("Move() on despawned object error = %v, want ErrNotLive", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	w := newTestWorld(t)
	pl := NewPlacement(w, nil, testLogger(), PlacementConfig{})
	_, _ = pl.Spawn(1, 1, Point{1, 1})
	_, _ = pl.Spawn(2, 2, Point{1, 1})

	placed := append(pl.Snapshot(), Placed{NPCID: 3, MapID: 2, Point: Point{9, 9}})

	fresh := NewPlacement(newTestWorld(t), nil, testLogger(), PlacementConfig{})
	skipped := fresh.Restore(placed, nil)
	if len(skipped) != 1 || skipped[0].NPCID != 3 {
		t.Errorf("skipped = %+v, want npc 3 only", skipped)
	}
	if len(fresh.Online()) != 2 {
		t.Errorf("online = %d, want 2", len(fresh.Online()))
	}
}

func TestRestore_SkipsUnknownNPCs(t *testing.T) {
	placed := []Placed{
		{NPCID: 1, MapID: 1, Point: Point{1, 1}},
		{NPCID: 7, MapID: 1, Point: Point{2, 2}},
	}
	pl := NewPlacement(newTestWorld(t), nil, testLogger(), PlacementConfig{})

	skipped := pl.Restore(placed, func(npcID int) bool { return npcID == 1 })
	if len(skipped) != 1 || skipped[0].NPCID != 7 {
		t.Errorf("skipped = %+v, want npc 7 only", skipped)
	}
	if pl.Live(7) != nil {
		t.Error("unknown npc 7 was spawned")
	}
	if pl.Live(1) == nil {
		t.Error("npc 1 should be live")
	}
}

func TestNotify_FireAndForget(t *testing.T) {
	w := newTestWorld(t)
	w.Partition(1).AddObserver(100, Point{6, 6})
	w.Partition(1).AddObserver(101, Point{0, 0})
	n := &recordingNotifier{err: errors.New("observer gone")}
	pl := NewPlacement(w, n, testLogger(), PlacementConfig{ViewRange: 2, QueueSize: 1})

	// queue holds one update; the second is dropped without blocking
	obj, err := pl.Spawn(1, 1, Point{5, 5})
	if err != nil {
		t.Fatal(err)
	}
	if err := pl.Move(obj, 1, Point{5, 6}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pl.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for n.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.updates) != 1 {
		t.Fatalf("delivered %d updates, want 1", len(n.updates))
	}
	u := n.updates[0]
	if u.Kind != UpdateSpawned || len(u.Observers) != 1 || u.Observers[0] != 100 {
		t.Errorf("update = %+v", u)
	}
}

func TestRegions_Ordering(t *testing.T) {
	w := newTestWorld(t)
	regions := []*Region{
		{ID: 1, MapID: 2, Description: "a"},
		{ID: 2, MapID: 1, Description: "z"},
		{ID: 3, MapID: 1, Description: "b"},
	}
	for _, r := range regions {
		if err := w.AddRegion(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.AddRegion(&Region{ID: 4, MapID: 9}); !errors.Is(err, ErrUnknownMap) {
		t.Errorf("AddRegion() error = %v, want ErrUnknownMap", err)
	}
	got := w.Regions()
	want := []int{3, 2, 1}
	for i, r := range got {
		if r.ID != want[i] {
			t.Fatalf("Regions() order = %v, want ids %v", got, want)
		}
	}
}
