package world

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
)

// LiveObject is the running instance of an NPC definition
type LiveObject struct {
	ObjectID int
	NPCID    int
	Point    Point

	partition *Partition
	cell      *Cell
}

// MapID returns the id of the partition the object is on
func (o *LiveObject) MapID() int {
	return o.partition.MapID
}

// Partition returns the partition the object is on
func (o *LiveObject) Partition() *Partition {
	return o.partition
}

// Cell returns the cell the object occupies
func (o *LiveObject) Cell() *Cell {
	return o.cell
}

// UpdateKind says what happened to a live object
type UpdateKind string

const (
	UpdateSpawned   UpdateKind = "npc.spawned"
	UpdateMoved     UpdateKind = "npc.moved"
	UpdateDespawned UpdateKind = "npc.despawned"
)

// PositionUpdate is sent to the notifier after a placement change
type PositionUpdate struct {
	Kind      UpdateKind `json:"kind"`
	ObjectID  int        `json:"object_id"`
	NPCID     int        `json:"npc_id"`
	MapID     int        `json:"map_id"`
	FromMapID int        `json:"from_map_id,omitempty"`
	Point     Point      `json:"point"`
	Observers []int      `json:"observers,omitempty"` // viewers within range of Point
}

// Notifier delivers position updates to observers
type Notifier interface {
	NotifyPosition(ctx context.Context, u PositionUpdate) error
}

// PlacementConfig tunes notification delivery
type PlacementConfig struct {
	ViewRange int // observers within this many cells are notified
	QueueSize int // pending updates before new ones are dropped
}

// Placement owns the live objects of every NPC. It is not safe for
// concurrent use, except for Run which only touches the notify queue.
type Placement struct {
	world        *World
	live         map[int]*LiveObject // by npc id
	lastObjectID int

	viewRange int
	notifier  Notifier
	queue     chan PositionUpdate
	logger    *slog.Logger
	intn      func(n int) int
}

// NewPlacement creates a Placement. notifier may be nil.
func NewPlacement(w *World, notifier Notifier, logger *slog.Logger, cfg PlacementConfig) *Placement {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.ViewRange <= 0 {
		cfg.ViewRange = 18
	}
	return &Placement{
		world:     w,
		live:      make(map[int]*LiveObject),
		viewRange: cfg.ViewRange,
		notifier:  notifier,
		queue:     make(chan PositionUpdate, cfg.QueueSize),
		logger:    logger,
		intn:      rand.IntN,
	}
}

// Run delivers queued position updates until ctx is cancelled
func (pl *Placement) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-pl.queue:
			if err := pl.notifier.NotifyPosition(ctx, u); err != nil {
				pl.logger.Warn("Failed to deliver position update",
					"error", err,
					"npc_id", u.NPCID,
					"map_id", u.MapID)
			}
		}
	}
}

// Live returns the live object of an NPC, or nil when it is offline
func (pl *Placement) Live(npcID int) *LiveObject {
	return pl.live[npcID]
}

// Online returns every live object ordered by NPC id
func (pl *Placement) Online() []*LiveObject {
	out := make([]*LiveObject, 0, len(pl.live))
	for _, o := range pl.live {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *LiveObject) int { return cmp.Compare(a.NPCID, b.NPCID) })
	return out
}

// Spawn places a new live object for npcID on the given map. The cell at p
// must exist and be enterable; otherwise nothing changes and the NPC stays
// offline.
func (pl *Placement) Spawn(npcID, mapID int, p Point) (*LiveObject, error) {
	if pl.live[npcID] != nil {
		return nil, fmt.Errorf("npc %d: %w", npcID, ErrAlreadyLive)
	}
	pt, cell, err := pl.target(mapID, p)
	if err != nil {
		return nil, err
	}

	pl.lastObjectID++
	obj := &LiveObject{ObjectID: pl.lastObjectID, NPCID: npcID}
	pl.attach(obj, pt, cell)
	pl.live[npcID] = obj

	pl.notify(UpdateSpawned, obj, 0)
	return obj, nil
}

// Move relocates obj to p on the map toMapID. An invalid target leaves the
// object exactly where it was.
func (pl *Placement) Move(obj *LiveObject, toMapID int, p Point) error {
	if obj == nil || pl.live[obj.NPCID] != obj {
		return ErrNotLive
	}
	pt, cell, err := pl.target(toMapID, p)
	if err != nil {
		return err
	}

	from := obj.partition
	delete(obj.cell.occupants, obj.ObjectID)
	if pt != from {
		delete(from.npcs, obj.ObjectID)
	}
	pl.attach(obj, pt, cell)

	pl.notify(UpdateMoved, obj, from.MapID)
	return nil
}

// AssignRegion relocates an NPC into a region, spawning it when offline. A
// nil point picks one of the region's points at random.
func (pl *Placement) AssignRegion(npcID, regionID int, p *Point) (*LiveObject, error) {
	region := pl.world.Region(regionID)
	if region == nil {
		return nil, fmt.Errorf("%w %d", ErrUnknownRegion, regionID)
	}
	var at Point
	switch {
	case p != nil:
		at = *p
	case len(region.Points) == 0:
		return nil, fmt.Errorf("%w: region %d has no points", ErrInvalidCell, regionID)
	default:
		at = region.Points[pl.intn(len(region.Points))]
	}

	if obj := pl.live[npcID]; obj != nil {
		if err := pl.Move(obj, region.MapID, at); err != nil {
			return nil, err
		}
		return obj, nil
	}
	return pl.Spawn(npcID, region.MapID, at)
}

// Placed is the persisted position of a live NPC
type Placed struct {
	NPCID int   `json:"npc_id"`
	MapID int   `json:"map_id"`
	Point Point `json:"point"`
}

// Snapshot lists the position of every live object
func (pl *Placement) Snapshot() []Placed {
	online := pl.Online()
	out := make([]Placed, len(online))
	for i, o := range online {
		out[i] = Placed{NPCID: o.NPCID, MapID: o.MapID(), Point: o.Point}
	}
	return out
}

// Restore spawns every persisted position. Entries for NPCs that known
// rejects, or whose cell is no longer valid, are skipped and returned so the
// caller can report them. A nil known accepts every NPC id.
func (pl *Placement) Restore(placed []Placed, known func(npcID int) bool) []Placed {
	var skipped []Placed
	for _, p := range placed {
		if known != nil && !known(p.NPCID) {
			pl.logger.Warn("Skipping position of unknown NPC", "npc_id", p.NPCID, "map_id", p.MapID)
			skipped = append(skipped, p)
			continue
		}
		if _, err := pl.Spawn(p.NPCID, p.MapID, p.Point); err != nil {
			pl.logger.Warn("NPC left offline", "npc_id", p.NPCID, "map_id", p.MapID, "error", err)
			skipped = append(skipped, p)
		}
	}
	return skipped
}

// Despawn removes an NPC's live object
func (pl *Placement) Despawn(npcID int) error {
	obj := pl.live[npcID]
	if obj == nil {
		return fmt.Errorf("npc %d: %w", npcID, ErrNotLive)
	}
	delete(obj.cell.occupants, obj.ObjectID)
	delete(obj.partition.npcs, obj.ObjectID)
	delete(pl.live, npcID)

	pl.notify(UpdateDespawned, obj, 0)
	return nil
}

func (pl *Placement) target(mapID int, p Point) (*Partition, *Cell, error) {
	pt := pl.world.Partition(mapID)
	if pt == nil {
		return nil, nil, fmt.Errorf("%w %d", ErrUnknownMap, mapID)
	}
	cell := pt.Cell(p)
	if !cell.Enterable() {
		return nil, nil, fmt.Errorf("%w at %s on map %d", ErrInvalidCell, p, mapID)
	}
	return pt, cell, nil
}

func (pl *Placement) attach(obj *LiveObject, pt *Partition, cell *Cell) {
	obj.partition = pt
	obj.cell = cell
	obj.Point = cell.Point
	pt.npcs[obj.ObjectID] = obj
	cell.occupants[obj.ObjectID] = obj
}

// notify never blocks: a full queue drops the update
func (pl *Placement) notify(kind UpdateKind, obj *LiveObject, fromMapID int) {
	if pl.notifier == nil {
		return
	}
	u := PositionUpdate{
		Kind:      kind,
		ObjectID:  obj.ObjectID,
		NPCID:     obj.NPCID,
		MapID:     obj.partition.MapID,
		Point:     obj.Point,
		Observers: obj.partition.ObserversNear(obj.Point, pl.viewRange),
	}
	if fromMapID != u.MapID {
		u.FromMapID = fromMapID
	}
	select {
	case pl.queue <- u:
	default:
		pl.logger.Warn("Notification queue full, dropping position update",
			"npc_id", obj.NPCID,
			"map_id", u.MapID)
	}
}
