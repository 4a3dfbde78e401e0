// Package world models running map partitions, their cells and regions, and
// the placement of live NPC objects on them.
package world

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrInvalidCell   = errors.New("world: no enterable cell")
	ErrAlreadyLive   = errors.New("world: npc already live")
	ErrNotLive       = errors.New("world: npc not live")
	ErrUnknownMap    = errors.New("world: unknown map")
	ErrUnknownRegion = errors.New("world: unknown region")
)

// Point is a cell coordinate within a partition
type Point struct {
	X int `json:"x" hcl:"x"`
	Y int `json:"y" hcl:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Within reports whether q lies inside the square of radius r around p
func (p Point) Within(q Point, r int) bool {
	return abs(p.X-q.X) <= r && abs(p.Y-q.Y) <= r
}

// Cell is one addressable location in a partition
type Cell struct {
	Point     Point
	Blocked   bool
	occupants map[int]*LiveObject
}

// Enterable reports whether an object may be placed on the cell
func (c *Cell) Enterable() bool {
	return c != nil && !c.Blocked
}

// Occupants returns the live objects on the cell ordered by object id
func (c *Cell) Occupants() []*LiveObject {
	return sortedObjects(c.occupants)
}

// Partition is one running map instance
type Partition struct {
	MapID  int
	Name   string
	Width  int
	Height int

	cells     []*Cell
	npcs      map[int]*LiveObject // by object id
	observers map[int]Point
}

// NewPartition returns a partition with no cells
func NewPartition(mapID int, name string, width, height int) *Partition {
	return &Partition{
		MapID:     mapID,
		Name:      name,
		Width:     width,
		Height:    height,
		cells:     make([]*Cell, max(width, 0)*max(height, 0)),
		npcs:      make(map[int]*LiveObject),
		observers: make(map[int]Point),
	}
}

// SetCell defines the cell at p. Points outside the bounds are rejected.
func (pt *Partition) SetCell(p Point, blocked bool) error {
	i, ok := pt.offset(p)
	if !ok {
		return fmt.Errorf("%w: %s outside map %d", ErrInvalidCell, p, pt.MapID)
	}
	if c := pt.cells[i]; c != nil {
		c.Blocked = blocked
		return nil
	}
	pt.cells[i] = &Cell{Point: p, Blocked: blocked, occupants: make(map[int]*LiveObject)}
	return nil
}

// Cell returns the cell at p, or nil when there is none
func (pt *Partition) Cell(p Point) *Cell {
	i, ok := pt.offset(p)
	if !ok {
		return nil
	}
	return pt.cells[i]
}

// NPCs returns the live objects registered on the partition
func (pt *Partition) NPCs() []*LiveObject {
	return sortedObjects(pt.npcs)
}

// AddObserver records a viewer (player connection) at p
func (pt *Partition) AddObserver(id int, p Point) {
	pt.observers[id] = p
}

// RemoveObserver forgets a viewer
func (pt *Partition) RemoveObserver(id int) {
	delete(pt.observers, id)
}

// ObserversNear returns the ids of observers within r of p
func (pt *Partition) ObserversNear(p Point, r int) []int {
	var ids []int
	for id, at := range pt.observers {
		if at.Within(p, r) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (pt *Partition) offset(p Point) (int, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= pt.Width || p.Y >= pt.Height {
		return 0, false
	}
	return p.Y*pt.Width + p.X, true
}

// Region is a named set of points on one map
type Region struct {
	ID          int     `json:"id"`
	MapID       int     `json:"map_id"`
	Description string  `json:"description"`
	Points      []Point `json:"points,omitempty"`
}

// World is the registry of partitions and regions
type World struct {
	partitions map[int]*Partition
	regions    map[int]*Region
}

// New returns an empty World
func New() *World {
	return &World{
		partitions: make(map[int]*Partition),
		regions:    make(map[int]*Region),
	}
}

// AddPartition registers a partition under its map id
func (w *World) AddPartition(pt *Partition) error {
	if pt.MapID <= 0 {
		return fmt.Errorf("invalid map id %d", pt.MapID)
	}
	if _, ok := w.partitions[pt.MapID]; ok {
		return fmt.Errorf("map %d already registered", pt.MapID)
	}
	w.partitions[pt.MapID] = pt
	return nil
}

// Partition returns the partition for a map id, or nil
func (w *World) Partition(mapID int) *Partition {
	return w.partitions[mapID]
}

// Partitions returns every partition ordered by map id
func (w *World) Partitions() []*Partition {
	out := slices.Collect(maps.Values(w.partitions))
	slices.SortFunc(out, func(a, b *Partition) int { return cmp.Compare(a.MapID, b.MapID) })
	return out
}

// SearchMaps returns up to limit partitions whose name or id contains keyword
func (w *World) SearchMaps(keyword string, limit int) []*Partition {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	var out []*Partition
	for _, pt := range w.Partitions() {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keyword == "" ||
			strings.Contains(strings.ToLower(pt.Name), keyword) ||
			strings.Contains(strconv.Itoa(pt.MapID), keyword) {
			out = append(out, pt)
		}
	}
	return out
}

// MapName returns the name of a map, or "" when the id does not resolve
func (w *World) MapName(mapID int) string {
	if pt := w.partitions[mapID]; pt != nil {
		return pt.Name
	}
	return ""
}

// AddRegion registers a region. Its map must already be registered.
func (w *World) AddRegion(r *Region) error {
	if r.ID <= 0 {
		return fmt.Errorf("invalid region id %d", r.ID)
	}
	if _, ok := w.regions[r.ID]; ok {
		return fmt.Errorf("region %d already registered", r.ID)
	}
	if w.partitions[r.MapID] == nil {
		return fmt.Errorf("region %d: %w %d", r.ID, ErrUnknownMap, r.MapID)
	}
	w.regions[r.ID] = r
	return nil
}

// Region returns the region with the given id, or nil
func (w *World) Region(id int) *Region {
	return w.regions[id]
}

// Regions returns every region ordered by map name, then description
func (w *World) Regions() []*Region {
	out := slices.Collect(maps.Values(w.regions))
	slices.SortFunc(out, func(a, b *Region) int {
		return cmp.Or(
			cmp.Compare(w.MapName(a.MapID), w.MapName(b.MapID)),
			cmp.Compare(a.Description, b.Description),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}

func sortedObjects(m map[int]*LiveObject) []*LiveObject {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b *LiveObject) int { return cmp.Compare(a.ObjectID, b.ObjectID) })
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
