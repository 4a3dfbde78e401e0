// Package items holds the item catalog and the per-item stat records that
// admin edits reconcile against.
package items

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
	ErrNotFound   = errors.New("items: not found")
	ErrValidation = errors.New("items: invalid input")
)

// ItemStat is one attribute of an item. Kind is unique per item.
type ItemStat struct {
	ID     int      `json:"id"`
	ItemID int      `json:"item_id"`
	Kind   StatKind `json:"kind"`
	Amount int      `json:"amount"`
}

// Item is a catalog entry
type Item struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Type      int              `json:"type"`
	Price     int              `json:"price"`
	Weight    int              `json:"weight"`
	StackSize int              `json:"stack_size"`
	Stats     []*ItemStat      `json:"stats"`
	Totals    map[StatKind]int `json:"totals,omitempty"` // derived from Stats
}

// ItemFields are the editable scalar fields of an Item
type ItemFields struct {
	Name      string
	Type      int
	Price     int
	Weight    int
	StackSize int
}

// Stat returns the item's stat of the given kind, or nil
func (i *Item) Stat(kind StatKind) *ItemStat {
	for _, s := range i.Stats {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// RecalculateTotals rebuilds the derived totals from the item's stats
func (i *Item) RecalculateTotals() {
	totals := make(map[StatKind]int, len(i.Stats))
	for _, s := range i.Stats {
		totals[s.Kind] += s.Amount
	}
	i.Totals = totals
}

// Catalog is the item index. It is not safe for concurrent use.
type Catalog struct {
	items      map[int]*Item
	stats      map[int]*ItemStat
	lastItemID int
	lastStatID int
}

// NewCatalog returns an empty Catalog
func NewCatalog() *Catalog {
	return &Catalog{
		items: make(map[int]*Item),
		stats: make(map[int]*ItemStat),
	}
}

// CreateItem adds an item. The name must not be blank; stack size defaults to 1.
func (c *Catalog) CreateItem(f ItemFields) (*Item, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrValidation)
	}
	c.lastItemID++
	item := &Item{ID: c.lastItemID}
	applyItemFields(item, f)
	item.RecalculateTotals()
	c.items[item.ID] = item
	return item, nil
}

// UpdateItem replaces the scalar fields of an item
func (c *Catalog) UpdateItem(id int, f ItemFields) error {
	item := c.items[id]
	if item == nil {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: item name is required", ErrValidation)
	}
	applyItemFields(item, f)
	return nil
}

// Item returns the item with the given id, or nil
func (c *Catalog) Item(id int) *Item {
	return c.items[id]
}

// Items returns every item ordered by id
func (c *Catalog) Items() []*Item {
	out := slices.Collect(maps.Values(c.items))
	slices.SortFunc(out, func(a, b *Item) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Stat returns the stat record with the given id, or nil
func (c *Catalog) Stat(id int) *ItemStat {
	return c.stats[id]
}

// Search returns up to limit items whose name contains keyword (case-insensitive)
// or whose id contains it. An empty keyword matches everything.
func (c *Catalog) Search(keyword string, limit int) []*Item {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	var out []*Item
	for _, item := range c.Items() {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keyword == "" ||
			strings.Contains(strings.ToLower(item.Name), keyword) ||
			strings.Contains(strconv.Itoa(item.ID), keyword) {
			out = append(out, item)
		}
	}
	return out
}

// Name returns the item's name, or "" when the id does not resolve
func (c *Catalog) Name(id int) string {
	if item := c.items[id]; item != nil {
		return item.Name
	}
	return ""
}

// AddItem registers an item built elsewhere (seed data, snapshots), keeping
// its id and stat ids. Ids must be unused.
func (c *Catalog) AddItem(item *Item) error {
	if item.ID <= 0 || c.items[item.ID] != nil {
		return fmt.Errorf("%w: duplicate or invalid item id %d", ErrValidation, item.ID)
	}
	seen := make(map[StatKind]bool, len(item.Stats))
	for _, s := range item.Stats {
		if s.ID <= 0 || c.stats[s.ID] != nil {
			return fmt.Errorf("%w: duplicate or invalid stat id %d", ErrValidation, s.ID)
		}
		if seen[s.Kind] {
			return fmt.Errorf("%w: item %d has stat %s twice", ErrValidation, item.ID, s.Kind)
		}
		seen[s.Kind] = true
	}
	for _, s := range item.Stats {
		s.ItemID = item.ID
		c.stats[s.ID] = s
		c.lastStatID = max(c.lastStatID, s.ID)
	}
	item.RecalculateTotals()
	c.items[item.ID] = item
	c.lastItemID = max(c.lastItemID, item.ID)
	return nil
}

// NextStatID reserves a fresh stat id
func (c *Catalog) NextStatID() int {
	c.lastStatID++
	return c.lastStatID
}

func applyItemFields(item *Item, f ItemFields) {
	item.Name = f.Name
	item.Type = f.Type
	item.Price = f.Price
	item.Weight = f.Weight
	item.StackSize = f.StackSize
	if item.StackSize <= 0 {
		item.StackSize = 1
	}
}
