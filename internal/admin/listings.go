package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/access"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/items"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// SearchLimit caps item and map searches
const SearchLimit = 50

// OnlineNPC is one live NPC object
type OnlineNPC struct {
	ObjectID int         `json:"object_id"`
	NPCID    int         `json:"npc_id"`
	Name     string      `json:"name"`
	MapID    int         `json:"map_id"`
	MapName  string      `json:"map_name"`
	Point    world.Point `json:"point"`
}

// RegionSummary is one row of the region listing
type RegionSummary struct {
	ID          int    `json:"id"`
	MapID       int    `json:"map_id"`
	MapName     string `json:"map_name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Label       string `json:"label"`
}

// Ref is an id with a display name, used by search results
type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ListOnline returns every live NPC object
func (s *Service) ListOnline(ctx context.Context) Result {
	return s.query(ctx, access.Supervisor, "List online NPCs", func() (Result, error) {
		out := []OnlineNPC{}
		for _, obj := range s.placement.Online() {
			name := ""
			if n := s.store.NPC(obj.NPCID); n != nil {
				name = n.Name
			}
			out = append(out, OnlineNPC{
				ObjectID: obj.ObjectID,
				NPCID:    obj.NPCID,
				Name:     name,
				MapID:    obj.MapID(),
				MapName:  s.world.MapName(obj.MapID()),
				Point:    obj.Point,
			})
		}
		return ok("", out), nil
	})
}

// ListRegions returns every region ordered by map name, then description
func (s *Service) ListRegions(ctx context.Context) Result {
	return s.query(ctx, access.Supervisor, "List regions", func() (Result, error) {
		out := []RegionSummary{}
		for _, r := range s.world.Regions() {
			mapName := s.world.MapName(r.MapID)
			out = append(out, RegionSummary{
				ID:          r.ID,
				MapID:       r.MapID,
				MapName:     mapName,
				Description: r.Description,
				Points:      len(r.Points),
				Label:       fmt.Sprintf("%s - %s", mapName, r.Description),
			})
		}
		return ok("", out), nil
	})
}

// SearchItems finds items by name or id
func (s *Service) SearchItems(ctx context.Context, keyword string) Result {
	return s.query(ctx, access.Supervisor, "Search items", func() (Result, error) {
		out := []Ref{}
		for _, item := range s.catalog.Search(keyword, SearchLimit) {
			out = append(out, Ref{ID: item.ID, Name: item.Name})
		}
		return ok("", out), nil
	})
}

// SearchMaps finds maps by name or id
func (s *Service) SearchMaps(ctx context.Context, keyword string) Result {
	return s.query(ctx, access.Supervisor, "Search maps", func() (Result, error) {
		out := []Ref{}
		for _, pt := range s.world.SearchMaps(keyword, SearchLimit) {
			out = append(out, Ref{ID: pt.MapID, Name: pt.Name})
		}
		return ok("", out), nil
	})
}

// Integrity reports dangling edges, unindexed pages and unreachable pages
func (s *Service) Integrity(ctx context.Context) Result {
	return s.query(ctx, access.Supervisor, "Check integrity", func() (Result, error) {
		report := s.store.Validate()
		msg := "Dialogue graph is consistent"
		if !report.OK() {
			msg = fmt.Sprintf("%d dangling edges, %d unindexed pages, %d unreachable pages",
				len(report.Dangling), len(report.Unindexed), len(report.Unreachable))
		}
		return ok(msg, report), nil
	})
}

// The enumeration listings need no tier

func (s *Service) DialogKinds() Result { return ok("", labels(dialogue.DialogKinds())) }

func (s *Service) CheckKinds() Result { return ok("", labels(dialogue.CheckKinds())) }

func (s *Service) Operators() Result { return ok("", labels(dialogue.Operators())) }

func (s *Service) ActionKinds() Result { return ok("", labels(dialogue.ActionKinds())) }

// StatGroupView is one group of the stat kind listing
type StatGroupView struct {
	Group string  `json:"group"`
	Stats []Label `json:"stats"`
}

// StatKinds lists stat kinds grouped for the item editor
func (s *Service) StatKinds(ctx context.Context) Result {
	return s.query(ctx, access.Admin, "List stat kinds", func() (Result, error) {
		var out []StatGroupView
		for _, g := range items.StatGroups() {
			view := StatGroupView{Group: g.Name}
			for _, k := range g.Kinds {
				view.Stats = append(view.Stats, Label{Value: int(k), Name: k.String(), Label: Humanize(k.String())})
			}
			out = append(out, view)
		}
		return ok("", out), nil
	})
}

// ItemInput carries the raw fields of an item. A nil Stats map leaves the
// stats untouched on update; a non-nil one is reconciled.
type ItemInput struct {
	Name      string      `json:"name"`
	Type      int         `json:"type"`
	Price     int         `json:"price"`
	Weight    int         `json:"weight"`
	StackSize int         `json:"stack_size"`
	Stats     map[int]int `json:"stats,omitempty"`
}

// StatView is one stat of an item detail
type StatView struct {
	ID     int    `json:"id"`
	Kind   int    `json:"kind"`
	Name   string `json:"name"`
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

// ItemDetail is an item with its stats
type ItemDetail struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Type      int        `json:"type"`
	Price     int        `json:"price"`
	Weight    int        `json:"weight"`
	StackSize int        `json:"stack_size"`
	Stats     []StatView `json:"stats"`
}

// GetItem returns the item detail view
func (s *Service) GetItem(ctx context.Context, id int) Result {
	return s.query(ctx, access.Admin, "Get item", func() (Result, error) {
		item := s.catalog.Item(id)
		if item == nil {
			return Result{}, fmt.Errorf("%w: item %d", items.ErrNotFound, id)
		}
		return ok("", itemDetail(item)), nil
	})
}

// CreateItem adds an item with its initial stats
func (s *Service) CreateItem(ctx context.Context, in ItemInput) Result {
	return s.mutate(ctx, "Create item", func() (Result, error) {
		desired, err := statKinds(in.Stats)
		if err != nil {
			return Result{}, err
		}
		item, err := s.catalog.CreateItem(in.fields())
		if err != nil {
			return Result{}, err
		}
		if _, err := s.catalog.ReconcileStats(item.ID, desired); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Item [%d] %s created", item.ID, item.Name), itemDetail(item)), nil
	})
}

// UpdateItem replaces an item's fields and reconciles its stats
func (s *Service) UpdateItem(ctx context.Context, id int, in ItemInput) Result {
	return s.mutate(ctx, "Update item", func() (Result, error) {
		item := s.catalog.Item(id)
		if item == nil {
			return Result{}, fmt.Errorf("%w: item %d", items.ErrNotFound, id)
		}
		if strings.TrimSpace(in.Name) == "" {
			return Result{}, fmt.Errorf("%w: item name is required", items.ErrValidation)
		}
		var desired map[items.StatKind]int
		if in.Stats != nil {
			var err error
			if desired, err = statKinds(in.Stats); err != nil {
				return Result{}, err
			}
		}

		oldName := item.Name
		if err := s.catalog.UpdateItem(id, in.fields()); err != nil {
			return Result{}, err
		}
		msg := fmt.Sprintf("Item [%d] %s -> %s updated", id, oldName, item.Name)
		if desired != nil {
			diff, err := s.catalog.ReconcileStats(id, desired)
			if err != nil {
				return Result{}, err
			}
			msg += fmt.Sprintf(", stats +%d ~%d -%d", len(diff.Added), len(diff.Updated), len(diff.Removed))
		}
		return ok(msg, itemDetail(item)), nil
	})
}

func (in ItemInput) fields() items.ItemFields {
	return items.ItemFields{
		Name:      in.Name,
		Type:      in.Type,
		Price:     in.Price,
		Weight:    in.Weight,
		StackSize: in.StackSize,
	}
}

// statKinds converts raw stat kinds at the boundary
func statKinds(raw map[int]int) (map[items.StatKind]int, error) {
	out := make(map[items.StatKind]int, len(raw))
	for k, amount := range raw {
		kind, err := items.ParseStatKind(k)
		if err != nil {
			return nil, err
		}
		out[kind] = amount
	}
	return out, nil
}

func itemDetail(item *items.Item) ItemDetail {
	d := ItemDetail{
		ID:        item.ID,
		Name:      item.Name,
		Type:      item.Type,
		Price:     item.Price,
		Weight:    item.Weight,
		StackSize: item.StackSize,
		Stats:     []StatView{},
	}
	for _, st := range item.Stats {
		d.Stats = append(d.Stats, StatView{
			ID:     st.ID,
			Kind:   int(st.Kind),
			Name:   st.Kind.String(),
			Label:  Humanize(st.Kind.String()),
			Amount: st.Amount,
		})
	}
	return d
}
