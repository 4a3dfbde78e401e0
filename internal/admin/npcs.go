package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/access"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// PageSize is the number of NPCs per listing page
const PageSize = 50

// NPCInput carries the raw fields of an NPC create or update
type NPCInput struct {
	Name     string `json:"name"`
	Image    int    `json:"image"`
	RegionID int    `json:"region_id"`
}

// NPCSummary is one row of the NPC listing
type NPCSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Image       int    `json:"image"`
	RegionID    int    `json:"region_id,omitempty"`
	Region      string `json:"region,omitempty"`
	MapName     string `json:"map_name,omitempty"`
	EntryPageID int    `json:"entry_page_id,omitempty"`
	Online      bool   `json:"online"`
}

// NPCList is a page of NPCs
type NPCList struct {
	NPCs     []NPCSummary `json:"npcs"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Total    int          `json:"total"`
	Pages    int          `json:"pages"`
}

// NPCDetail describes one NPC and the shape of its entry page
type NPCDetail struct {
	NPCSummary
	EntryPage    string       `json:"entry_page,omitempty"`
	EntryKind    string       `json:"entry_kind,omitempty"`
	EntrySay     string       `json:"entry_say,omitempty"`
	ChecksCount  int          `json:"checks_count"`
	ActionsCount int          `json:"actions_count"`
	ButtonsCount int          `json:"buttons_count"`
	GoodsCount   int          `json:"goods_count"`
	Position     *world.Point `json:"position,omitempty"`
	PositionMap  int          `json:"position_map,omitempty"`
}

// ListNPCs filters NPCs by keyword (name or id) and returns one page of them
func (s *Service) ListNPCs(ctx context.Context, keyword string, page int) Result {
	return s.query(ctx, access.Supervisor, "List NPCs", func() (Result, error) {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		matched := []NPCSummary{}
		for _, n := range s.store.NPCs() {
			if keyword != "" &&
				!strings.Contains(strings.ToLower(n.Name), keyword) &&
				!strings.Contains(strconv.Itoa(n.ID), keyword) {
				continue
			}
			matched = append(matched, s.summarize(n))
		}

		pages := max((len(matched)+PageSize-1)/PageSize, 1)
		page = min(max(page, 1), pages)
		start := (page - 1) * PageSize
		end := min(start+PageSize, len(matched))

		return ok("", NPCList{
			NPCs:     matched[start:end],
			Page:     page,
			PageSize: PageSize,
			Total:    len(matched),
			Pages:    pages,
		}), nil
	})
}

// GetNPC returns the NPC detail view
func (s *Service) GetNPC(ctx context.Context, id int) Result {
	return s.query(ctx, access.Supervisor, "Get NPC", func() (Result, error) {
		n := s.store.NPC(id)
		if n == nil {
			return Result{}, errNotFound("npc %d", id)
		}
		detail := NPCDetail{NPCSummary: s.summarize(n)}
		if p, err := s.resolvePage(n.EntryPageID); err == nil && n.EntryPageID != 0 {
			detail.EntryPage = refLabel(p.ID, p.Description)
			detail.EntryKind = Humanize(p.DialogKind.String())
			detail.EntrySay = p.Say
			detail.ChecksCount = len(p.CheckIDs)
			detail.ActionsCount = len(p.ActionIDs)
			detail.ButtonsCount = len(p.ButtonIDs)
			detail.GoodsCount = len(p.GoodIDs)
		}
		if obj := s.placement.Live(n.ID); obj != nil {
			pt := obj.Point
			detail.Position = &pt
			detail.PositionMap = obj.MapID()
		}
		return ok("", detail), nil
	})
}

// CreateNPC adds an NPC and, when a region is given, places it there
func (s *Service) CreateNPC(ctx context.Context, in NPCInput) Result {
	return s.mutate(ctx, "Create NPC", func() (Result, error) {
		if strings.TrimSpace(in.Name) == "" {
			return Result{}, errInvalid("npc name is required")
		}
		if err := s.requireRegion(in.RegionID); err != nil {
			return Result{}, err
		}
		n, err := s.store.CreateNPC(in.Name, in.Image, in.RegionID)
		if err != nil {
			return Result{}, err
		}
		msg := fmt.Sprintf("NPC [%d] %s created", n.ID, n.Name)
		if in.RegionID != 0 {
			msg += s.place(n.ID, in.RegionID)
		}
		return ok(msg, s.summarize(n)), nil
	})
}

// UpdateNPC replaces an NPC's fields. A changed region relocates the live
// object; region 0 clears it and takes the NPC offline.
func (s *Service) UpdateNPC(ctx context.Context, id int, in NPCInput) Result {
	return s.mutate(ctx, "Update NPC", func() (Result, error) {
		n := s.store.NPC(id)
		if n == nil {
			return Result{}, errNotFound("npc %d", id)
		}
		if strings.TrimSpace(in.Name) == "" {
			return Result{}, errInvalid("npc name is required")
		}
		if err := s.requireRegion(in.RegionID); err != nil {
			return Result{}, err
		}

		oldName, oldRegion := n.Name, n.RegionID
		if err := s.store.UpdateNPC(id, in.Name, in.Image, in.RegionID); err != nil {
			return Result{}, err
		}
		msg := fmt.Sprintf("NPC [%d] %s -> %s updated", id, oldName, n.Name)
		switch {
		case in.RegionID == 0:
			if s.placement.Live(id) != nil {
				_ = s.placement.Despawn(id)
				msg += ", now offline"
			}
		case in.RegionID != oldRegion || s.placement.Live(id) == nil:
			msg += s.place(id, in.RegionID)
		}
		return ok(msg, s.summarize(n)), nil
	})
}

// DeleteNPC removes an NPC, cascading its entry page and despawning it
func (s *Service) DeleteNPC(ctx context.Context, id int) Result {
	return s.mutate(ctx, "Delete NPC", func() (Result, error) {
		n := s.store.NPC(id)
		if n == nil {
			return Result{}, errNotFound("npc %d", id)
		}
		name := n.Name
		var data any
		if n.EntryPageID != 0 {
			report, err := s.store.DeletePage(n.EntryPageID)
			if err != nil {
				return Result{}, err
			}
			data = report
		}
		if s.placement.Live(id) != nil {
			if err := s.placement.Despawn(id); err != nil {
				return Result{}, err
			}
		}
		if err := s.store.RemoveNPC(id); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("NPC [%d] %s deleted", id, name), data), nil
	})
}

// CreateEntryPage gives an NPC without dialogue a fresh entry page
func (s *Service) CreateEntryPage(ctx context.Context, npcID int, in PageInput) Result {
	return s.mutate(ctx, "Create entry page", func() (Result, error) {
		n := s.store.NPC(npcID)
		if n == nil {
			return Result{}, errNotFound("npc %d", npcID)
		}
		if n.EntryPageID != 0 {
			return Result{}, fmt.Errorf("%w: npc %d already has entry page %d", dialogue.ErrConflict, npcID, n.EntryPageID)
		}
		fields, err := in.fields()
		if err != nil {
			return Result{}, err
		}
		p := s.store.CreatePage(fields)
		if err := s.store.SetEntryPage(npcID, p.ID); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Entry page [%d] created for NPC [%d]", p.ID, npcID), map[string]int{"page_id": p.ID}), nil
	})
}

// DeleteEntryPage cascades the NPC's entry page
func (s *Service) DeleteEntryPage(ctx context.Context, npcID int) Result {
	return s.mutate(ctx, "Delete entry page", func() (Result, error) {
		n := s.store.NPC(npcID)
		if n == nil {
			return Result{}, errNotFound("npc %d", npcID)
		}
		if n.EntryPageID == 0 {
			return Result{}, errInvalid("npc %d has no entry page", npcID)
		}
		pageID := n.EntryPageID
		report, err := s.store.DeletePage(pageID)
		if err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Entry page [%d] of NPC [%d] deleted", pageID, npcID), report), nil
	})
}

// place assigns the NPC to a region and describes the outcome. A failed
// placement leaves the NPC offline without failing the surrounding mutation;
// a live NPC is taken out of its old region so it never sits outside the
// region its definition names.
func (s *Service) place(npcID, regionID int) string {
	obj, err := s.placement.AssignRegion(npcID, regionID, nil)
	if err != nil {
		if s.placement.Live(npcID) != nil {
			_ = s.placement.Despawn(npcID)
		}
		if errors.Is(err, world.ErrInvalidCell) {
			s.logger.Warn("NPC left offline", "npc_id", npcID, "region_id", regionID, "error", err)
			return ", offline until its region has a valid cell"
		}
		s.logger.Error("Failed to place NPC", "npc_id", npcID, "region_id", regionID, "error", err)
		return ", placement failed"
	}
	return fmt.Sprintf(", placed on %s at %s", s.world.MapName(obj.MapID()), obj.Point)
}

func (s *Service) requireRegion(id int) error {
	if id != 0 && s.world.Region(id) == nil {
		return errNotFound("region %d", id)
	}
	return nil
}

func (s *Service) summarize(n *dialogue.NPC) NPCSummary {
	sum := NPCSummary{
		ID:          n.ID,
		Name:        n.Name,
		Image:       n.Image,
		RegionID:    n.RegionID,
		EntryPageID: n.EntryPageID,
		Online:      s.placement.Live(n.ID) != nil,
	}
	if r := s.world.Region(n.RegionID); r != nil {
		sum.Region = r.Description
		sum.MapName = s.world.MapName(r.MapID)
	}
	return sum
}
