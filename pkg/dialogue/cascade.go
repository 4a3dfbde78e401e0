package dialogue

import (
	"fmt"
	"slices"
)

// DeleteReport lists what a cascading delete removed
type DeleteReport struct {
	Pages          []int `json:"pages"`
	Checks         []int `json:"checks"`
	Actions        []int `json:"actions"`
	Buttons        []int `json:"buttons"`
	Goods          []int `json:"goods"`
	ClearedEntries []int `json:"cleared_entries,omitempty"` // NPC ids whose entry page was removed
	Preserved      []int `json:"preserved,omitempty"`       // shared pages left in place
}

// DeletePage removes the page and everything reachable only through it.
//
// Pages reachable from the root that are still referenced from outside the
// reachable set (by another NPC's entry slot or by a page that is not being
// deleted) are preserved together with everything reachable from them. Edges
// into removed pages are cleared, so nothing is left dangling. Each page is
// visited at most once, which bounds the walk on cyclic graphs.
func (s *Store) DeletePage(id int) (DeleteReport, error) {
	root := s.node(id)
	if root == nil {
		return DeleteReport{}, fmt.Errorf("%w: page %d", ErrNotFound, id)
	}
	c := &cascade{
		store:   s,
		visited: make(map[int]struct{}),
		keep:    s.sharedPages(root.ID),
	}
	c.deletePage(root)
	slices.Sort(c.report.Preserved)
	return c.report, nil
}

// sharedPages returns the pages reachable from root that must survive its deletion
func (s *Store) sharedPages(root int) map[int]struct{} {
	reach := s.Reachable(root)

	var seeds []int
	for id := range reach {
		if id == root {
			continue
		}
		for _, ref := range s.Inbound(id) {
			src, ok := s.sourcePage(ref)
			if !ok {
				seeds = append(seeds, id) // entry slot of some NPC
				break
			}
			if _, inside := reach[src]; !inside {
				seeds = append(seeds, id)
				break
			}
		}
	}

	keep := make(map[int]struct{})
	for len(seeds) > 0 {
		id := seeds[len(seeds)-1]
		seeds = seeds[:len(seeds)-1]
		if _, ok := keep[id]; ok || id == root {
			continue
		}
		keep[id] = struct{}{}
		if p := s.node(id); p != nil {
			for _, next := range s.outgoing(p) {
				if _, inside := reach[next]; inside {
					seeds = append(seeds, next)
				}
			}
		}
	}
	return keep
}

type cascade struct {
	store   *Store
	visited map[int]struct{}
	keep    map[int]struct{}
	report  DeleteReport
}

func (c *cascade) deletePage(p *Page) {
	if _, seen := c.visited[p.ID]; seen {
		return
	}
	c.visited[p.ID] = struct{}{}
	s := c.store

	if p.SuccessPageID != 0 {
		c.follow(p.SuccessPageID)
		s.retarget(&p.SuccessPageID, EdgeRef{Kind: EdgeSuccess, Owner: p.ID}, 0)
	}

	for _, id := range slices.Clone(p.CheckIDs) {
		chk := s.checks[id]
		if chk == nil {
			continue
		}
		if chk.FailPageID != 0 {
			c.follow(chk.FailPageID)
		}
		s.removeCheck(chk)
		c.report.Checks = append(c.report.Checks, id)
	}

	for _, id := range slices.Clone(p.ActionIDs) {
		if a := s.actions[id]; a != nil {
			s.removeAction(a)
			c.report.Actions = append(c.report.Actions, id)
		}
	}

	for _, id := range slices.Clone(p.ButtonIDs) {
		b := s.buttons[id]
		if b == nil {
			continue
		}
		if b.DestinationPageID != 0 {
			c.follow(b.DestinationPageID)
		}
		s.removeButton(b)
		c.report.Buttons = append(c.report.Buttons, id)
	}

	for _, id := range slices.Clone(p.GoodIDs) {
		if g := s.goods[id]; g != nil {
			s.removeGood(g)
			c.report.Goods = append(c.report.Goods, id)
		}
	}

	cleared := s.removePage(p)
	c.report.Pages = append(c.report.Pages, p.ID)
	c.report.ClearedEntries = append(c.report.ClearedEntries, cleared...)
}

func (c *cascade) follow(target int) {
	if _, shared := c.keep[target]; shared {
		if !slices.Contains(c.report.Preserved, target) {
			c.report.Preserved = append(c.report.Preserved, target)
		}
		return
	}
	if p := c.store.node(target); p != nil {
		c.deletePage(p)
	}
}
