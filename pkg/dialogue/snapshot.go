package dialogue

import (
	"fmt"
	"slices"
)

// Snapshot is a plain copy of every record in a Store. Index lists the page
// ids that belong to the flat page index; any other page is restored as an
// unindexed graph node.
type Snapshot struct {
	NPCs    []NPC    `json:"npcs"`
	Pages   []Page   `json:"pages"`
	Index   []int    `json:"index"`
	Checks  []Check  `json:"checks"`
	Actions []Action `json:"actions"`
	Buttons []Button `json:"buttons"`
	Goods   []Good   `json:"goods"`
	LastIDs []int    `json:"last_ids,omitempty"`
}

// Snapshot copies the store's contents
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{LastIDs: slices.Clone(s.lastID[:])}
	for _, n := range s.NPCs() {
		snap.NPCs = append(snap.NPCs, *n)
	}
	for _, p := range s.Pages() {
		snap.Pages = append(snap.Pages, clonePage(p))
		snap.Index = append(snap.Index, p.ID)
	}
	for _, p := range s.UnindexedPages() {
		snap.Pages = append(snap.Pages, clonePage(p))
	}
	for _, c := range sortedByID(s.checks, func(c *Check) int { return c.ID }) {
		snap.Checks = append(snap.Checks, *c)
	}
	for _, a := range sortedByID(s.actions, func(a *Action) int { return a.ID }) {
		snap.Actions = append(snap.Actions, *a)
	}
	for _, b := range sortedByID(s.buttons, func(b *Button) int { return b.ID }) {
		snap.Buttons = append(snap.Buttons, *b)
	}
	for _, g := range sortedByID(s.goods, func(g *Good) int { return g.ID }) {
		snap.Goods = append(snap.Goods, *g)
	}
	return snap
}

// Restore builds a Store from a snapshot. Edges to pages that are absent from
// the snapshot are kept as-is and reported by Validate.
func Restore(snap *Snapshot) (*Store, error) {
	s := NewStore()
	if snap == nil {
		return s, nil
	}

	indexed := make(map[int]struct{}, len(snap.Index))
	for _, id := range snap.Index {
		indexed[id] = struct{}{}
	}
	for i := range snap.Pages {
		p := clonePage(&snap.Pages[i])
		if p.ID <= 0 || s.node(p.ID) != nil {
			return nil, fmt.Errorf("%w: duplicate or invalid page id %d", ErrValidation, p.ID)
		}
		if _, ok := indexed[p.ID]; ok {
			s.pages[p.ID] = &p
		} else {
			s.unindexed[p.ID] = &p
		}
		s.bump(kindPage, p.ID)
	}

	for i := range snap.NPCs {
		n := snap.NPCs[i]
		if n.ID <= 0 || s.npcs[n.ID] != nil {
			return nil, fmt.Errorf("%w: duplicate or invalid npc id %d", ErrValidation, n.ID)
		}
		s.npcs[n.ID] = &n
		s.bump(kindNPC, n.ID)
	}
	for i := range snap.Checks {
		c := snap.Checks[i]
		if err := s.requireOwner("check", c.ID, c.PageID, s.checks[c.ID] != nil, func(p *Page) []int { return p.CheckIDs }); err != nil {
			return nil, err
		}
		s.checks[c.ID] = &c
		s.bump(kindCheck, c.ID)
	}
	for i := range snap.Actions {
		a := snap.Actions[i]
		if err := s.requireOwner("action", a.ID, a.PageID, s.actions[a.ID] != nil, func(p *Page) []int { return p.ActionIDs }); err != nil {
			return nil, err
		}
		s.actions[a.ID] = &a
		s.bump(kindAction, a.ID)
	}
	for i := range snap.Buttons {
		b := snap.Buttons[i]
		if err := s.requireOwner("button", b.ID, b.PageID, s.buttons[b.ID] != nil, func(p *Page) []int { return p.ButtonIDs }); err != nil {
			return nil, err
		}
		s.buttons[b.ID] = &b
		s.bump(kindButton, b.ID)
	}
	for i := range snap.Goods {
		g := snap.Goods[i]
		if err := s.requireOwner("good", g.ID, g.PageID, s.goods[g.ID] != nil, func(p *Page) []int { return p.GoodIDs }); err != nil {
			return nil, err
		}
		s.goods[g.ID] = &g
		s.bump(kindGood, g.ID)
	}

	if err := s.requireChildLists(); err != nil {
		return nil, err
	}

	for k, last := range snap.LastIDs {
		if k < int(kindCount) {
			s.bump(recordKind(k), last)
		}
	}
	s.rebuildInbound()
	return s, nil
}

func (s *Store) requireOwner(kind string, id, pageID int, duplicate bool, children func(*Page) []int) error {
	if id <= 0 || duplicate {
		return fmt.Errorf("%w: duplicate or invalid %s id %d", ErrValidation, kind, id)
	}
	p := s.node(pageID)
	if p == nil {
		return fmt.Errorf("%w: %s %d belongs to missing page %d", ErrValidation, kind, id, pageID)
	}
	if !slices.Contains(children(p), id) {
		return fmt.Errorf("%w: %s %d is not listed on page %d", ErrValidation, kind, id, pageID)
	}
	return nil
}

// requireChildLists checks that every id a page lists is a record owned by
// that page, listed once
func (s *Store) requireChildLists() error {
	type listed struct {
		kind    string
		ids     func(*Page) []int
		ownerOf func(id int) (int, bool)
	}
	lists := []listed{
		{"check", func(p *Page) []int { return p.CheckIDs }, func(id int) (int, bool) {
			c := s.checks[id]
			return ownerID(c != nil, func() int { return c.PageID })
		}},
		{"action", func(p *Page) []int { return p.ActionIDs }, func(id int) (int, bool) {
			a := s.actions[id]
			return ownerID(a != nil, func() int { return a.PageID })
		}},
		{"button", func(p *Page) []int { return p.ButtonIDs }, func(id int) (int, bool) {
			b := s.buttons[id]
			return ownerID(b != nil, func() int { return b.PageID })
		}},
		{"good", func(p *Page) []int { return p.GoodIDs }, func(id int) (int, bool) {
			g := s.goods[id]
			return ownerID(g != nil, func() int { return g.PageID })
		}},
	}
	pages := append(s.Pages(), s.UnindexedPages()...)
	for _, l := range lists {
		seen := make(map[int]int)
		for _, p := range pages {
			for _, id := range l.ids(p) {
				if other, dup := seen[id]; dup {
					return fmt.Errorf("%w: %s %d is listed on pages %d and %d", ErrValidation, l.kind, id, other, p.ID)
				}
				seen[id] = p.ID
				owner, ok := l.ownerOf(id)
				if !ok {
					return fmt.Errorf("%w: page %d lists missing %s %d", ErrValidation, p.ID, l.kind, id)
				}
				if owner != p.ID {
					return fmt.Errorf("%w: page %d lists %s %d owned by page %d", ErrValidation, p.ID, l.kind, id, owner)
				}
			}
		}
	}
	return nil
}

func ownerID(found bool, pageID func() int) (int, bool) {
	if !found {
		return 0, false
	}
	return pageID(), true
}

// bump keeps id assignment monotonic past restored ids
func (s *Store) bump(k recordKind, id int) {
	if id > s.lastID[k] {
		s.lastID[k] = id
	}
}

func (s *Store) rebuildInbound() {
	s.inbound = make(map[int]map[EdgeRef]struct{})
	link := func(target int, ref EdgeRef) {
		if target == 0 {
			return
		}
		if s.inbound[target] == nil {
			s.inbound[target] = make(map[EdgeRef]struct{})
		}
		s.inbound[target][ref] = struct{}{}
	}
	for _, n := range s.npcs {
		link(n.EntryPageID, EdgeRef{Kind: EdgeEntry, Owner: n.ID})
	}
	for _, m := range []map[int]*Page{s.pages, s.unindexed} {
		for _, p := range m {
			link(p.SuccessPageID, EdgeRef{Kind: EdgeSuccess, Owner: p.ID})
		}
	}
	for _, c := range s.checks {
		link(c.FailPageID, EdgeRef{Kind: EdgeFail, Owner: c.ID})
	}
	for _, b := range s.buttons {
		link(b.DestinationPageID, EdgeRef{Kind: EdgeDestination, Owner: b.ID})
	}
}

func clonePage(p *Page) Page {
	c := *p
	c.CheckIDs = slices.Clone(p.CheckIDs)
	c.ActionIDs = slices.Clone(p.ActionIDs)
	c.ButtonIDs = slices.Clone(p.ButtonIDs)
	c.GoodIDs = slices.Clone(p.GoodIDs)
	return c
}

// DanglingEdge is an edge whose target page does not exist
type DanglingEdge struct {
	Edge   EdgeRef `json:"edge"`
	Target int     `json:"target"`
}

// IntegrityReport summarizes structural problems in a Store
type IntegrityReport struct {
	Dangling    []DanglingEdge `json:"dangling,omitempty"`
	Unindexed   []int          `json:"unindexed,omitempty"`
	Unreachable []int          `json:"unreachable,omitempty"` // indexed pages no NPC entry leads to
}

// OK reports whether nothing was found
func (r IntegrityReport) OK() bool {
	return len(r.Dangling) == 0 && len(r.Unindexed) == 0 && len(r.Unreachable) == 0
}

// Validate inspects the graph without modifying it
func (s *Store) Validate() IntegrityReport {
	var r IntegrityReport

	targets := make([]int, 0, len(s.inbound))
	for target := range s.inbound {
		targets = append(targets, target)
	}
	slices.Sort(targets)
	for _, target := range targets {
		if s.node(target) != nil {
			continue
		}
		for _, ref := range s.Inbound(target) {
			r.Dangling = append(r.Dangling, DanglingEdge{Edge: ref, Target: target})
		}
	}

	for _, p := range s.UnindexedPages() {
		r.Unindexed = append(r.Unindexed, p.ID)
	}

	reached := make(map[int]struct{})
	for _, n := range s.NPCs() {
		if n.EntryPageID != 0 {
			s.walk(n.EntryPageID, reached)
		}
	}
	for _, p := range s.Pages() {
		if _, ok := reached[p.ID]; !ok {
			r.Unreachable = append(r.Unreachable, p.ID)
		}
	}
	return r
}
