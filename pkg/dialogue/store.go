package dialogue

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
)

type recordKind int

const (
	kindNPC recordKind = iota
	kindPage
	kindCheck
	kindAction
	kindButton
	kindGood
	kindCount
)

// Store is the arena holding every dialogue record by id
type Store struct {
	npcs      map[int]*NPC
	pages     map[int]*Page // flat page index
	unindexed map[int]*Page // graph nodes missing from the index (older data)
	checks    map[int]*Check
	actions   map[int]*Action
	buttons   map[int]*Button
	goods     map[int]*Good

	// inbound maps a target page id to every edge pointing at it
	inbound map[int]map[EdgeRef]struct{}
	lastID  [kindCount]int
}

// NewStore returns an empty Store
func NewStore() *Store {
	return &Store{
		npcs:      make(map[int]*NPC),
		pages:     make(map[int]*Page),
		unindexed: make(map[int]*Page),
		checks:    make(map[int]*Check),
		actions:   make(map[int]*Action),
		buttons:   make(map[int]*Button),
		goods:     make(map[int]*Good),
		inbound:   make(map[int]map[EdgeRef]struct{}),
	}
}

func (s *Store) nextID(k recordKind) int {
	s.lastID[k]++
	return s.lastID[k]
}

// NPC operations

// CreateNPC registers a new NPC definition. The name must not be blank.
func (s *Store) CreateNPC(name string, image, regionID int) (*NPC, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: npc name is required", ErrValidation)
	}
	n := &NPC{ID: s.nextID(kindNPC), Name: name, Image: image, RegionID: regionID}
	s.npcs[n.ID] = n
	return n, nil
}

// NPC returns the NPC with the given id, or nil
func (s *Store) NPC(id int) *NPC {
	return s.npcs[id]
}

// NPCs returns every NPC ordered by id
func (s *Store) NPCs() []*NPC {
	return sortedByID(s.npcs, func(n *NPC) int { return n.ID })
}

// UpdateNPC replaces the scalar fields of an NPC
func (s *Store) UpdateNPC(id int, name string, image, regionID int) error {
	n := s.npcs[id]
	if n == nil {
		return fmt.Errorf("%w: npc %d", ErrNotFound, id)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: npc name is required", ErrValidation)
	}
	n.Name = name
	n.Image = image
	n.RegionID = regionID
	return nil
}

// RemoveNPC detaches the NPC from its entry page and deletes it. The entry
// page itself is left in place; use DeletePage first to cascade.
func (s *Store) RemoveNPC(id int) error {
	n := s.npcs[id]
	if n == nil {
		return fmt.Errorf("%w: npc %d", ErrNotFound, id)
	}
	s.retarget(&n.EntryPageID, EdgeRef{Kind: EdgeEntry, Owner: id}, 0)
	delete(s.npcs, id)
	return nil
}

// SetEntryPage points an NPC at pageID. Zero clears the slot.
func (s *Store) SetEntryPage(npcID, pageID int) error {
	n := s.npcs[npcID]
	if n == nil {
		return fmt.Errorf("%w: npc %d", ErrNotFound, npcID)
	}
	if err := s.requirePage(pageID); err != nil {
		return err
	}
	s.retarget(&n.EntryPageID, EdgeRef{Kind: EdgeEntry, Owner: npcID}, pageID)
	return nil
}

// Page operations

// CreatePage adds a new, unlinked page to the index
func (s *Store) CreatePage(f PageFields) *Page {
	p := &Page{ID: s.nextID(kindPage)}
	applyPageFields(p, f)
	s.pages[p.ID] = p
	return p
}

// Page is the O(1) index lookup. It does not see unindexed pages; use
// ResolvePage for that.
func (s *Store) Page(id int) *Page {
	return s.pages[id]
}

// Pages returns every indexed page ordered by id
func (s *Store) Pages() []*Page {
	return sortedByID(s.pages, func(p *Page) int { return p.ID })
}

// UnindexedPages returns graph nodes that are missing from the page index
func (s *Store) UnindexedPages() []*Page {
	return sortedByID(s.unindexed, func(p *Page) int { return p.ID })
}

// IndexPage moves an unindexed page into the index
func (s *Store) IndexPage(id int) error {
	p := s.unindexed[id]
	if p == nil {
		if s.pages[id] != nil {
			return nil
		}
		return fmt.Errorf("%w: page %d", ErrNotFound, id)
	}
	delete(s.unindexed, id)
	s.pages[id] = p
	return nil
}

// UpdatePage replaces the scalar fields of a page
func (s *Store) UpdatePage(id int, f PageFields) error {
	p := s.node(id)
	if p == nil {
		return fmt.Errorf("%w: page %d", ErrNotFound, id)
	}
	applyPageFields(p, f)
	return nil
}

// SetSuccessPage links pageID to targetID through its success edge. Zero clears it.
func (s *Store) SetSuccessPage(pageID, targetID int) error {
	p := s.node(pageID)
	if p == nil {
		return fmt.Errorf("%w: page %d", ErrNotFound, pageID)
	}
	if err := s.requirePage(targetID); err != nil {
		return err
	}
	s.retarget(&p.SuccessPageID, EdgeRef{Kind: EdgeSuccess, Owner: pageID}, targetID)
	return nil
}

// RemovePage deletes a single page together with the checks, actions,
// buttons and goods it owns. Edges pointing at the page are cleared first.
// It does not follow outgoing edges; DeletePage does.
func (s *Store) RemovePage(id int) error {
	p := s.node(id)
	if p == nil {
		return fmt.Errorf("%w: page %d", ErrNotFound, id)
	}
	s.removePage(p)
	return nil
}

// removePage returns the ids of NPCs whose entry slot pointed at p
func (s *Store) removePage(p *Page) []int {
	s.retarget(&p.SuccessPageID, EdgeRef{Kind: EdgeSuccess, Owner: p.ID}, 0)
	for _, id := range slices.Clone(p.CheckIDs) {
		if c := s.checks[id]; c != nil {
			s.removeCheck(c)
		}
	}
	for _, id := range slices.Clone(p.ActionIDs) {
		if a := s.actions[id]; a != nil {
			s.removeAction(a)
		}
	}
	for _, id := range slices.Clone(p.ButtonIDs) {
		if b := s.buttons[id]; b != nil {
			s.removeButton(b)
		}
	}
	for _, id := range slices.Clone(p.GoodIDs) {
		if g := s.goods[id]; g != nil {
			s.removeGood(g)
		}
	}
	p.CheckIDs, p.ActionIDs, p.ButtonIDs, p.GoodIDs = nil, nil, nil, nil

	var clearedEntries []int
	for _, ref := range s.Inbound(p.ID) {
		s.clearEdge(ref)
		if ref.Kind == EdgeEntry {
			clearedEntries = append(clearedEntries, ref.Owner)
		}
	}
	delete(s.inbound, p.ID)
	delete(s.pages, p.ID)
	delete(s.unindexed, p.ID)
	return clearedEntries
}

// Check operations

// CreateCheck appends a new check to the page's check list
func (s *Store) CreateCheck(pageID int, f CheckFields) (*Check, error) {
	p := s.node(pageID)
	if p == nil {
		return nil, fmt.Errorf("%w: page %d", ErrNotFound, pageID)
	}
	c := &Check{ID: s.nextID(kindCheck), PageID: pageID}
	applyCheckFields(c, f)
	s.checks[c.ID] = c
	p.CheckIDs = append(p.CheckIDs, c.ID)
	return c, nil
}

// Check returns the check with the given id, or nil
func (s *Store) Check(id int) *Check {
	return s.checks[id]
}

// UpdateCheck replaces the scalar fields of a check
func (s *Store) UpdateCheck(id int, f CheckFields) error {
	c := s.checks[id]
	if c == nil {
		return fmt.Errorf("%w: check %d", ErrNotFound, id)
	}
	applyCheckFields(c, f)
	return nil
}

// SetFailPage links a check to the page shown when it fails. Zero clears it.
func (s *Store) SetFailPage(checkID, pageID int) error {
	c := s.checks[checkID]
	if c == nil {
		return fmt.Errorf("%w: check %d", ErrNotFound, checkID)
	}
	if err := s.requirePage(pageID); err != nil {
		return err
	}
	s.retarget(&c.FailPageID, EdgeRef{Kind: EdgeFail, Owner: checkID}, pageID)
	return nil
}

// RemoveCheck detaches the check from its page and deletes it
func (s *Store) RemoveCheck(id int) error {
	c := s.checks[id]
	if c == nil {
		return fmt.Errorf("%w: check %d", ErrNotFound, id)
	}
	s.removeCheck(c)
	return nil
}

func (s *Store) removeCheck(c *Check) {
	if p := s.node(c.PageID); p != nil {
		p.CheckIDs = withoutID(p.CheckIDs, c.ID)
	}
	s.retarget(&c.FailPageID, EdgeRef{Kind: EdgeFail, Owner: c.ID}, 0)
	delete(s.checks, c.ID)
}

// Action operations

// CreateAction appends a new action to the page's action list
func (s *Store) CreateAction(pageID int, f ActionFields) (*Action, error) {
	p := s.node(pageID)
	if p == nil {
		return nil, fmt.Errorf("%w: page %d", ErrNotFound, pageID)
	}
	a := &Action{ID: s.nextID(kindAction), PageID: pageID}
	applyActionFields(a, f)
	s.actions[a.ID] = a
	p.ActionIDs = append(p.ActionIDs, a.ID)
	return a, nil
}

// Action returns the action with the given id, or nil
func (s *Store) Action(id int) *Action {
	return s.actions[id]
}

// UpdateAction replaces the fields of an action
func (s *Store) UpdateAction(id int, f ActionFields) error {
	a := s.actions[id]
	if a == nil {
		return fmt.Errorf("%w: action %d", ErrNotFound, id)
	}
	applyActionFields(a, f)
	return nil
}

// RemoveAction detaches the action from its page and deletes it
func (s *Store) RemoveAction(id int) error {
	a := s.actions[id]
	if a == nil {
		return fmt.Errorf("%w: action %d", ErrNotFound, id)
	}
	s.removeAction(a)
	return nil
}

func (s *Store) removeAction(a *Action) {
	if p := s.node(a.PageID); p != nil {
		p.ActionIDs = withoutID(p.ActionIDs, a.ID)
	}
	delete(s.actions, a.ID)
}

// Button operations

// CreateButton appends a new button to the page's button list
func (s *Store) CreateButton(pageID, buttonID int) (*Button, error) {
	p := s.node(pageID)
	if p == nil {
		return nil, fmt.Errorf("%w: page %d", ErrNotFound, pageID)
	}
	b := &Button{ID: s.nextID(kindButton), PageID: pageID, ButtonID: buttonID}
	s.buttons[b.ID] = b
	p.ButtonIDs = append(p.ButtonIDs, b.ID)
	return b, nil
}

// Button returns the button with the given id, or nil
func (s *Store) Button(id int) *Button {
	return s.buttons[id]
}

// UpdateButton changes the numeric button id shown to the client
func (s *Store) UpdateButton(id, buttonID int) error {
	b := s.buttons[id]
	if b == nil {
		return fmt.Errorf("%w: button %d", ErrNotFound, id)
	}
	b.ButtonID = buttonID
	return nil
}

// SetDestination links a button to its destination page. Zero clears it.
func (s *Store) SetDestination(buttonID, pageID int) error {
	b := s.buttons[buttonID]
	if b == nil {
		return fmt.Errorf("%w: button %d", ErrNotFound, buttonID)
	}
	if err := s.requirePage(pageID); err != nil {
		return err
	}
	s.retarget(&b.DestinationPageID, EdgeRef{Kind: EdgeDestination, Owner: buttonID}, pageID)
	return nil
}

// RemoveButton detaches the button from its page and deletes it
func (s *Store) RemoveButton(id int) error {
	b := s.buttons[id]
	if b == nil {
		return fmt.Errorf("%w: button %d", ErrNotFound, id)
	}
	s.removeButton(b)
	return nil
}

func (s *Store) removeButton(b *Button) {
	if p := s.node(b.PageID); p != nil {
		p.ButtonIDs = withoutID(p.ButtonIDs, b.ID)
	}
	s.retarget(&b.DestinationPageID, EdgeRef{Kind: EdgeDestination, Owner: b.ID}, 0)
	delete(s.buttons, b.ID)
}

// Good operations

// CreateGood appends a new good to the page's goods. A rate <= 0 becomes 1.
func (s *Store) CreateGood(pageID int, f GoodFields) (*Good, error) {
	p := s.node(pageID)
	if p == nil {
		return nil, fmt.Errorf("%w: page %d", ErrNotFound, pageID)
	}
	if f.ItemID <= 0 {
		return nil, fmt.Errorf("%w: good requires an item", ErrValidation)
	}
	g := &Good{ID: s.nextID(kindGood), PageID: pageID}
	applyGoodFields(g, f)
	s.goods[g.ID] = g
	p.GoodIDs = append(p.GoodIDs, g.ID)
	return g, nil
}

// Good returns the good with the given id, or nil
func (s *Store) Good(id int) *Good {
	return s.goods[id]
}

// UpdateGood replaces the fields of a good. An ItemID of 0 keeps the current item.
func (s *Store) UpdateGood(id int, f GoodFields) error {
	g := s.goods[id]
	if g == nil {
		return fmt.Errorf("%w: good %d", ErrNotFound, id)
	}
	if f.ItemID <= 0 {
		f.ItemID = g.ItemID
	}
	applyGoodFields(g, f)
	return nil
}

// RemoveGood detaches the good from its page and deletes it
func (s *Store) RemoveGood(id int) error {
	g := s.goods[id]
	if g == nil {
		return fmt.Errorf("%w: good %d", ErrNotFound, id)
	}
	s.removeGood(g)
	return nil
}

func (s *Store) removeGood(g *Good) {
	if p := s.node(g.PageID); p != nil {
		p.GoodIDs = withoutID(p.GoodIDs, g.ID)
	}
	delete(s.goods, g.ID)
}

// Child listings, in page order

func (s *Store) ChecksOf(p *Page) []*Check {
	return collect(p.CheckIDs, s.checks)
}

func (s *Store) ActionsOf(p *Page) []*Action {
	return collect(p.ActionIDs, s.actions)
}

func (s *Store) ButtonsOf(p *Page) []*Button {
	return collect(p.ButtonIDs, s.buttons)
}

func (s *Store) GoodsOf(p *Page) []*Good {
	return collect(p.GoodIDs, s.goods)
}

// Edge index

// Inbound returns every edge that points at pageID, ordered by kind then owner
func (s *Store) Inbound(pageID int) []EdgeRef {
	refs := slices.Collect(maps.Keys(s.inbound[pageID]))
	slices.SortFunc(refs, func(a, b EdgeRef) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Owner, b.Owner)
	})
	return refs
}

// node looks a page up in the index, then among unindexed pages
func (s *Store) node(id int) *Page {
	if p := s.pages[id]; p != nil {
		return p
	}
	return s.unindexed[id]
}

func (s *Store) requirePage(id int) error {
	if id != 0 && s.node(id) == nil {
		return fmt.Errorf("%w: page %d", ErrNotFound, id)
	}
	return nil
}

// retarget moves the edge stored in slot to target and keeps the reverse index in step
func (s *Store) retarget(slot *int, ref EdgeRef, target int) {
	if *slot != 0 {
		if refs := s.inbound[*slot]; refs != nil {
			delete(refs, ref)
			if len(refs) == 0 {
				delete(s.inbound, *slot)
			}
		}
	}
	*slot = target
	if target != 0 {
		refs := s.inbound[target]
		if refs == nil {
			refs = make(map[EdgeRef]struct{})
			s.inbound[target] = refs
		}
		refs[ref] = struct{}{}
	}
}

// clearEdge zeroes the slot named by ref without touching the reverse index
// of the target; removePage drops that entry wholesale.
func (s *Store) clearEdge(ref EdgeRef) {
	switch ref.Kind {
	case EdgeEntry:
		if n := s.npcs[ref.Owner]; n != nil {
			n.EntryPageID = 0
		}
	case EdgeSuccess:
		if p := s.node(ref.Owner); p != nil {
			p.SuccessPageID = 0
		}
	case EdgeFail:
		if c := s.checks[ref.Owner]; c != nil {
			c.FailPageID = 0
		}
	case EdgeDestination:
		if b := s.buttons[ref.Owner]; b != nil {
			b.DestinationPageID = 0
		}
	}
}

// sourcePage returns the page an edge leaves from. Entry edges have none.
func (s *Store) sourcePage(ref EdgeRef) (int, bool) {
	switch ref.Kind {
	case EdgeSuccess:
		return ref.Owner, true
	case EdgeFail:
		if c := s.checks[ref.Owner]; c != nil {
			return c.PageID, true
		}
	case EdgeDestination:
		if b := s.buttons[ref.Owner]; b != nil {
			return b.PageID, true
		}
	}
	return 0, false
}

// outgoing lists the page ids p links to: success, then each check's fail
// page, then each button's destination. Zero edges are skipped.
func (s *Store) outgoing(p *Page) []int {
	var out []int
	if p.SuccessPageID != 0 {
		out = append(out, p.SuccessPageID)
	}
	for _, c := range s.ChecksOf(p) {
		if c.FailPageID != 0 {
			out = append(out, c.FailPageID)
		}
	}
	for _, b := range s.ButtonsOf(p) {
		if b.DestinationPageID != 0 {
			out = append(out, b.DestinationPageID)
		}
	}
	return out
}

func applyPageFields(p *Page, f PageFields) {
	p.Description = f.Description
	p.DialogKind = f.DialogKind
	p.Say = f.Say
	p.Arguments = f.Arguments
}

func applyCheckFields(c *Check, f CheckFields) {
	c.Kind = f.Kind
	c.Operator = f.Operator
	c.StringParam = f.StringParam
	c.IntParam1 = f.IntParam1
	c.IntParam2 = f.IntParam2
	c.ItemID = f.ItemID
}

func applyActionFields(a *Action, f ActionFields) {
	a.Kind = f.Kind
	a.StringParam = f.StringParam
	a.IntParam1 = f.IntParam1
	a.IntParam2 = f.IntParam2
	a.ItemID = f.ItemID
	a.MapID = f.MapID
}

func applyGoodFields(g *Good, f GoodFields) {
	g.ItemID = f.ItemID
	g.Rate = f.Rate
	if g.Rate <= 0 {
		g.Rate = 1
	}
	g.Cost = f.Cost
}

func withoutID(ids []int, id int) []int {
	return slices.DeleteFunc(ids, func(v int) bool { return v == id })
}

func collect[T any](ids []int, records map[int]*T) []*T {
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		if r := records[id]; r != nil {
			out = append(out, r)
		}
	}
	return out
}

func sortedByID[T any](records map[int]*T, id func(*T) int) []*T {
	out := slices.Collect(maps.Values(records))
	slices.SortFunc(out, func(a, b *T) int { return cmp.Compare(id(a), id(b)) })
	return out
}
