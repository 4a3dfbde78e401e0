package dialogue

import (
	"errors"
	"slices"
	"testing"
)

func newPage(t *testing.T, s *Store, desc string) *Page {
	t.Helper()
	return s.CreatePage(PageFields{Description: desc, Say: desc + " says hello"})
}

func TestStore_IDsAreMonotonicPerKind(t *testing.T) {
	s := NewStore()
	p1 := newPage(t, s, "one")
	p2 := newPage(t, s, "two")
	if p1.ID != 1 || p2.ID != 2 {
		t.Fatalf("page ids = %d, %d, want 1, 2", p1.ID, p2.ID)
	}

	c, err := s.CreateCheck(p1.ID, CheckFields{Kind: CheckLevel})
	if err != nil {
		t.Fatalf("CreateCheck() error = %v", err)
	}
	if c.ID != 1 {
		t.Errorf("first check id = %d, want 1", c.ID)
	}

	if err := s.RemovePage(p2.ID); err != nil {
		t.Fatalf("RemovePage() error = %v", err)
	}
	p3 := newPage(t, s, "three")
	if p3.ID != 3 {
		t.Errorf("page id after removal = %d, want 3 (ids are never reused)", p3.ID)
	}
}

func TestStore_CreateNPCRequiresName(t *testing.T) {
	s := NewStore()
	if _, err := s.CreateNPC("   ", 1, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("CreateNPC(blank) error = %v, want ErrValidation", err)
	}
	if len(s.NPCs()) != 0 {
		t.Error("blank name must not create an NPC")
	}
}

func TestStore_RemoveChildDetachesFromPage(t *testing.T) {
	s := NewStore()
	p := newPage(t, s, "shop")
	target := newPage(t, s, "target")

	c, _ := s.CreateCheck(p.ID, CheckFields{Kind: CheckGold, Operator: OpGreaterThan, IntParam1: 10})
	a, _ := s.CreateAction(p.ID, ActionFields{Kind: ActionTakeGold, IntParam1: 10})
	b, _ := s.CreateButton(p.ID, 1)
	g, err := s.CreateGood(p.ID, GoodFields{ItemID: 7, Rate: 0, Cost: 100})
	if err != nil {
		t.Fatalf("CreateGood() error = %v", err)
	}
	if g.Rate != 1 {
		t.Errorf("good rate = %v, want 1 when created with 0", g.Rate)
	}
	if err := s.SetFailPage(c.ID, target.ID); err != nil {
		t.Fatalf("SetFailPage() error = %v", err)
	}
	if err := s.SetDestination(b.ID, target.ID); err != nil {
		t.Fatalf("SetDestination() error = %v", err)
	}
	if got := len(s.Inbound(target.ID)); got != 2 {
		t.Fatalf("inbound edges = %d, want 2", got)
	}

	for _, remove := range []func() error{
		func() error { return s.RemoveCheck(c.ID) },
		func() error { return s.RemoveAction(a.ID) },
		func() error { return s.RemoveButton(b.ID) },
		func() error { return s.RemoveGood(g.ID) },
	} {
		if err := remove(); err != nil {
			t.Fatalf("remove error = %v", err)
		}
	}

	if len(p.CheckIDs)+len(p.ActionIDs)+len(p.ButtonIDs)+len(p.GoodIDs) != 0 {
		t.Errorf("page still lists children: %+v", p)
	}
	if s.Check(c.ID) != nil || s.Action(a.ID) != nil || s.Button(b.ID) != nil || s.Good(g.ID) != nil {
		t.Error("removed records are still indexed")
	}
	if got := s.Inbound(target.ID); len(got) != 0 {
		t.Errorf("inbound edges after removal = %v, want none", got)
	}
	if err := s.RemoveCheck(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveCheck() error = %v, want ErrNotFound", err)
	}
}

func TestStore_RemovePageClearsInboundEdges(t *testing.T) {
	s := NewStore()
	npc, _ := s.CreateNPC("Guard", 3, 0)
	menu := newPage(t, s, "menu")
	sub := newPage(t, s, "sub")
	if err := s.SetEntryPage(npc.ID, sub.ID); err != nil {
		t.Fatal(err)
	}
	b, _ := s.CreateButton(menu.ID, 2)
	if err := s.SetDestination(b.ID, sub.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.RemovePage(sub.ID); err != nil {
		t.Fatalf("RemovePage() error = %v", err)
	}
	if npc.EntryPageID != 0 {
		t.Errorf("npc entry = %d, want cleared", npc.EntryPageID)
	}
	if b.DestinationPageID != 0 {
		t.Errorf("button destination = %d, want cleared", b.DestinationPageID)
	}
	if r := s.Validate(); len(r.Dangling) != 0 {
		t.Errorf("dangling edges = %v", r.Dangling)
	}
}

func TestStore_EdgeSettersRejectMissingPages(t *testing.T) {
	s := NewStore()
	p := newPage(t, s, "p")
	c, _ := s.CreateCheck(p.ID, CheckFields{})
	b, _ := s.CreateButton(p.ID, 1)
	npc, _ := s.CreateNPC("Smith", 1, 0)

	tests := []struct {
		name string
		set  func() error
	}{
		{"success", func() error { return s.SetSuccessPage(p.ID, 99) }},
		{"fail", func() error { return s.SetFailPage(c.ID, 99) }},
		{"destination", func() error { return s.SetDestination(b.ID, 99) }},
		{"entry", func() error { return s.SetEntryPage(npc.ID, 99) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set(); !errors.Is(err, ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
	if p.SuccessPageID != 0 || c.FailPageID != 0 || b.DestinationPageID != 0 || npc.EntryPageID != 0 {
		t.Error("a rejected edge was written")
	}
}

func TestStore_UpdateGoodKeepsItemWhenZero(t *testing.T) {
	s := NewStore()
	p := newPage(t, s, "p")
	g, _ := s.CreateGood(p.ID, GoodFields{ItemID: 4, Rate: 2.5})
	if err := s.UpdateGood(g.ID, GoodFields{ItemID: 0, Rate: -1}); err != nil {
		t.Fatal(err)
	}
	if g.ItemID != 4 || g.Rate != 1 {
		t.Errorf("good = %+v, want item 4 rate 1", *g)
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseDialogKind(len(dialogKindNames)); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseDialogKind(out of range) error = %v", err)
	}
	if _, err := ParseOperator(-1); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseOperator(-1) error = %v", err)
	}
	k, err := ParseCheckKind(int(CheckHasItem))
	if err != nil || k != CheckHasItem {
		t.Errorf("ParseCheckKind() = %v, %v", k, err)
	}
	if got := ActionGiveItem.String(); got != "GiveItem" {
		t.Errorf("ActionGiveItem.String() = %q", got)
	}
	if got := ActionKind(99).String(); got != "Unknown(99)" {
		t.Errorf("ActionKind(99).String() = %q", got)
	}
	names := make([]string, 0)
	for _, v := range Operators() {
		names = append(names, v.Name)
	}
	if !slices.Equal(names, operatorNames) {
		t.Errorf("Operators() = %v", names)
	}
}
