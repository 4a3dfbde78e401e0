// Package seed builds the initial world, item catalog and dialogue graph from
// an HCL file.
package seed

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/items"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// Seed is the state built from a seed file
type Seed struct {
	World   *world.World
	Catalog *items.Catalog
	Store   *dialogue.Store
}

// LoadFile parses and builds the seed file at path
func LoadFile(path string) (*Seed, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse builds a Seed from HCL source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Seed, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclSeedFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	b := &builder{
		seed: &Seed{
			World:   world.New(),
			Catalog: items.NewCatalog(),
			Store:   dialogue.NewStore(),
		},
		pages: make(map[string]int),
	}
	if err := b.build(&parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return b.seed, nil
}

// Place spawns every NPC that names a region at a random point of it. The
// ids of NPCs that could not be placed are returned; they stay offline.
func (s *Seed) Place(pl *world.Placement, logger *slog.Logger) []int {
	var offline []int
	for _, n := range s.Store.NPCs() {
		if n.RegionID == 0 {
			continue
		}
		if _, err := pl.AssignRegion(n.ID, n.RegionID, nil); err != nil {
			logger.Warn("NPC left offline", "npc_id", n.ID, "region_id", n.RegionID, "error", err)
			offline = append(offline, n.ID)
		}
	}
	return offline
}

type builder struct {
	seed  *Seed
	pages map[string]int // page key to id
}

func (b *builder) build(f *hclSeedFile) error {
	for _, m := range f.Maps {
		if err := b.addMap(m); err != nil {
			return err
		}
	}
	for _, r := range f.Regions {
		err := b.seed.World.AddRegion(&world.Region{
			ID:          r.ID,
			MapID:       r.Map,
			Description: r.Description,
			Points:      r.Points,
		})
		if err != nil {
			return err
		}
	}
	for _, it := range f.Items {
		if err := b.addItem(it); err != nil {
			return err
		}
	}

	// Pages are created before any edge so references may point forward
	all := append([]*hclPage(nil), f.Pages...)
	for _, n := range f.NPCs {
		all = append(all, n.Pages...)
	}
	for _, p := range all {
		if err := b.createPage(p); err != nil {
			return err
		}
	}
	for _, p := range all {
		if err := b.linkPage(p); err != nil {
			return err
		}
	}

	for _, n := range f.NPCs {
		if err := b.addNPC(n); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addMap(m *hclMap) error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("map %q: width and height must be positive", m.Name)
	}
	pt := world.NewPartition(m.ID, m.Name, m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if err := pt.SetCell(world.Point{X: x, Y: y}, false); err != nil {
				return err
			}
		}
	}
	for _, p := range m.Blocked {
		if err := pt.SetCell(p, true); err != nil {
			return fmt.Errorf("map %q: %w", m.Name, err)
		}
	}
	return b.seed.World.AddPartition(pt)
}

func (b *builder) addItem(it *hclItem) error {
	cat := b.seed.Catalog
	item := &items.Item{
		ID:        it.ID,
		Name:      it.Name,
		Type:      it.Type,
		Price:     it.Price,
		Weight:    it.Weight,
		StackSize: max(it.StackSize, 1),
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: item %d has no name", items.ErrValidation, it.ID)
	}
	if err := cat.AddItem(item); err != nil {
		return err
	}

	desired := make(map[items.StatKind]int, len(it.Stats))
	for name, amount := range it.Stats {
		kind, err := statKindByName(name)
		if err != nil {
			return fmt.Errorf("item %q: %w", it.Name, err)
		}
		desired[kind] = amount
	}
	_, err := cat.ReconcileStats(item.ID, desired)
	return err
}

func (b *builder) createPage(p *hclPage) error {
	if _, ok := b.pages[p.Key]; ok {
		return fmt.Errorf("%w: page %q declared twice", dialogue.ErrValidation, p.Key)
	}
	kind, err := enumByName(dialogue.DialogKinds(), p.Kind, "dialog kind")
	if err != nil {
		return fmt.Errorf("page %q: %w", p.Key, err)
	}
	page := b.seed.Store.CreatePage(dialogue.PageFields{
		Description: p.Description,
		DialogKind:  dialogue.DialogKind(kind),
		Say:         p.Say,
		Arguments:   p.Arguments,
	})
	b.pages[p.Key] = page.ID
	return nil
}

func (b *builder) linkPage(p *hclPage) error {
	store := b.seed.Store
	pageID := b.pages[p.Key]

	success, err := b.pageRef(p.Success)
	if err != nil {
		return fmt.Errorf("page %q success: %w", p.Key, err)
	}
	if err := store.SetSuccessPage(pageID, success); err != nil {
		return err
	}

	for _, c := range p.Checks {
		if err := b.addCheck(pageID, p.Key, c); err != nil {
			return err
		}
	}
	for _, a := range p.Actions {
		if err := b.addAction(pageID, p.Key, a); err != nil {
			return err
		}
	}
	for _, btn := range p.Buttons {
		dest, err := b.pageRef(btn.Goto)
		if err != nil {
			return fmt.Errorf("page %q button %d: %w", p.Key, btn.Button, err)
		}
		created, err := store.CreateButton(pageID, btn.Button)
		if err != nil {
			return err
		}
		if err := store.SetDestination(created.ID, dest); err != nil {
			return err
		}
	}
	for _, g := range p.Goods {
		if err := b.requireItem(g.Item); err != nil {
			return fmt.Errorf("page %q good: %w", p.Key, err)
		}
		if _, err := store.CreateGood(pageID, dialogue.GoodFields{ItemID: g.Item, Rate: g.Rate, Cost: g.Cost}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addCheck(pageID int, key string, c *hclCheck) error {
	kind, err := enumByName(dialogue.CheckKinds(), c.Kind, "check kind")
	if err != nil {
		return fmt.Errorf("page %q: %w", key, err)
	}
	op, err := enumByName(dialogue.Operators(), c.Operator, "operator")
	if err != nil {
		return fmt.Errorf("page %q: %w", key, err)
	}
	fail, err := b.pageRef(c.Fail)
	if err != nil {
		return fmt.Errorf("page %q check fail: %w", key, err)
	}
	if err := b.requireItem(c.Item); err != nil {
		return fmt.Errorf("page %q check: %w", key, err)
	}

	check, err := b.seed.Store.CreateCheck(pageID, dialogue.CheckFields{
		Kind:        dialogue.CheckKind(kind),
		Operator:    dialogue.Operator(op),
		StringParam: c.String,
		IntParam1:   c.Int1,
		IntParam2:   c.Int2,
		ItemID:      c.Item,
	})
	if err != nil {
		return err
	}
	return b.seed.Store.SetFailPage(check.ID, fail)
}

func (b *builder) addAction(pageID int, key string, a *hclAction) error {
	kind, err := enumByName(dialogue.ActionKinds(), a.Kind, "action kind")
	if err != nil {
		return fmt.Errorf("page %q: %w", key, err)
	}
	if err := b.requireItem(a.Item); err != nil {
		return fmt.Errorf("page %q action: %w", key, err)
	}
	if a.Map != 0 && b.seed.World.Partition(a.Map) == nil {
		return fmt.Errorf("page %q action: %w %d", key, world.ErrUnknownMap, a.Map)
	}
	_, err = b.seed.Store.CreateAction(pageID, dialogue.ActionFields{
		Kind:        dialogue.ActionKind(kind),
		StringParam: a.String,
		IntParam1:   a.Int1,
		IntParam2:   a.Int2,
		ItemID:      a.Item,
		MapID:       a.Map,
	})
	return err
}

func (b *builder) addNPC(n *hclNPC) error {
	if n.Region != 0 && b.seed.World.Region(n.Region) == nil {
		return fmt.Errorf("npc %q: %w %d", n.Name, world.ErrUnknownRegion, n.Region)
	}
	entry, err := b.pageRef(n.Entry)
	if err != nil {
		return fmt.Errorf("npc %q entry: %w", n.Name, err)
	}
	npc, err := b.seed.Store.CreateNPC(n.Name, n.Image, n.Region)
	if err != nil {
		return err
	}
	return b.seed.Store.SetEntryPage(npc.ID, entry)
}

// pageRef resolves a page key; the empty key is no reference
func (b *builder) pageRef(key string) (int, error) {
	if key == "" {
		return 0, nil
	}
	id, ok := b.pages[key]
	if !ok {
		return 0, fmt.Errorf("%w: page %q", dialogue.ErrNotFound, key)
	}
	return id, nil
}

func (b *builder) requireItem(id int) error {
	if id != 0 && b.seed.Catalog.Item(id) == nil {
		return fmt.Errorf("%w: item %d", items.ErrNotFound, id)
	}
	return nil
}

// enumByName matches an enumeration name case-insensitively. The empty name
// is the first value.
func enumByName(values []dialogue.EnumValue, name, what string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for _, v := range values {
		if strings.EqualFold(v.Name, name) {
			return v.Value, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", dialogue.ErrValidation, what, name)
}

func statKindByName(name string) (items.StatKind, error) {
	for _, g := range items.StatGroups() {
		for _, k := range g.Kinds {
			if strings.EqualFold(k.String(), name) {
				return k, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown stat kind %q", items.ErrValidation, name)
}
