package seed

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/items"
	"github.com/jwebster45206/npc-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLoadFile(t *testing.T) {
	s, err := LoadFile("testdata/world.hcl")
	require.NoError(t, err)

	// World
	require.Len(t, s.World.Partitions(), 2)
	town := s.World.Partition(1)
	require.NotNil(t, town)
	assert.Equal(t, "Town", town.Name)
	assert.False(t, town.Cell(world.Point{X: 0, Y: 0}).Enterable())
	assert.True(t, town.Cell(world.Point{X: 19, Y: 19}).Enterable())
	assert.Nil(t, town.Cell(world.Point{X: 20, Y: 0}))
	require.NotNil(t, s.World.Region(1))
	assert.Len(t, s.World.Region(1).Points, 2)

	// Items
	sword := s.Catalog.Item(2)
	require.NotNil(t, sword)
	assert.Equal(t, "Iron Sword", sword.Name)
	assert.Equal(t, 1, sword.StackSize)
	require.NotNil(t, sword.Stat(items.StatMaxDC))
	assert.Equal(t, 7, sword.Stat(items.StatMaxDC).Amount)
	assert.Equal(t, 20, s.Catalog.Item(1).StackSize)

	// Dialogue
	npcs := s.Store.NPCs()
	require.Len(t, npcs, 3)
	merchant := npcs[0]
	assert.Equal(t, "Merchant", merchant.Name)
	assert.Equal(t, 1, merchant.RegionID)

	greeting := s.Store.Page(merchant.EntryPageID)
	require.NotNil(t, greeting)
	assert.Equal(t, "Greeting", greeting.Description)
	require.Len(t, greeting.CheckIDs, 1)
	require.Len(t, greeting.ButtonIDs, 2)

	check := s.Store.Check(greeting.CheckIDs[0])
	assert.Equal(t, dialogue.CheckLevel, check.Kind)
	assert.Equal(t, dialogue.OpGreaterThanOrEqual, check.Operator)
	refuse := s.Store.Page(check.FailPageID)
	require.NotNil(t, refuse)
	assert.Equal(t, "Too weak", refuse.Description)

	shop := s.Store.Page(s.Store.Button(greeting.ButtonIDs[0]).DestinationPageID)
	require.NotNil(t, shop)
	assert.Equal(t, dialogue.DialogBuySell, shop.DialogKind)
	require.Len(t, shop.GoodIDs, 2)
	assert.Equal(t, 1.0, s.Store.Good(shop.GoodIDs[0]).Rate)
	assert.Equal(t, 1.5, s.Store.Good(shop.GoodIDs[1]).Rate)

	// The farewell page is shared by the merchant's graph and the miner's entry
	farewell := refuse.SuccessPageID
	assert.Equal(t, farewell, npcs[1].EntryPageID)
	assert.Equal(t, farewell, s.Store.Button(greeting.ButtonIDs[1]).DestinationPageID)

	// Only the ghost's page has no way in
	report := s.Store.Validate()
	assert.Empty(t, report.Dangling)
	assert.Empty(t, report.Unindexed)
	assert.Len(t, report.Unreachable, 1)
}

func TestSeed_Place(t *testing.T) {
	s, err := LoadFile("testdata/world.hcl")
	require.NoError(t, err)

	pl := world.NewPlacement(s.World, nopNotifier{}, testLogger(), world.PlacementConfig{})
	offline := s.Place(pl, testLogger())

	// The miner's region only holds a blocked cell
	assert.Equal(t, []int{2}, offline)
	require.NotNil(t, pl.Live(1))
	assert.Equal(t, 1, pl.Live(1).MapID())
	assert.Nil(t, pl.Live(2))
	assert.Nil(t, pl.Live(3))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "syntax",
			src:     `map "Town" {`,
			wantMsg: "failed to parse",
		},
		{
			name:    "unknown attribute",
			src:     `map "Town" { id = 1 width = 2 height = 2 colour = "red" }`,
			wantMsg: "failed to decode",
		},
		{
			name:    "region on unknown map",
			src:     `region "Nowhere" { id = 1 map = 9 }`,
			wantErr: world.ErrUnknownMap,
		},
		{
			name:    "unknown stat",
			src:     `item "Ring" { id = 1 stats = { Charisma = 1 } }`,
			wantErr: items.ErrValidation,
		},
		{
			name:    "unknown page reference",
			src:     `npc "Guard" { entry = "missing" }`,
			wantErr: dialogue.ErrNotFound,
		},
		{
			name:    "duplicate page key",
			src:     `page "a" {}` + "\n" + `page "a" {}`,
			wantErr: dialogue.ErrValidation,
		},
		{
			name:    "unknown check kind",
			src:     `page "a" { check { kind = "Charm" } }`,
			wantErr: dialogue.ErrValidation,
		},
		{
			name:    "good with unknown item",
			src:     `page "a" { good { item = 4 } }`,
			wantErr: items.ErrNotFound,
		},
		{
			name:    "npc in unknown region",
			src:     `npc "Guard" { region = 3 }`,
			wantErr: world.ErrUnknownRegion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			require.Error(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

type nopNotifier struct{}

func (nopNotifier) NotifyPosition(context.Context, world.PositionUpdate) error { return nil }
