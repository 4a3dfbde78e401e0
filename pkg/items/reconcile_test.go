package items

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemWithStats(t *testing.T, stats map[StatKind]int) (*Catalog, *Item) {
	t.Helper()
	c := NewCatalog()
	item, err := c.CreateItem(ItemFields{Name: "Iron Sword", Price: 100})
	require.NoError(t, err)
	_, err = c.ReconcileStats(item.ID, stats)
	require.NoError(t, err)
	return c, item
}

func TestReconcileStats_EmptyRemovesEverything(t *testing.T) {
	c, item := newItemWithStats(t, map[StatKind]int{StatMinDC: 2, StatMaxDC: 7})
	ids := []int{item.Stats[0].ID, item.Stats[1].ID}

	diff, err := c.ReconcileStats(item.ID, map[StatKind]int{})
	require.NoError(t, err)

	assert.Empty(t, item.Stats)
	assert.ElementsMatch(t, ids, diff.Removed)
	assert.Empty(t, item.Totals)
	for _, id := range ids {
		assert.Nil(t, c.Stat(id), "stat %d should be gone from the index", id)
	}
}

func TestReconcileStats_ZeroAmountIsAbsent(t *testing.T) {
	cases := []map[StatKind]int{
		{},
		{StatMinDC: 0},
	}
	for _, desired := range cases {
		c, item := newItemWithStats(t, map[StatKind]int{StatMinDC: 3})
		_, err := c.ReconcileStats(item.ID, desired)
		require.NoError(t, err)
		assert.Empty(t, item.Stats, "desired %v", desired)
	}
}

func TestReconcileStats_UpdatePreservesIdentity(t *testing.T) {
	c, item := newItemWithStats(t, map[StatKind]int{StatLuck: 3})
	before := item.Stat(StatLuck)
	require.NotNil(t, before)

	diff, err := c.ReconcileStats(item.ID, map[StatKind]int{StatLuck: 5})
	require.NoError(t, err)

	require.Len(t, item.Stats, 1)
	after := item.Stat(StatLuck)
	assert.Same(t, before, after)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, 5, after.Amount)
	assert.Equal(t, []int{before.ID}, diff.Updated)
	assert.Empty(t, diff.Added)
	assert.Equal(t, 5, item.Totals[StatLuck])
}

func TestReconcileStats_MixedChanges(t *testing.T) {
	c, item := newItemWithStats(t, map[StatKind]int{StatHealth: 10, StatMana: 5, StatLuck: 1})
	health := item.Stat(StatHealth).ID
	mana := item.Stat(StatMana).ID

	diff, err := c.ReconcileStats(item.ID, map[StatKind]int{
		StatHealth:   10, // unchanged
		StatLuck:     0,  // removed
		StatAccuracy: 4,  // added
	})
	require.NoError(t, err)

	assert.Equal(t, []int{mana}, diff.Removed[:1])
	assert.Len(t, diff.Removed, 2)
	assert.Empty(t, diff.Updated)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, health, item.Stat(StatHealth).ID)
	assert.Equal(t, 4, item.Stat(StatAccuracy).Amount)
	assert.Nil(t, item.Stat(StatMana))
	assert.Equal(t, map[StatKind]int{StatHealth: 10, StatAccuracy: 4}, item.Totals)
}

func TestReconcileStats_Errors(t *testing.T) {
	c, item := newItemWithStats(t, map[StatKind]int{StatLight: 1})

	_, err := c.ReconcileStats(999, map[StatKind]int{StatLight: 1})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.ReconcileStats(item.ID, map[StatKind]int{StatLight: 0, StatKind(500): 3})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Len(t, item.Stats, 1, "a rejected reconcile must not touch the item")
}

func TestCatalog_Search(t *testing.T) {
	c := NewCatalog()
	for _, name := range []string{"Wooden Sword", "Iron Sword", "Potion"} {
		_, err := c.CreateItem(ItemFields{Name: name})
		require.NoError(t, err)
	}
	assert.Len(t, c.Search("sword", 0), 2)
	assert.Len(t, c.Search("", 2), 2)
	got := c.Search("3", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "Potion", got[0].Name)
}
