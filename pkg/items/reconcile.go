package items

import (
	"fmt"
	"slices"
)

// StatDiff lists the stat ids touched by a reconcile
type StatDiff struct {
	Added   []int `json:"added,omitempty"`
	Updated []int `json:"updated,omitempty"`
	Removed []int `json:"removed,omitempty"`
}

// ReconcileStats brings an item's stats to the desired amounts with the
// fewest changes. Zero amounts count as absent. Stats whose kind is not
// desired are removed, present kinds are updated in place (their ids do not
// change) and missing kinds are created. Totals are recomputed afterwards.
func (c *Catalog) ReconcileStats(itemID int, desired map[StatKind]int) (StatDiff, error) {
	item := c.items[itemID]
	if item == nil {
		return StatDiff{}, fmt.Errorf("%w: item %d", ErrNotFound, itemID)
	}

	want := make(map[StatKind]int, len(desired))
	for kind, amount := range desired {
		if kind < 0 || kind >= statKindCount {
			return StatDiff{}, fmt.Errorf("%w: stat kind %d out of range", ErrValidation, int(kind))
		}
		if amount != 0 {
			want[kind] = amount
		}
	}

	var diff StatDiff
	kept := make([]*ItemStat, 0, len(item.Stats))
	for _, s := range item.Stats {
		if _, ok := want[s.Kind]; !ok {
			delete(c.stats, s.ID)
			diff.Removed = append(diff.Removed, s.ID)
			continue
		}
		kept = append(kept, s)
	}
	item.Stats = kept

	kinds := make([]StatKind, 0, len(want))
	for kind := range want {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)

	for _, kind := range kinds {
		amount := want[kind]
		if s := item.Stat(kind); s != nil {
			if s.Amount != amount {
				s.Amount = amount
				diff.Updated = append(diff.Updated, s.ID)
			}
			continue
		}
		s := &ItemStat{ID: c.NextStatID(), ItemID: item.ID, Kind: kind, Amount: amount}
		c.stats[s.ID] = s
		item.Stats = append(item.Stats, s)
		diff.Added = append(diff.Added, s.ID)
	}

	item.RecalculateTotals()
	return diff, nil
}
