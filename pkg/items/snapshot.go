package items

// Snapshot is the serialisable form of a Catalog
type Snapshot struct {
	Items      []Item `json:"items"`
	LastItemID int    `json:"last_item_id"`
	LastStatID int    `json:"last_stat_id"`
}

// Snapshot copies the catalog. Totals are omitted and rebuilt on restore.
func (c *Catalog) Snapshot() *Snapshot {
	snap := &Snapshot{LastItemID: c.lastItemID, LastStatID: c.lastStatID}
	for _, item := range c.Items() {
		cp := *item
		cp.Totals = nil
		cp.Stats = make([]*ItemStat, len(item.Stats))
		for i, s := range item.Stats {
			st := *s
			cp.Stats[i] = &st
		}
		snap.Items = append(snap.Items, cp)
	}
	return snap
}

// Restore builds a Catalog from a snapshot
func Restore(snap *Snapshot) (*Catalog, error) {
	c := NewCatalog()
	if snap == nil {
		return c, nil
	}
	for i := range snap.Items {
		item := snap.Items[i]
		if err := c.AddItem(&item); err != nil {
			return nil, err
		}
	}
	c.lastItemID = max(c.lastItemID, snap.LastItemID)
	c.lastStatID = max(c.lastStatID, snap.LastStatID)
	return c, nil
}
