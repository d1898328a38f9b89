package listing

import "github.com/google/uuid"

// ItemID is the stable identity of an item. It survives removal and
// re-insertion, so two items with the same label stay distinguishable.
type ItemID string

// NewItemID returns a fresh random item ID.
func NewItemID() ItemID {
	return ItemID(uuid.New().String())
}

// Item is a labeled entry of the linear store.
type Item struct {
	ID    ItemID
	Label string

	// Index is the item's position when the value was read from the
	// store. It is not updated when the store changes afterwards.
	Index int
}

// NewItem creates a detached item with a fresh ID.
func NewItem(label string) Item {
	return Item{ID: NewItemID(), Label: label, Index: -1}
}

// String returns the item label.
func (it Item) String() string {
	return it.Label
}

// Snapshot is an immutable capture of a selection: the selected items in
// order and the index of the first one at capture time.
type Snapshot struct {
	items []Item
	first int
}

// NewSnapshot captures items and the first selected index.
// The slice is copied; later changes to items do not affect the snapshot.
func NewSnapshot(items []Item, first int) Snapshot {
	cp := make([]Item, len(items))
	copy(cp, items)
	return Snapshot{items: cp, first: first}
}

// Items returns a copy of the captured items in selection order.
func (s Snapshot) Items() []Item {
	cp := make([]Item, len(s.items))
	copy(cp, s.items)
	return cp
}

// Labels returns the captured labels in selection order.
func (s Snapshot) Labels() []string {
	labels := make([]string, len(s.items))
	for i, it := range s.items {
		labels[i] = it.Label
	}
	return labels
}

// At returns the i-th captured item.
func (s Snapshot) At(i int) Item {
	return s.items[i]
}

// Len returns the number of captured items.
func (s Snapshot) Len() int {
	return len(s.items)
}

// IsEmpty returns true if nothing was captured.
func (s Snapshot) IsEmpty() bool {
	return len(s.items) == 0
}

// FirstIndex returns the position of the first selected item at capture time.
func (s Snapshot) FirstIndex() int {
	return s.first
}
