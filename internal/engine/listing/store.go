// Package listing provides the linear store: an ordered, mutable sequence
// of labeled items with a selection model.
//
// Items carry a stable ItemID so callers can remove and re-insert exactly
// the item they captured, even when labels repeat. Remove-by-label is still
// available and removes the first matching occurrence.
//
// A Store is not safe for concurrent use. The engine facade serializes
// access to it.
package listing

import "fmt"

// ChangeKind categorizes store changes.
type ChangeKind int

const (
	// ChangeInserted indicates an item was inserted.
	ChangeInserted ChangeKind = iota
	// ChangeRemoved indicates an item was removed.
	ChangeRemoved
	// ChangeSelection indicates the selection changed.
	ChangeSelection
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeInserted:
		return "inserted"
	case ChangeRemoved:
		return "removed"
	case ChangeSelection:
		return "selection"
	default:
		return "unknown"
	}
}

// Change describes a single store mutation.
type Change struct {
	Kind  ChangeKind
	Item  Item // Zero for selection changes
	Index int  // Position of the inserted/removed item, -1 for selection changes
}

// ChangeFunc is called after every store mutation.
type ChangeFunc func(Change)

// Store is an ordered sequence of items.
type Store struct {
	items     []Item
	selected  map[ItemID]struct{}
	listeners []ChangeFunc
}

// New creates a store holding one item per label, in order.
func New(labels ...string) *Store {
	s := &Store{
		items:    make([]Item, 0, len(labels)),
		selected: make(map[ItemID]struct{}),
	}
	for _, label := range labels {
		s.items = append(s.items, NewItem(label))
	}
	return s
}

// MaxNumbered bounds the count accepted by Numbered and NumberedLabels.
const MaxNumbered = 100_000

// Numbered creates a store with count items labeled by format,
// which receives the 1-based item number (e.g. "Item %d").
// count is clamped to [0, MaxNumbered].
func Numbered(format string, count int) *Store {
	return New(NumberedLabels(format, count)...)
}

// NumberedLabels formats count labels from 1-based item numbers.
// count is clamped to [0, MaxNumbered].
func NumberedLabels(format string, count int) []string {
	count = max(0, min(count, MaxNumbered))
	labels := make([]string, count)
	for i := range labels {
		labels[i] = fmt.Sprintf(format, i+1)
	}
	return labels
}

// OnChange registers a listener called after every mutation.
func (s *Store) OnChange(fn ChangeFunc) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

func (s *Store) notify(c Change) {
	for _, fn := range s.listeners {
		fn(c)
	}
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// Items returns a copy of all items with their current positions.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		it.Index = i
		out[i] = it
	}
	return out
}

// Labels returns all labels in order.
func (s *Store) Labels() []string {
	out := make([]string, len(s.items))
	for i, it := range s.items {
		out[i] = it.Label
	}
	return out
}

// At returns the item at index i.
func (s *Store) At(i int) (Item, bool) {
	if i < 0 || i >= len(s.items) {
		return Item{}, false
	}
	it := s.items[i]
	it.Index = i
	return it, true
}

// IndexOf returns the position of the item with the given ID, or -1.
func (s *Store) IndexOf(id ItemID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Contains returns true if an item with the given ID is stored.
func (s *Store) Contains(id ItemID) bool {
	return s.IndexOf(id) >= 0
}

// Append adds a new item with the given label at the end.
func (s *Store) Append(label string) Item {
	it := NewItem(label)
	it.Index = len(s.items)
	s.items = append(s.items, Item{ID: it.ID, Label: it.Label})
	s.notify(Change{Kind: ChangeInserted, Item: it, Index: it.Index})
	return it
}

// Remove removes the item with the given ID and returns it with the
// position it had. The item is also dropped from the selection.
func (s *Store) Remove(id ItemID) (Item, error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return Item{}, fmt.Errorf("remove %s: %w", id, ErrItemNotFound)
	}
	return s.removeAt(idx), nil
}

// RemoveLabel removes the first item whose label equals label.
func (s *Store) RemoveLabel(label string) (Item, bool) {
	for i, it := range s.items {
		if it.Label == label {
			return s.removeAt(i), true
		}
	}
	return Item{}, false
}

func (s *Store) removeAt(idx int) Item {
	it := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	delete(s.selected, it.ID)
	it.Index = idx
	s.notify(Change{Kind: ChangeRemoved, Item: it, Index: idx})
	return it
}

// InsertAt inserts item at index, shifting later items right.
// Index may equal Len to append. An item without an ID gets a fresh one.
func (s *Store) InsertAt(item Item, index int) error {
	if index < 0 || index > len(s.items) {
		return fmt.Errorf("insert %q at %d (len %d): %w", item.Label, index, len(s.items), ErrIndexOutOfRange)
	}
	if item.ID == "" {
		item.ID = NewItemID()
	} else if s.Contains(item.ID) {
		return fmt.Errorf("insert %q: %w", item.Label, ErrDuplicateItem)
	}

	stored := Item{ID: item.ID, Label: item.Label}
	s.items = append(s.items, Item{})
	copy(s.items[index+1:], s.items[index:])
	s.items[index] = stored

	stored.Index = index
	s.notify(Change{Kind: ChangeInserted, Item: stored, Index: index})
	return nil
}

// Select replaces the selection with the items at the given indices.
// On error the selection is left unchanged.
func (s *Store) Select(indices ...int) error {
	next := make(map[ItemID]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.items) {
			return fmt.Errorf("select %d (len %d): %w", i, len(s.items), ErrIndexOutOfRange)
		}
		next[s.items[i].ID] = struct{}{}
	}
	s.selected = next
	s.notify(Change{Kind: ChangeSelection, Index: -1})
	return nil
}

// SelectRange selects the inclusive interval [from, to].
func (s *Store) SelectRange(from, to int) error {
	if from > to {
		from, to = to, from
	}
	if from < 0 || to >= len(s.items) {
		return fmt.Errorf("select range %d..%d (len %d): %w", from, to, len(s.items), ErrIndexOutOfRange)
	}
	indices := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		indices = append(indices, i)
	}
	return s.Select(indices...)
}

// SelectLabels replaces the selection with the first not-yet-selected
// occurrence of each label. Unknown labels are skipped.
// It returns the number of items selected.
func (s *Store) SelectLabels(labels ...string) int {
	next := make(map[ItemID]struct{}, len(labels))
	for _, label := range labels {
		for _, it := range s.items {
			if _, taken := next[it.ID]; taken || it.Label != label {
				continue
			}
			next[it.ID] = struct{}{}
			break
		}
	}
	s.selected = next
	s.notify(Change{Kind: ChangeSelection, Index: -1})
	return len(next)
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() {
	if len(s.selected) == 0 {
		return
	}
	s.selected = make(map[ItemID]struct{})
	s.notify(Change{Kind: ChangeSelection, Index: -1})
}

// IsSelected returns true if the item with the given ID is selected.
func (s *Store) IsSelected(id ItemID) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectedItems returns the selected items in list order.
func (s *Store) SelectedItems() []Item {
	out := make([]Item, 0, len(s.selected))
	for i, it := range s.items {
		if _, ok := s.selected[it.ID]; ok {
			it.Index = i
			out = append(out, it)
		}
	}
	return out
}

// FirstSelectedIndex returns the position of the first selected item,
// or -1 when nothing is selected.
func (s *Store) FirstSelectedIndex() int {
	for i, it := range s.items {
		if _, ok := s.selected[it.ID]; ok {
			return i
		}
	}
	return -1
}
