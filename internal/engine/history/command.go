package history

import (
	"errors"
	"fmt"

	"github.com/dshills/regroup/internal/engine/listing"
	"github.com/dshills/regroup/internal/engine/tree"
)

// Command errors.
var (
	// ErrNoop is returned by Execute when there is nothing to do.
	// History discards such commands without touching either stack.
	ErrNoop = errors.New("nothing selected")

	// ErrInvalidState is returned when a command is driven out of order,
	// e.g. Undo before Execute.
	ErrInvalidState = errors.New("invalid command state")
)

// ListModel is the linear collection a command reads its selection from
// and moves items out of.
type ListModel interface {
	Len() int
	SelectedItems() []listing.Item
	FirstSelectedIndex() int
	Remove(id listing.ItemID) (listing.Item, error)
	InsertAt(item listing.Item, index int) error
}

// TreeModel is the hierarchical container grouped items are attached to.
type TreeModel interface {
	Root() *tree.Node
	NewNode(label string, children ...*tree.Node) *tree.Node
	Attach(parent, node *tree.Node) error
	Detach(parent, node *tree.Node) error
}

// Command is a reversible grouping operation.
// Execute runs once; afterwards Undo and Redo alternate.
type Command interface {
	// Execute applies the command for the first time.
	Execute(list ListModel, tr TreeModel) error

	// Undo reverses the effect of Execute or Redo.
	Undo(list ListModel, tr TreeModel) error

	// Redo re-applies the command after Undo.
	Redo(list ListModel, tr TreeModel) error

	// Description returns a human-readable description for UI.
	Description() string
}

// GroupCommand moves the selected items out of the list and attaches
// them to the tree root as one new subtree. The first selected item
// labels the subtree and the others become its children.
type GroupCommand struct {
	state     State
	placement Placement
	snapshot  listing.Snapshot
	node      *tree.Node
}

// NewGroupCommand creates an unapplied grouping command that restores
// items contiguously on undo.
func NewGroupCommand() *GroupCommand {
	return &GroupCommand{}
}

// NewGroupCommandWithPlacement creates an unapplied grouping command with
// the given undo placement.
func NewGroupCommandWithPlacement(p Placement) *GroupCommand {
	return &GroupCommand{placement: p}
}

// Execute captures the current selection and groups it.
// It returns ErrNoop when nothing is selected.
func (c *GroupCommand) Execute(list ListModel, tr TreeModel) error {
	if c.state != StateUnapplied {
		return fmt.Errorf("execute in state %s: %w", c.state, ErrInvalidState)
	}

	selected := list.SelectedItems()
	if len(selected) == 0 {
		return ErrNoop
	}
	snap := listing.NewSnapshot(selected, list.FirstSelectedIndex())

	if err := c.apply(snap, list, tr); err != nil {
		return err
	}
	c.snapshot = snap
	c.state = StateApplied
	return nil
}

// Undo puts the captured items back into the list and detaches the
// subtree this command attached.
func (c *GroupCommand) Undo(list ListModel, tr TreeModel) error {
	if c.state != StateApplied {
		return fmt.Errorf("undo in state %s: %w", c.state, ErrInvalidState)
	}

	if err := tr.Detach(tr.Root(), c.node); err != nil {
		return fmt.Errorf("undo %s: %w", c.Description(), err)
	}

	inserted, err := c.restore(list)
	if err != nil {
		for _, it := range inserted {
			_, _ = list.Remove(it.ID)
		}
		_ = tr.Attach(tr.Root(), c.node)
		return fmt.Errorf("undo %s: %w", c.Description(), err)
	}

	c.state = StateReverted
	return nil
}

// Redo regroups the captured items under a fresh node. The live
// selection is not consulted.
func (c *GroupCommand) Redo(list ListModel, tr TreeModel) error {
	if c.state != StateReverted {
		return fmt.Errorf("redo in state %s: %w", c.state, ErrInvalidState)
	}
	if err := c.apply(c.snapshot, list, tr); err != nil {
		return err
	}
	c.state = StateApplied
	return nil
}

// apply builds a new subtree from snap, attaches it under the root and
// removes the snapshot items from the list. On failure the list and
// tree are left as they were.
func (c *GroupCommand) apply(snap listing.Snapshot, list ListModel, tr TreeModel) error {
	items := snap.Items()
	children := make([]*tree.Node, 0, len(items)-1)
	for _, it := range items[1:] {
		children = append(children, tr.NewNode(it.Label))
	}
	node := tr.NewNode(items[0].Label, children...)

	if err := tr.Attach(tr.Root(), node); err != nil {
		return fmt.Errorf("attach group %q: %w", node.Label(), err)
	}

	removed := make([]listing.Item, 0, len(items))
	for _, it := range items {
		r, err := list.Remove(it.ID)
		if err != nil {
			// Removal positions are recorded after earlier removals, so
			// putting them back in reverse restores the list exactly.
			for i := len(removed) - 1; i >= 0; i-- {
				_ = list.InsertAt(removed[i], removed[i].Index)
			}
			_ = tr.Detach(tr.Root(), node)
			return fmt.Errorf("remove %q: %w", it.Label, err)
		}
		removed = append(removed, r)
	}

	c.node = node
	return nil
}

// restore re-inserts the snapshot items according to the placement and
// returns the items it managed to insert.
func (c *GroupCommand) restore(list ListModel) ([]listing.Item, error) {
	items := c.snapshot.Items()
	inserted := make([]listing.Item, 0, len(items))

	if c.placement == PlaceOriginal {
		// Ascending original positions; each earlier insert is already
		// in place when the next index is used.
		for _, it := range items {
			at := clamp(it.Index, list.Len())
			if err := list.InsertAt(it, at); err != nil {
				return inserted, err
			}
			inserted = append(inserted, it)
		}
		return inserted, nil
	}

	// Inserting last-to-first at a fixed index leaves the items in
	// selection order.
	first := c.snapshot.FirstIndex()
	for i := len(items) - 1; i >= 0; i-- {
		at := clamp(first, list.Len())
		if err := list.InsertAt(items[i], at); err != nil {
			return inserted, err
		}
		inserted = append(inserted, items[i])
	}
	return inserted, nil
}

func clamp(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}

// Description returns a human-readable description.
func (c *GroupCommand) Description() string {
	if c.snapshot.IsEmpty() {
		return "Group selection"
	}
	return fmt.Sprintf("Group %q (%d items)", c.snapshot.At(0).Label, c.snapshot.Len())
}

// State returns the command's lifecycle state.
func (c *GroupCommand) State() State {
	return c.state
}

// Placement returns how Undo restores items.
func (c *GroupCommand) Placement() Placement {
	return c.placement
}

// Snapshot returns the captured selection. It is empty before Execute.
func (c *GroupCommand) Snapshot() listing.Snapshot {
	return c.snapshot
}

// Node returns the subtree created by the most recent Execute or Redo.
// After Undo it still returns that node, now detached.
func (c *GroupCommand) Node() *tree.Node {
	return c.node
}

// Len returns the number of items the command moves.
func (c *GroupCommand) Len() int {
	return c.snapshot.Len()
}
