package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/regroup/internal/engine/history"
	"github.com/dshills/regroup/internal/engine/listing"
	"github.com/dshills/regroup/internal/engine/tree"
	"github.com/dshills/regroup/internal/event"
	"github.com/dshills/regroup/internal/event/events"
	"github.com/dshills/regroup/internal/event/topic"
)

// Re-export commonly used types for convenience.
type (
	// Item is an entry of the linear store.
	Item = listing.Item

	// ItemID is an item's stable identity.
	ItemID = listing.ItemID

	// Node is a node of the hierarchical store.
	Node = tree.Node

	// Command is an undoable grouping command.
	Command = history.Command

	// OperationInfo describes a history entry.
	OperationInfo = history.OperationInfo

	// Checkpoint marks an undo depth.
	Checkpoint = history.Checkpoint

	// Placement controls where undo puts items back.
	Placement = history.Placement
)

// Re-export constants.
const (
	PlaceContiguous = history.PlaceContiguous
	PlaceOriginal   = history.PlaceOriginal
)

// Engine is the facade over the linear store, the tree and the grouping
// history. It owns all three and is the only writer.
//
// All operations are thread-safe. Change events are published after the
// engine lock is released, so handlers may call back into the engine.
type Engine struct {
	mu sync.RWMutex

	// Core components
	list    *listing.Store
	tree    *tree.Tree
	history *history.History

	// Configuration
	rootLabel      string
	maxUndoEntries int
	placement      history.Placement
	initItems      []string
	source         string

	// Events
	publisher      event.Publisher
	onPublishError func(error)
	pending        []any
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		rootLabel:      DefaultRootLabel,
		maxUndoEntries: DefaultMaxUndoEntries,
		source:         DefaultSource,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.history = history.NewHistory(e.maxUndoEntries)
	e.resetStoresLocked(e.initItems)
	e.pending = nil
	return e
}

// resetStoresLocked replaces both stores and wires their listeners.
func (e *Engine) resetStoresLocked(labels []string) {
	e.list = listing.New(labels...)
	e.tree = tree.New(e.rootLabel)

	list, tr := e.list, e.tree
	list.OnChange(func(c listing.Change) {
		enqueue(e, events.TopicListChanged, events.ListChanged{
			Kind:   c.Kind.String(),
			ItemID: string(c.Item.ID),
			Label:  c.Item.Label,
			Index:  c.Index,
			Len:    list.Len(),
		})
	})
	tr.OnStructureChanged(func(c tree.Change) {
		payload := events.TreeStructureChanged{
			Kind:  c.Kind.String(),
			Index: c.Index,
			Size:  tr.Size(),
		}
		if c.Parent != nil {
			payload.ParentLabel = c.Parent.Label()
		}
		if c.Node != nil {
			payload.NodeID = string(c.Node.ID())
			payload.NodeLabel = c.Node.Label()
		}
		enqueue(e, events.TopicTreeStructureChanged, payload)
	})
}

// ============================================================================
// Events
// ============================================================================

// enqueue records an event for publication once the lock is released.
// Callers hold e.mu.
func enqueue[T any](e *Engine, t topic.Topic, payload T) {
	if e.publisher == nil {
		return
	}
	e.pending = append(e.pending, event.NewEvent(t, payload, e.source))
}

func (e *Engine) queueHistory(t topic.Topic, info history.OperationInfo) {
	enqueue(e, t, events.HistoryChanged{
		Description: info.Description,
		Items:       info.Items,
		UndoCount:   e.history.UndoCount(),
		RedoCount:   e.history.RedoCount(),
	})
}

// unlockAndPublish releases the write lock and publishes queued events.
func (e *Engine) unlockAndPublish() {
	pending := e.pending
	e.pending = nil
	pub, onErr := e.publisher, e.onPublishError
	e.mu.Unlock()

	for _, ev := range pending {
		if err := pub.Publish(context.Background(), ev); err != nil && onErr != nil {
			onErr(err)
		}
	}
}

// ============================================================================
// Selection
// ============================================================================

// Select replaces the selection with the items at the given 0-based
// indices. On error the selection is unchanged.
func (e *Engine) Select(indices ...int) error {
	e.mu.Lock()
	defer e.unlockAndPublish()
	return e.list.Select(indices...)
}

// SelectRange selects the inclusive 0-based interval [from, to].
func (e *Engine) SelectRange(from, to int) error {
	e.mu.Lock()
	defer e.unlockAndPublish()
	return e.list.SelectRange(from, to)
}

// SelectLabels selects the first unselected occurrence of each label
// and returns how many items were selected.
func (e *Engine) SelectLabels(labels ...string) int {
	e.mu.Lock()
	defer e.unlockAndPublish()
	return e.list.SelectLabels(labels...)
}

// ClearSelection deselects everything.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.unlockAndPublish()
	e.list.ClearSelection()
}

// Selected returns the selected items in list order.
func (e *Engine) Selected() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.list.SelectedItems()
}

// ============================================================================
// Grouping and Undo/Redo
// ============================================================================

// Group moves the selected items into a new subtree under the root and
// records the operation. With nothing selected it returns false and
// changes nothing.
func (e *Engine) Group() (bool, error) {
	return e.Execute(history.NewGroupCommandWithPlacement(e.placement))
}

// Execute performs cmd against the engine's stores and records it.
func (e *Engine) Execute(cmd Command) (bool, error) {
	e.mu.Lock()
	defer e.unlockAndPublish()

	ok, err := e.history.Execute(cmd, e.list, e.tree)
	if ok {
		info, _ := e.history.PeekUndo()
		e.queueHistory(events.TopicHistoryPerformed, info)
	}
	return ok, err
}

// Undo reverses the most recent grouping. It returns false with a nil
// error when there is nothing to undo.
func (e *Engine) Undo() (bool, error) {
	e.mu.Lock()
	defer e.unlockAndPublish()

	if err := e.history.Undo(e.list, e.tree); err != nil {
		if errors.Is(err, history.ErrNothingToUndo) {
			return false, nil
		}
		return false, err
	}
	info, _ := e.history.PeekRedo()
	e.queueHistory(events.TopicHistoryUndone, info)
	return true, nil
}

// Redo re-applies the most recently undone grouping. It returns false
// with a nil error when there is nothing to redo.
func (e *Engine) Redo() (bool, error) {
	e.mu.Lock()
	defer e.unlockAndPublish()

	if err := e.history.Redo(e.list, e.tree); err != nil {
		if errors.Is(err, history.ErrNothingToRedo) {
			return false, nil
		}
		return false, err
	}
	info, _ := e.history.PeekUndo()
	e.queueHistory(events.TopicHistoryRedone, info)
	return true, nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of undo steps available.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of redo steps available.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// UndoInfo describes the undo stack, oldest first.
func (e *Engine) UndoInfo() []OperationInfo {
	return e.history.UndoInfo()
}

// RedoInfo describes the redo stack, oldest first.
func (e *Engine) RedoInfo() []OperationInfo {
	return e.history.RedoInfo()
}

// ClearHistory drops all undo/redo history. The stores keep their state.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	defer e.unlockAndPublish()

	e.history.Clear()
	e.queueHistory(events.TopicHistoryCleared, history.OperationInfo{Description: "Clear history"})
}

// Checkpoint records the current undo depth.
func (e *Engine) Checkpoint() Checkpoint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CreateCheckpoint()
}

// UndoToCheckpoint undoes every grouping performed after cp and returns
// how many were undone.
func (e *Engine) UndoToCheckpoint(cp Checkpoint) (int, error) {
	e.mu.Lock()
	defer e.unlockAndPublish()

	n, err := e.history.UndoToCheckpoint(cp, e.list, e.tree)
	if n > 0 {
		info, _ := e.history.PeekRedo()
		e.queueHistory(events.TopicHistoryUndone, info)
	}
	return n, err
}

// RedoToCheckpoint redoes groupings until the undo depth reaches cp.
func (e *Engine) RedoToCheckpoint(cp Checkpoint) (int, error) {
	e.mu.Lock()
	defer e.unlockAndPublish()

	n, err := e.history.RedoToCheckpoint(cp, e.list, e.tree)
	if n > 0 {
		info, _ := e.history.PeekUndo()
		e.queueHistory(events.TopicHistoryRedone, info)
	}
	return n, err
}

// ============================================================================
// Read Operations
// ============================================================================

// Items returns all items with their current positions.
func (e *Engine) Items() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.list.Items()
}

// Labels returns all item labels in order.
func (e *Engine) Labels() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.list.Labels()
}

// Len returns the number of items in the linear store.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.list.Len()
}

// Root returns a deep copy of the tree. Node IDs are preserved.
func (e *Engine) Root() *Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Snapshot()
}

// TreeSize returns the node count of the tree, including the root.
func (e *Engine) TreeSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Size()
}

// MaxUndoEntries returns the configured undo depth.
func (e *Engine) MaxUndoEntries() int {
	return e.history.MaxEntries()
}

// Placement returns how undone groupings restore their items.
func (e *Engine) Placement() Placement {
	return e.placement
}

// ============================================================================
// Reset
// ============================================================================

// Reset replaces the stores with a fresh list holding labels and an empty
// tree, and clears the history.
func (e *Engine) Reset(labels ...string) {
	e.mu.Lock()
	defer e.unlockAndPublish()

	e.history.Clear()
	e.resetStoresLocked(labels)

	enqueue(e, events.TopicListChanged, events.ListChanged{Kind: "reset", Index: -1, Len: e.list.Len()})
	e.tree.NotifyStructureChanged()
	e.queueHistory(events.TopicHistoryCleared, history.OperationInfo{Description: "Reset"})
}
