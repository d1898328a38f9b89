// Package engine provides the regrouping engine: a linear list of items,
// a tree with a fixed root, and an undo/redo history of grouping
// operations that move selected items from the list into the tree.
//
// # Architecture
//
// The engine is composed of these sub-packages:
//
//   - listing: the ordered item store with its selection model
//   - tree: the rooted node store; subtrees are detached by identity
//   - history: the grouping command and the undo/redo stacks
//
// The Engine type is the facade that owns one of each and serializes
// access to them.
//
// # Basic Usage
//
//	eng := engine.New(engine.WithItems("a", "b", "c", "d"))
//
//	eng.SelectRange(1, 2)
//	eng.Group() // "b" becomes a subtree with child "c"
//
//	eng.Undo() // "b", "c" are back at index 1
//	eng.Redo() // regrouped under a fresh node
//
// Group with an empty selection is a no-op: it returns false and records
// nothing. Undo and Redo on an empty stack return false.
//
// # Undo Placement
//
// By default undo re-inserts all grouped items at the index of the first
// one, in selection order, which restores interval selections exactly.
// WithPlacement(PlaceOriginal) puts each item back at its own index
// instead, which also restores scattered selections.
//
// # Events
//
// With WithPublisher, the engine publishes list.changed,
// tree.structure.changed and history.* events (see the event/events
// package). Events are published after the engine lock is released.
//
// # Thread Safety
//
// All Engine methods are safe for concurrent use. The underlying stores
// are not; do not share them outside the engine.
package engine
