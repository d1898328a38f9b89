// Package history provides undo/redo for grouping operations.
//
// The history system uses the Command pattern: each grouping request is a
// Command that can be executed once, then undone and redone any number of
// times. Key concepts:
//
// # Commands
//
// Commands implement the Command interface with Execute, Undo and Redo.
// Execute captures what it needs (a selection snapshot) so that Undo and
// Redo never consult live state again. The built-in command is:
//   - GroupCommand: move the selected items out of the list and regroup
//     them as a new subtree under the tree root
//
// # History Stack
//
// The History type manages the undo and redo stacks:
//
//	h := NewHistory(1000) // Max 1000 undo entries
//
//	// Perform a grouping
//	ok, err := h.Execute(NewGroupCommand(), list, tree)
//
//	// Undo/redo
//	h.Undo(list, tree)
//	h.Redo(list, tree)
//
// A command whose Execute returns ErrNoop (nothing selected) is discarded
// and never reaches either stack. Executing a new command clears the redo
// stack. A command is in at most one stack at a time.
//
// # Checkpoints
//
// A Checkpoint records the undo depth so callers can rewind to it:
//
//	cp := h.CreateCheckpoint()
//	// ... more groupings ...
//	h.UndoToCheckpoint(cp, list, tree)
package history
