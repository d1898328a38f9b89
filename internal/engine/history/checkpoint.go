package history

// Checkpoint marks an undo depth that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// Depth returns the undo depth recorded by the checkpoint.
func (cp Checkpoint) Depth() int {
	return cp.undoDepth
}

// CreateCheckpoint records the current undo depth.
func (h *History) CreateCheckpoint() Checkpoint {
	return Checkpoint{undoDepth: h.UndoCount()}
}

// UndoToCheckpoint undoes every command performed after cp.
func (h *History) UndoToCheckpoint(cp Checkpoint, list ListModel, tr TreeModel) (int, error) {
	n := 0
	for h.UndoCount() > cp.undoDepth {
		if err := h.Undo(list, tr); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// RedoToCheckpoint redoes commands until the undo depth reaches cp again
// or the redo stack runs out.
func (h *History) RedoToCheckpoint(cp Checkpoint, list ListModel, tr TreeModel) (int, error) {
	n := 0
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		if err := h.Redo(list, tr); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
