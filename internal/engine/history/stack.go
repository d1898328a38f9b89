package history

import (
	"errors"
	"sync"
	"time"
)

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// entry wraps a command with the time it was first performed.
type entry struct {
	command   Command
	performed time.Time
}

func (e *entry) info() OperationInfo {
	info := OperationInfo{
		Description: e.command.Description(),
		Timestamp:   e.performed,
	}
	if s, ok := e.command.(interface{ Len() int }); ok {
		info.Items = s.Len()
	}
	return info
}

// History keeps performed commands on an undo stack and undone commands
// on a redo stack. A command is never on both stacks.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	maxEntries int
}

// NewHistory creates a history that keeps at most maxEntries undo steps.
// A non-positive value selects DefaultMaxEntries.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Execute runs cmd and records it.
// A command reporting ErrNoop is discarded and Execute returns false
// with a nil error. Any other failure is returned and nothing is recorded.
func (h *History) Execute(cmd Command, list ListModel, tr TreeModel) (bool, error) {
	if err := cmd.Execute(list, tr); err != nil {
		if errors.Is(err, ErrNoop) {
			return false, nil
		}
		return false, err
	}

	h.Push(cmd)
	return true, nil
}

// Push records an already-applied command and clears the redo stack.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = append(h.undoStack, &entry{command: cmd, performed: time.Now()})
	h.redoStack = nil
	h.trimLocked()
}

// trimLocked evicts the oldest undo entries beyond maxEntries.
func (h *History) trimLocked() {
	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverses the most recent command and moves it to the redo stack.
// It returns ErrNothingToUndo when the undo stack is empty.
// The lock is not held while the command runs; the popped entry sits on
// neither stack until it completes.
func (h *History) Undo(list ListModel, tr TreeModel) error {
	e := h.pop(&h.undoStack)
	if e == nil {
		return ErrNothingToUndo
	}

	if err := e.command.Undo(list, tr); err != nil {
		h.push(&h.undoStack, e)
		return err
	}

	h.push(&h.redoStack, e)
	return nil
}

// Redo re-applies the most recently undone command and moves it back to
// the undo stack. It returns ErrNothingToRedo when the redo stack is empty.
func (h *History) Redo(list ListModel, tr TreeModel) error {
	e := h.pop(&h.redoStack)
	if e == nil {
		return ErrNothingToRedo
	}

	if err := e.command.Redo(list, tr); err != nil {
		h.push(&h.redoStack, e)
		return err
	}

	h.push(&h.undoStack, e)
	return nil
}

func (h *History) pop(stack *[]*entry) *entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := *stack
	if len(s) == 0 {
		return nil
	}
	e := s[len(s)-1]
	*stack = s[:len(s)-1]
	return e
}

func (h *History) push(stack *[]*entry, e *entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	*stack = append(*stack, e)
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.UndoCount() > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.RedoCount() > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear drops both stacks. The stores are not touched.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo describes the redo stack, oldest first.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(stack []*entry) []OperationInfo {
	out := make([]OperationInfo, len(stack))
	for i, e := range stack {
		out[i] = e.info()
	}
	return out
}

// PeekUndo describes the command Undo would reverse next.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo describes the command Redo would re-apply next.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the undo depth, evicting the oldest entries
// if the stack is already deeper.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	h.trimLocked()
}

// MaxEntries returns the maximum undo depth.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
