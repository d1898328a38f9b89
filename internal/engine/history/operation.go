package history

import "time"

// State is the lifecycle state of a command.
type State int

const (
	// StateUnapplied is the state of a command that has not run yet.
	StateUnapplied State = iota
	// StateApplied is the state after Execute or Redo.
	StateApplied
	// StateReverted is the state after Undo.
	StateReverted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnapplied:
		return "unapplied"
	case StateApplied:
		return "applied"
	case StateReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Placement controls where Undo puts the grouped items back.
type Placement int

const (
	// PlaceContiguous re-inserts all items at the first selected index,
	// in selection order. For interval selections this restores the list
	// exactly.
	PlaceContiguous Placement = iota

	// PlaceOriginal re-inserts every item at the index it had when the
	// selection was captured, which also restores scattered selections.
	PlaceOriginal
)

// String returns the placement name.
func (p Placement) String() string {
	switch p {
	case PlaceContiguous:
		return "contiguous"
	case PlaceOriginal:
		return "original"
	default:
		return "unknown"
	}
}

// OperationInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the command was first performed
	Items       int       // Number of items the command moved
}
