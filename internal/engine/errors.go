package engine

import (
	"github.com/dshills/regroup/internal/engine/history"
	"github.com/dshills/regroup/internal/engine/listing"
)

// Errors returned by engine operations.
var (
	// ErrIndexOutOfRange indicates a selection index outside the list.
	ErrIndexOutOfRange = listing.ErrIndexOutOfRange

	// ErrInvalidState indicates a command was driven out of order.
	ErrInvalidState = history.ErrInvalidState
)
