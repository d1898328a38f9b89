package listing

import "errors"

// Errors returned by store operations.
var (
	// ErrItemNotFound indicates no item with the given ID is in the store.
	ErrItemNotFound = errors.New("item not found")

	// ErrIndexOutOfRange indicates an index outside the valid store range.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrDuplicateItem indicates an item with the same ID is already stored.
	ErrDuplicateItem = errors.New("item already in store")
)
