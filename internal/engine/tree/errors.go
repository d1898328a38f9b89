package tree

import "errors"

// Errors returned by tree operations.
var (
	// ErrNodeNotFound indicates the node is not a child of the given parent.
	ErrNodeNotFound = errors.New("node not found")

	// ErrForeignParent indicates the parent node does not belong to this tree.
	ErrForeignParent = errors.New("parent does not belong to tree")

	// ErrAttached indicates the node already has a parent.
	ErrAttached = errors.New("node already attached")

	// ErrNilNode indicates a nil node was passed.
	ErrNilNode = errors.New("nil node")
)
