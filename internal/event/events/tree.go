package events

import "github.com/dshills/regroup/internal/event/topic"

// Tree event topics.
const (
	// TopicTreeStructureChanged is published after a subtree is attached
	// or detached, and when observers are asked to reload the tree.
	TopicTreeStructureChanged topic.Topic = "tree.structure.changed"
)

// TreeStructureChanged describes a hierarchical store mutation.
type TreeStructureChanged struct {
	// Kind is "attached", "detached" or "reload".
	Kind string

	ParentLabel string
	NodeID      string
	NodeLabel   string

	// Index is the child position under the parent, -1 for reloads.
	Index int

	// Size is the node count of the tree after the change.
	Size int
}
