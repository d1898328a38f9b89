// Package tree provides the hierarchical store: a rooted tree of labeled
// nodes with a single fixed root.
//
// Subtrees are attached under a parent and detached by node identity, never
// by label, so two groups with the same label remain distinct. Every
// mutation notifies the registered listeners so a presentation layer can
// refresh.
package tree

import "fmt"

// DefaultRootLabel is the label of the root when none is given.
const DefaultRootLabel = "Root"

// ChangeKind categorizes structure changes.
type ChangeKind int

const (
	// ChangeAttached indicates a subtree was attached.
	ChangeAttached ChangeKind = iota
	// ChangeDetached indicates a subtree was detached.
	ChangeDetached
	// ChangeReload indicates listeners should refresh the whole tree.
	ChangeReload
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAttached:
		return "attached"
	case ChangeDetached:
		return "detached"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change describes a structure change.
type Change struct {
	Kind   ChangeKind
	Parent *Node
	Node   *Node
	Index  int // Child position of Node under Parent, -1 for reloads
}

// Listener is notified after every structure change.
type Listener func(Change)

// Tree is a rooted tree with a fixed root node.
// A Tree is not safe for concurrent use.
type Tree struct {
	root      *Node
	listeners []Listener
}

// New creates a tree whose root has the given label.
// An empty label selects DefaultRootLabel.
func New(rootLabel string) *Tree {
	if rootLabel == "" {
		rootLabel = DefaultRootLabel
	}
	return &Tree{root: NewNode(rootLabel)}
}

// Root returns the fixed root node.
func (t *Tree) Root() *Node {
	return t.root
}

// NewNode creates a detached node owned by no parent yet.
func (t *Tree) NewNode(label string, children ...*Node) *Node {
	return NewNode(label, children...)
}

// OnStructureChanged registers a listener.
func (t *Tree) OnStructureChanged(fn Listener) {
	if fn != nil {
		t.listeners = append(t.listeners, fn)
	}
}

// NotifyStructureChanged tells listeners to refresh the whole tree.
func (t *Tree) NotifyStructureChanged() {
	t.notify(Change{Kind: ChangeReload, Parent: t.root, Index: -1})
}

func (t *Tree) notify(c Change) {
	for _, fn := range t.listeners {
		fn(c)
	}
}

// Contains returns true if node is the root or one of its descendants.
func (t *Tree) Contains(node *Node) bool {
	for n := node; n != nil; n = n.parent {
		if n == t.root {
			return true
		}
	}
	return false
}

// Attach appends node as the last child of parent.
// The parent must belong to this tree and node must be detached.
func (t *Tree) Attach(parent, node *Node) error {
	if parent == nil || node == nil {
		return ErrNilNode
	}
	if !t.Contains(parent) {
		return fmt.Errorf("attach %q under %q: %w", node.label, parent.label, ErrForeignParent)
	}
	if node.parent != nil || node == t.root {
		return fmt.Errorf("attach %q: %w", node.label, ErrAttached)
	}

	node.parent = parent
	parent.children = append(parent.children, node)
	t.notify(Change{Kind: ChangeAttached, Parent: parent, Node: node, Index: len(parent.children) - 1})
	return nil
}

// Detach removes node from parent's children by identity.
// The detached subtree is left intact and may be attached again.
func (t *Tree) Detach(parent, node *Node) error {
	if parent == nil || node == nil {
		return ErrNilNode
	}
	idx := parent.IndexOf(node)
	if idx < 0 {
		return fmt.Errorf("detach %q from %q: %w", node.label, parent.label, ErrNodeNotFound)
	}

	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)
	node.parent = nil
	t.notify(Change{Kind: ChangeDetached, Parent: parent, Node: node, Index: idx})
	return nil
}

// Find returns the node with the given ID, or nil.
func (t *Tree) Find(id NodeID) *Node {
	var found *Node
	t.root.Walk(func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Size returns the number of nodes including the root.
func (t *Tree) Size() int {
	count := 0
	t.root.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Snapshot returns a deep copy of the tree rooted at the root node.
func (t *Tree) Snapshot() *Node {
	return t.root.Clone()
}
