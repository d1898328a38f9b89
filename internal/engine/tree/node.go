package tree

import "github.com/google/uuid"

// NodeID uniquely identifies a node for its whole lifetime.
type NodeID string

// Node is a labeled tree node with ordered children.
// A node has at most one parent; the tree maintains the back-link.
type Node struct {
	id       NodeID
	label    string
	parent   *Node
	children []*Node
}

// NewNode creates a detached node with the given children.
// Children must themselves be detached.
func NewNode(label string, children ...*Node) *Node {
	n := &Node{
		id:    NodeID(uuid.New().String()),
		label: label,
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// ID returns the node's identity.
func (n *Node) ID() NodeID {
	return n.id
}

// Label returns the node label.
func (n *Node) Label() string {
	return n.label
}

// Parent returns the parent node, or nil when detached or root.
func (n *Node) Parent() *Node {
	return n.parent
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the i-th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildLabels returns the labels of the direct children in order.
func (n *Node) ChildLabels() []string {
	out := make([]string, len(n.children))
	for i, c := range n.children {
		out[i] = c.label
	}
	return out
}

// IndexOf returns the position of child among n's children by identity, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the subtree rooted at n.
// Copies keep the original IDs; the copy's root is detached.
func (n *Node) Clone() *Node {
	cp := &Node{id: n.id, label: n.label}
	if len(n.children) > 0 {
		cp.children = make([]*Node, len(n.children))
		for i, c := range n.children {
			cc := c.Clone()
			cc.parent = cp
			cp.children[i] = cc
		}
	}
	return cp
}

// EqualStructure reports whether both subtrees have the same labels in
// the same shape. Identities are ignored.
func (n *Node) EqualStructure(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.label != other.label || len(n.children) != len(other.children) {
		return false
	}
	for i := range n.children {
		if !n.children[i].EqualStructure(other.children[i]) {
			return false
		}
	}
	return true
}

// Depth returns the height of the subtree rooted at n; a leaf has depth 1.
func (n *Node) Depth() int {
	max := 0
	for _, c := range n.children {
		if d := c.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		c.walk(fn, depth+1)
	}
}

// String returns the node label.
func (n *Node) String() string {
	return n.label
}
