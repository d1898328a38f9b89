package render

import (
	"fmt"
	"strings"

	"github.com/dshills/regroup/internal/engine"
)

// Tree connectors.
const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "
)

// List renders items one per line with 1-based numbers. Selected items
// are marked with "*".
func List(s Styles, items []engine.Item, selected []engine.Item) string {
	if len(items) == 0 {
		return s.RenderMuted("(empty)") + "\n"
	}

	sel := make(map[engine.ItemID]bool, len(selected))
	for _, it := range selected {
		sel[it.ID] = true
	}

	var b strings.Builder
	for i, it := range items {
		if sel[it.ID] {
			b.WriteString(s.paint(s.Selected, fmt.Sprintf("* %3d  %s", i+1, it.Label)))
		} else {
			b.WriteString(s.paint(s.Item, fmt.Sprintf("  %3d  %s", i+1, it.Label)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Tree renders root and its descendants with box-drawing connectors.
func Tree(s Styles, root *engine.Node) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(s.paint(s.Group, root.Label()))
	b.WriteByte('\n')
	writeChildren(&b, s, root, "")
	return b.String()
}

func writeChildren(b *strings.Builder, s Styles, n *engine.Node, prefix string) {
	children := n.Children()
	for i, c := range children {
		last := i == len(children)-1
		branch, indent := branchMid, indentMid
		if last {
			branch, indent = branchLast, indentLast
		}

		style := s.Leaf
		if !c.IsLeaf() || n.Parent() == nil {
			style = s.Group
		}
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(s.paint(style, c.Label()))
		b.WriteByte('\n')
		writeChildren(b, s, c, prefix+indent)
	}
}

// History renders the undo and redo stacks, most recent first.
func History(s Styles, undo, redo []engine.OperationInfo) string {
	var b strings.Builder
	writeStack(&b, s, "Undo", undo)
	writeStack(&b, s, "Redo", redo)
	return b.String()
}

func writeStack(b *strings.Builder, s Styles, name string, infos []engine.OperationInfo) {
	fmt.Fprintf(b, "%s (%d)\n", s.RenderTitle(name), len(infos))
	if len(infos) == 0 {
		b.WriteString("  " + s.RenderMuted("(none)") + "\n")
		return
	}
	for i := len(infos) - 1; i >= 0; i-- {
		info := infos[i]
		fmt.Fprintf(b, "  %s  %s\n", info.Description,
			s.RenderMuted(info.Timestamp.Format("15:04:05")))
	}
}

// Summary renders a one-line state summary.
func Summary(s Styles, e *engine.Engine) string {
	return s.RenderMuted(fmt.Sprintf("%d items, %d selected, %d groups, undo %d, redo %d",
		e.Len(), len(e.Selected()), e.Root().ChildCount(), e.UndoCount(), e.RedoCount()))
}
