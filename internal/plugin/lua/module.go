package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/regroup/internal/engine"
)

// ModuleName is the global the engine API is installed under.
const ModuleName = "regroup"

// Engine is the part of the grouping engine exposed to scripts.
type Engine interface {
	Items() []engine.Item
	Selected() []engine.Item
	Len() int
	Select(indices ...int) error
	SelectRange(from, to int) error
	SelectLabels(labels ...string) int
	ClearSelection()
	Group() (bool, error)
	Undo() (bool, error)
	Redo() (bool, error)
	CanUndo() bool
	CanRedo() bool
	Root() *engine.Node
}

// Logger receives regroup.log messages.
type Logger interface {
	Info(msg string, args ...any)
}

// Install registers the regroup module on s, bound to e. log may be nil.
func Install(s *State, e Engine, log Logger) {
	m := &module{engine: e, log: log, bridge: NewBridge(s.L)}
	s.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"items":         m.items,
		"selected":      m.selected,
		"count":         m.count,
		"select":        m.selectIndices,
		"select_range":  m.selectRange,
		"select_labels": m.selectLabels,
		"clear":         m.clear,
		"group":         m.group,
		"undo":          m.undo,
		"redo":          m.redo,
		"can_undo":      m.canUndo,
		"can_redo":      m.canRedo,
		"tree":          m.tree,
		"log":           m.logMessage,
	})
}

type module struct {
	engine Engine
	log    Logger
	bridge *Bridge
}

func (m *module) items(L *lua.LState) int {
	L.Push(m.bridge.ItemsToTable(m.engine.Items()))
	return 1
}

func (m *module) selected(L *lua.LState) int {
	L.Push(m.bridge.ItemsToTable(m.engine.Selected()))
	return 1
}

func (m *module) count(L *lua.LState) int {
	L.Push(lua.LNumber(m.engine.Len()))
	return 1
}

// selectIndices takes 1-based positions.
func (m *module) selectIndices(L *lua.LState) int {
	n := L.GetTop()
	indices := make([]int, n)
	for i := 1; i <= n; i++ {
		indices[i-1] = L.CheckInt(i) - 1
	}
	if err := m.engine.Select(indices...); err != nil {
		L.RaiseError("select: %v", err)
	}
	return 0
}

func (m *module) selectRange(L *lua.LState) int {
	from := L.CheckInt(1) - 1
	to := L.CheckInt(2) - 1
	if err := m.engine.SelectRange(from, to); err != nil {
		L.RaiseError("select_range: %v", err)
	}
	return 0
}

func (m *module) selectLabels(L *lua.LState) int {
	n := L.GetTop()
	labels := make([]string, n)
	for i := 1; i <= n; i++ {
		labels[i-1] = L.CheckString(i)
	}
	L.Push(lua.LNumber(m.engine.SelectLabels(labels...)))
	return 1
}

func (m *module) clear(_ *lua.LState) int {
	m.engine.ClearSelection()
	return 0
}

func (m *module) group(L *lua.LState) int {
	return pushResult(L, "group", m.engine.Group)
}

func (m *module) undo(L *lua.LState) int {
	return pushResult(L, "undo", m.engine.Undo)
}

func (m *module) redo(L *lua.LState) int {
	return pushResult(L, "redo", m.engine.Redo)
}

func pushResult(L *lua.LState, op string, fn func() (bool, error)) int {
	ok, err := fn()
	if err != nil {
		L.RaiseError("%s: %v", op, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (m *module) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(m.engine.CanUndo()))
	return 1
}

func (m *module) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(m.engine.CanRedo()))
	return 1
}

func (m *module) tree(L *lua.LState) int {
	L.Push(m.bridge.NodeToTable(m.engine.Root()))
	return 1
}

func (m *module) logMessage(L *lua.LState) int {
	msg := L.ToStringMeta(L.CheckAny(1)).String()
	if m.log != nil {
		m.log.Info("%s", msg)
	}
	return 0
}
