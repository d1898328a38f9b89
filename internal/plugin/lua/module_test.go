package lua

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/regroup/internal/engine"
)

type logRecorder struct {
	lines []string
}

func (r *logRecorder) Info(msg string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(msg, args...))
}

func newScripted(t *testing.T, labels ...string) (*State, *engine.Engine, *logRecorder) {
	t.Helper()
	e := engine.New(engine.WithItems(labels...))
	log := &logRecorder{}
	s := NewState()
	t.Cleanup(func() { _ = s.Close() })
	Install(s, e, log)
	return s, e, log
}

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Item %d", i+1)
	}
	return out
}

func TestModule_Scenario(t *testing.T) {
	s, e, _ := newScripted(t, numbered(50)...)

	err := s.DoString(context.Background(), `
regroup.select(3, 4, 5)
assert(#regroup.selected() == 3)
assert(regroup.group())
assert(regroup.count() == 47)
local t = regroup.tree()
assert(#t.children == 1)
assert(t.children[1].label == "Item 3")
assert(t.children[1].children[2].label == "Item 5")

assert(regroup.undo())
assert(regroup.count() == 50)
assert(regroup.items()[3] == "Item 3")
assert(#regroup.tree().children == 0)
assert(regroup.can_redo())

assert(regroup.redo())
assert(not regroup.can_redo())
assert(regroup.can_undo())
`)
	require.NoError(t, err)

	assert.Equal(t, 47, e.Len())
	assert.Equal(t, 1, e.Root().ChildCount())
}

func TestModule_Noops(t *testing.T) {
	s, e, _ := newScripted(t, "a", "b")

	require.NoError(t, s.DoString(context.Background(), `
g = regroup.group()
u = regroup.undo()
r = regroup.redo()
`))
	assert.Equal(t, lua.LFalse, s.GetGlobal("g"))
	assert.Equal(t, lua.LFalse, s.GetGlobal("u"))
	assert.Equal(t, lua.LFalse, s.GetGlobal("r"))
	assert.Equal(t, 0, e.UndoCount())
}

func TestModule_Selection(t *testing.T) {
	s, e, _ := newScripted(t, "a", "b", "c", "b")

	require.NoError(t, s.DoString(context.Background(), `
regroup.select_range(2, 3)
first = table.concat(regroup.selected(), ",")
matched = regroup.select_labels("b", "b", "zzz")
second = table.concat(regroup.selected(), ",")
regroup.clear()
cleared = #regroup.selected()
`))
	assert.Equal(t, lua.LString("b,c"), s.GetGlobal("first"))
	assert.Equal(t, lua.LNumber(2), s.GetGlobal("matched"))
	assert.Equal(t, lua.LString("b,b"), s.GetGlobal("second"))
	assert.Equal(t, lua.LNumber(0), s.GetGlobal("cleared"))
	assert.Empty(t, e.Selected())
}

func TestModule_SelectOutOfRange(t *testing.T) {
	s, e, _ := newScripted(t, "a", "b")
	require.NoError(t, e.Select(0))

	err := s.DoString(context.Background(), `regroup.select(3)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select")
	assert.Len(t, e.Selected(), 1, "selection unchanged")

	err = s.DoString(context.Background(), `regroup.select("x")`)
	assert.Error(t, err)

	err = s.DoString(context.Background(), `regroup.select_range(1, 1e18)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select_range")
	assert.Len(t, e.Selected(), 1, "selection unchanged")
}

func TestModule_ProtectedErrors(t *testing.T) {
	s, _, _ := newScripted(t, "a")

	require.NoError(t, s.DoString(context.Background(), `
ok, msg = pcall(regroup.select_range, 1, 9)
`))
	assert.Equal(t, lua.LFalse, s.GetGlobal("ok"))
	assert.Contains(t, s.GetGlobal("msg").String(), "select_range")
}

func TestModule_TreeIDs(t *testing.T) {
	s, e, _ := newScripted(t, "a", "b")
	require.NoError(t, e.Select(0, 1))
	_, err := e.Group()
	require.NoError(t, err)

	require.NoError(t, s.DoString(context.Background(), `t = regroup.tree()`))
	tree := NewBridge(s.L).ToGoValue(s.GetGlobal("t")).(map[string]any)

	assert.Equal(t, string(e.Root().ID()), tree["id"])
	children := tree["children"].([]any)
	require.Len(t, children, 1)
	group := children[0].(map[string]any)
	assert.Equal(t, "a", group["label"])
	assert.Equal(t, []any{map[string]any{
		"id":       string(e.Root().Child(0).Child(0).ID()),
		"label":    "b",
		"children": map[string]any{},
	}}, group["children"])
}

func TestModule_Log(t *testing.T) {
	s, _, log := newScripted(t, "a")

	require.NoError(t, s.DoString(context.Background(), `regroup.log("hello " .. regroup.count())`))
	assert.Equal(t, []string{"hello 1"}, log.lines)

	s2 := NewState()
	defer s2.Close()
	Install(s2, engine.New(), nil)
	assert.NoError(t, s2.DoString(context.Background(), `regroup.log("dropped")`))
}
