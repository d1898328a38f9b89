package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/regroup/internal/engine"
)

func groupedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.WithItems("a", "b", "c", `say "hi"`))
	require.NoError(t, e.Select(0, 2))
	ok, err := e.Group()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, e.Select(0))
	return e
}

func TestDocument_Shape(t *testing.T) {
	e := groupedEngine(t)

	doc, err := Document(e)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(doc), string(doc))

	items := gjson.GetBytes(doc, "items")
	require.Equal(t, 2, len(items.Array()))
	assert.Equal(t, "b", gjson.GetBytes(doc, "items.0.label").String())
	assert.Equal(t, `say "hi"`, gjson.GetBytes(doc, "items.1.label").String())
	assert.Equal(t, string(e.Items()[0].ID), gjson.GetBytes(doc, "items.0.id").String())

	assert.Equal(t, []string{string(e.Items()[0].ID)}, stringArray(gjson.GetBytes(doc, "selected")))

	assert.Equal(t, "Root", gjson.GetBytes(doc, "tree.label").String())
	assert.Equal(t, "a", gjson.GetBytes(doc, "tree.children.0.label").String())
	assert.Equal(t, []string{"c"}, stringArray(gjson.GetBytes(doc, "tree.children.0.children.#.label")))
	assert.Equal(t, string(e.Root().ID()), gjson.GetBytes(doc, "tree.id").String())

	assert.Equal(t, int64(1), gjson.GetBytes(doc, "history.undo.#").Int())
	assert.Equal(t, int64(2), gjson.GetBytes(doc, "history.undo.0.items").Int())
	assert.Contains(t, gjson.GetBytes(doc, "history.undo.0.description").String(), "a")
	assert.Equal(t, int64(0), gjson.GetBytes(doc, "history.redo.#").Int())
}

func TestDocument_AfterUndo(t *testing.T) {
	e := groupedEngine(t)
	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)

	doc, err := Document(e)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", `say "hi"`}, stringArray(gjson.GetBytes(doc, "items.#.label")))
	assert.Equal(t, int64(0), gjson.GetBytes(doc, "tree.children.#").Int())
	assert.Equal(t, int64(0), gjson.GetBytes(doc, "history.undo.#").Int())
	assert.Equal(t, int64(1), gjson.GetBytes(doc, "history.redo.#").Int())
}

func TestDocument_Empty(t *testing.T) {
	doc, err := Document(engine.New())
	require.NoError(t, err)
	assert.Equal(t, "[]", gjson.GetBytes(doc, "items").Raw)
	assert.Equal(t, "[]", gjson.GetBytes(doc, "selected").Raw)
	assert.Equal(t, "[]", gjson.GetBytes(doc, "tree.children").Raw)
}

func TestWrite(t *testing.T) {
	e := groupedEngine(t)

	var compact, indented bytes.Buffer
	require.NoError(t, Write(&compact, e, false))
	require.NoError(t, Write(&indented, e, true))

	assert.True(t, strings.HasSuffix(compact.String(), "\n"))
	assert.Equal(t, 1, strings.Count(compact.String(), "\n"))
	assert.Greater(t, strings.Count(indented.String(), "\n"), 1)
	assert.Equal(t,
		gjson.Get(compact.String(), "tree.children.0.label").String(),
		gjson.Get(indented.String(), "tree.children.0.label").String())
}

func TestQuery(t *testing.T) {
	e := groupedEngine(t)

	out, err := Query(e, "items.#.label")
	require.NoError(t, err)
	assert.Equal(t, `["b","say \"hi\""]`, out)

	_, err = Query(e, "nope")
	assert.ErrorIs(t, err, ErrNoMatch)

	whole, err := Query(e, "")
	require.NoError(t, err)
	assert.True(t, gjson.Valid(whole))
}

func stringArray(r gjson.Result) []string {
	var out []string
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}
