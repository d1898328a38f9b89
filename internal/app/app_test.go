package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/regroup/internal/config"
	"github.com/dshills/regroup/internal/engine"
	"github.com/dshills/regroup/internal/render"
)

type testApp struct {
	*Application
	out  *bytes.Buffer
	logs *bytes.Buffer
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	var out, logs bytes.Buffer
	plain := render.PlainStyles()
	a, err := New(Options{Config: cfg, Output: &out, LogOutput: &logs, Styles: &plain})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return &testApp{Application: a, out: &out, logs: &logs}
}

func (ta *testApp) exec(t *testing.T, lines ...string) string {
	t.Helper()
	ta.out.Reset()
	for _, line := range lines {
		require.NoError(t, ta.Exec(line), line)
	}
	return ta.out.String()
}

func TestNew_Defaults(t *testing.T) {
	a := newTestApp(t, nil)

	e := a.Engine()
	assert.Equal(t, 50, e.Len())
	assert.Equal(t, "Item 1", e.Labels()[0])
	assert.Equal(t, "Item 50", e.Labels()[49])
	assert.Equal(t, "Root", e.Root().Label())
	assert.Equal(t, 1000, e.MaxUndoEntries())
	assert.Equal(t, engine.PlaceContiguous, e.Placement())
	assert.Same(t, a.Config(), a.Application.config)
}

func TestNew_FromConfig(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.List.Count = 3
		c.List.LabelFormat = "Row %d"
		c.Tree.RootLabel = "Top"
		c.History.MaxEntries = 2
		c.History.Placement = config.PlacementOriginal
	})

	e := a.Engine()
	assert.Equal(t, []string{"Row 1", "Row 2", "Row 3"}, e.Labels())
	assert.Equal(t, "Top", e.Root().Label())
	assert.Equal(t, 2, e.MaxUndoEntries())
	assert.Equal(t, engine.PlaceOriginal, e.Placement())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.List.Count = -1

	_, err := New(Options{Config: cfg, Output: &bytes.Buffer{}, Logger: NullLogger})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitialization)
	assert.ErrorIs(t, err, config.ErrValidationFailed)

	var ierr *InitError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "config", ierr.Component)
}

func TestPlacementFor(t *testing.T) {
	assert.Equal(t, engine.PlaceOriginal, PlacementFor(config.PlacementOriginal))
	assert.Equal(t, engine.PlaceContiguous, PlacementFor(config.PlacementContiguous))
	assert.Equal(t, engine.PlaceContiguous, PlacementFor("other"))
}

func TestExec_Scenario(t *testing.T) {
	a := newTestApp(t, nil)
	e := a.Engine()

	out := a.exec(t, "select 3 4 5")
	assert.Equal(t, "selected 3: Item 3, Item 4, Item 5\n", out)

	out = a.exec(t, "group")
	assert.Equal(t, "Group \"Item 3\" (3 items)\n", out)
	assert.Equal(t, 47, e.Len())
	require.Equal(t, 1, e.Root().ChildCount())
	assert.Equal(t, "Item 3", e.Root().Child(0).Label())
	assert.Equal(t, []string{"Item 4", "Item 5"}, e.Root().Child(0).ChildLabels())

	out = a.exec(t, "undo")
	assert.Contains(t, out, "undid")
	assert.Equal(t, 50, e.Len())
	assert.Equal(t, []string{"Item 3", "Item 4", "Item 5"}, e.Labels()[2:5])
	assert.Equal(t, 0, e.Root().ChildCount())

	out = a.exec(t, "redo")
	assert.Contains(t, out, "redid")
	assert.Equal(t, 47, e.Len())
	require.Equal(t, 1, e.Root().ChildCount())
	assert.Equal(t, []string{"Item 4", "Item 5"}, e.Root().Child(0).ChildLabels())
}

func TestExec_Noops(t *testing.T) {
	a := newTestApp(t, nil)

	assert.Equal(t, "nothing selected\n", a.exec(t, "group"))
	assert.Equal(t, "nothing to undo\n", a.exec(t, "undo"))
	assert.Equal(t, "nothing to redo\n", a.exec(t, "redo"))
	assert.Empty(t, a.exec(t, "", "   ", "# comment"))
	assert.Equal(t, 0, a.Engine().UndoCount())
}

func TestExec_Errors(t *testing.T) {
	a := newTestApp(t, nil)

	tests := []struct {
		line string
		want error
	}{
		{"bogus", ErrUnknownCommand},
		{"select", ErrUsage},
		{"range 1", ErrUsage},
		{"pick", ErrUsage},
		{"reset x", ErrUsage},
		{"select 99", engine.ErrIndexOutOfRange},
		{"select 0", engine.ErrIndexOutOfRange},
		{"range 49 51", engine.ErrIndexOutOfRange},
		{"range 0 9223372036854775807", engine.ErrIndexOutOfRange},
		{"range -9223372036854775808 2", engine.ErrIndexOutOfRange},
		{"reset 100001", ErrTooManyItems},
		{"reset 9223372036854775807", ErrTooManyItems},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := a.Exec(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	err := a.Exec("select two")
	var oerr *OperationError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, "select", oerr.Op)
	assert.Equal(t, "two", oerr.Target)
	assert.Contains(t, err.Error(), "not a number")
}

func TestExec_SelectionCommands(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.List.Count = 6 })

	assert.Equal(t, "selected 3: Item 2, Item 3, Item 4\n", a.exec(t, "range 4 2"))
	assert.Equal(t, "selected 2: Item 2, Item 5\n", a.exec(t, "pick Item 5, Item 2"))

	out := a.exec(t, "pick Item 1, Nope")
	assert.Contains(t, out, "1 of 2 labels matched")

	assert.Equal(t, "selected 0: \n", a.exec(t, "clear"))
	assert.Equal(t, "selected 1: Item 6\n", a.exec(t, "S 6"), "names are case-insensitive")
}

func TestExec_ListTreeHistory(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.List.Count = 3 })
	a.exec(t, "select 1 3", "group")

	assert.Equal(t, "    1  Item 2\n", a.exec(t, "list"))
	assert.Equal(t, "Root\n└── Item 1\n    └── Item 3\n", a.exec(t, "tree"))

	out := a.exec(t, "history")
	assert.True(t, strings.HasPrefix(out, "Undo (1)\n  Group \"Item 1\" (2 items)"), out)
	assert.Contains(t, out, "Redo (0)")
}

func TestExec_CheckpointRollback(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.List.Count = 10 })

	err := a.Exec("rollback")
	assert.Error(t, err)

	a.exec(t, "select 1", "group")
	assert.Equal(t, "checkpoint at depth 1\n", a.exec(t, "checkpoint"))
	a.exec(t, "select 1", "group", "select 1", "group")
	assert.Equal(t, 3, a.Engine().UndoCount())

	assert.Equal(t, "undid 2\n", a.exec(t, "rollback"))
	assert.Equal(t, 1, a.Engine().UndoCount())
	assert.Equal(t, 9, a.Engine().Len())
}

func TestExec_Reset(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.List.Count = 4 })
	a.exec(t, "select 1", "group", "checkpoint")

	out := a.exec(t, "reset 2")
	assert.Equal(t, "2 items, 0 selected, 0 groups, undo 0, redo 0\n", out)
	assert.Equal(t, []string{"Item 1", "Item 2"}, a.Engine().Labels())
	assert.Error(t, a.Exec("rollback"), "reset drops the checkpoint")

	a.exec(t, "reset")
	assert.Equal(t, 4, a.Engine().Len())

	assert.ErrorIs(t, a.Exec("reset 100001"), ErrTooManyItems)
	assert.Equal(t, 4, a.Engine().Len(), "a rejected reset keeps the items")
}

func TestExec_RangeOutOfBoundsKeepsSelection(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.List.Count = 5 })
	a.exec(t, "select 2")

	assert.ErrorIs(t, a.Exec("range 0 9223372036854775807"), engine.ErrIndexOutOfRange)
	assert.ErrorIs(t, a.Exec("range 1 9223372036854775807"), engine.ErrIndexOutOfRange)

	sel := a.Engine().Selected()
	require.Len(t, sel, 1)
	assert.Equal(t, "Item 2", sel[0].Label)
}

func TestExec_JSON(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.List.Count = 3 })
	a.exec(t, "select 2 3", "group")

	assert.Equal(t, "1\n", a.exec(t, "json tree.children.#"))
	assert.Equal(t, "[\"Item 1\"]\n", a.exec(t, "json items.#.label"))

	out := a.exec(t, "json")
	assert.Contains(t, out, "\"label\": \"Item 2\"")

	assert.Error(t, a.Exec("json missing.path"))
}

func TestExec_Help(t *testing.T) {
	a := newTestApp(t, nil)
	out := a.exec(t, "help")

	for _, name := range []string{"select N...", "range A B", "pick", "group", "undo", "redo", "json [PATH]", "quit"} {
		assert.Contains(t, out, name)
	}
	assert.Equal(t, 1, strings.Count(out, "  quit "), "aliases are listed once")
}

func TestRun(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.List.Count = 5 })
	in := strings.NewReader("select 1 2\ngroup\nbogus\nquit\nselect 3\n")

	require.NoError(t, a.Run(context.Background(), in))

	out := a.out.String()
	assert.Contains(t, out, "unknown command")
	assert.NotContains(t, out, "selected 1: Item 3", "lines after quit are not run")
	assert.Equal(t, 3, a.Engine().Len())
	assert.Empty(t, a.Engine().Selected())
}

func TestRun_EOF(t *testing.T) {
	a := newTestApp(t, nil)
	require.NoError(t, a.Run(context.Background(), strings.NewReader("select 1\n")))
	assert.Len(t, a.Engine().Selected(), 1)
}

func TestRun_Cancelled(t *testing.T) {
	a := newTestApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Run(ctx, strings.NewReader("select 1\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, a.Engine().Selected())
}

func TestRunDemo(t *testing.T) {
	a := newTestApp(t, nil)
	require.NoError(t, a.RunDemo())

	out := a.out.String()
	assert.Contains(t, out, Prompt+"select 3 4 5\n")
	assert.Contains(t, out, "Root\n└── Item 3\n    ├── Item 4\n    └── Item 5\n")
	assert.Contains(t, out, "50 items, 0 selected, 0 groups, undo 0, redo 1")
	assert.Equal(t, 47, a.Engine().Len())
	assert.Equal(t, 1, a.Engine().Root().ChildCount())
}

func TestMetricsAndEventLog(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.List.Count = 5
		c.Logging.Level = "debug"
		c.Logging.Format = "json"
	})
	a.exec(t, "select 1 2", "group", "undo", "redo", "reset")

	m := a.Metrics().Snapshot()
	assert.Equal(t, uint64(1), m.Performed)
	assert.Equal(t, uint64(1), m.Undone)
	assert.Equal(t, uint64(1), m.Redone)
	assert.Equal(t, uint64(1), m.Cleared)
	assert.Greater(t, m.Events, uint64(5))
	assert.False(t, m.LastEvent.IsZero())

	logs := a.logs.String()
	assert.Contains(t, logs, "history.performed")
	assert.Contains(t, logs, "config.loaded")
	assert.Contains(t, logs, `"component":"events"`)

	out := a.exec(t, "stats")
	assert.Contains(t, out, "performed 1, undone 1, redone 1, cleared 1")
}

func TestClose(t *testing.T) {
	a := newTestApp(t, nil)
	require.Equal(t, 2, a.EventBus().SubscriberCount())

	a.Close()
	a.Close()
	assert.Equal(t, 0, a.EventBus().SubscriberCount())
}
