package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/regroup/internal/config"
	"github.com/dshills/regroup/internal/engine/listing"
	"github.com/dshills/regroup/internal/export"
	"github.com/dshills/regroup/internal/render"
)

// Prompt is printed before each line when reading from a terminal.
const Prompt = "regroup> "

// replCommand is one line command. Indices typed by the user are 1-based.
type replCommand struct {
	name string
	args string
	help string
	run  func(app *Application, args []string, rest string) error
}

var replCommands = map[string]*replCommand{}

func register(cmd *replCommand, aliases ...string) {
	replCommands[cmd.name] = cmd
	for _, a := range aliases {
		replCommands[a] = cmd
	}
}

func init() {
	register(&replCommand{name: "select", args: "N...", help: "select items by number", run: cmdSelect}, "s")
	register(&replCommand{name: "range", args: "A B", help: "select items A through B", run: cmdRange}, "r")
	register(&replCommand{name: "pick", args: "LABEL[, LABEL...]", help: "select items by label", run: cmdPick})
	register(&replCommand{name: "clear", help: "clear the selection", run: cmdClear})
	register(&replCommand{name: "group", help: "group the selection into a subtree", run: cmdGroup}, "g")
	register(&replCommand{name: "undo", help: "undo the last grouping", run: cmdUndo}, "u")
	register(&replCommand{name: "redo", help: "redo the last undone grouping", run: cmdRedo})
	register(&replCommand{name: "list", help: "show the items", run: cmdList}, "ls")
	register(&replCommand{name: "tree", help: "show the tree", run: cmdTree})
	register(&replCommand{name: "history", help: "show the undo and redo stacks", run: cmdHistory})
	register(&replCommand{name: "checkpoint", help: "remember the current undo depth", run: cmdCheckpoint})
	register(&replCommand{name: "rollback", help: "undo back to the checkpoint", run: cmdRollback})
	register(&replCommand{name: "reset", args: "[N]", help: "start over with N fresh items", run: cmdReset})
	register(&replCommand{name: "json", args: "[PATH]", help: "print state as JSON, optionally a gjson path", run: cmdJSON})
	register(&replCommand{name: "stats", help: "show activity counters", run: cmdStats})
	register(&replCommand{name: "help", help: "show this help", run: cmdHelp}, "?")
	register(&replCommand{name: "quit", help: "leave", run: cmdQuit}, "exit", "q")
}

// Run reads commands from r until EOF, quit, or ctx is done. Command
// errors are printed and do not stop the loop.
func (app *Application) Run(ctx context.Context, r io.Reader) error {
	interactive := render.IsTerminal(r) && render.IsTerminal(app.out)
	if interactive {
		app.printf("%s\n", render.Summary(app.styles, app.engine))
	}

	scanner := bufio.NewScanner(r)
	for {
		if interactive {
			app.printf("%s", Prompt)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !scanner.Scan() {
			break
		}

		err := app.Exec(scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			app.printf("%s\n", app.styles.RenderError(err.Error()))
			app.Logger().WithComponent("repl").Debug("command failed: %v", err)
		}
	}
	return scanner.Err()
}

// Exec runs one command line. Blank lines and lines starting with "#"
// are ignored.
func (app *Application) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	cmd, ok := replCommands[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %q (try \"help\")", ErrUnknownCommand, name)
	}
	return cmd.run(app, strings.Fields(rest), rest)
}

func usage(cmd string) error {
	c := replCommands[cmd]
	return fmt.Errorf("%w: %s %s", ErrUsage, c.name, c.args)
}

// parseIndices converts 1-based numbers to 0-based indices.
func parseIndices(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, NewOperationError("select", a, err).WithContext("not a number")
		}
		out = append(out, n-1)
	}
	return out, nil
}

func (app *Application) printSelection() {
	sel := app.engine.Selected()
	labels := make([]string, len(sel))
	for i, it := range sel {
		labels[i] = it.Label
	}
	app.printf("selected %d: %s\n", len(sel), strings.Join(labels, ", "))
}

func cmdSelect(app *Application, args []string, _ string) error {
	if len(args) == 0 {
		return usage("select")
	}
	idx, err := parseIndices(args)
	if err != nil {
		return err
	}
	if err := app.engine.Select(idx...); err != nil {
		return NewOperationError("select", strings.Join(args, " "), err)
	}
	app.printSelection()
	return nil
}

func cmdRange(app *Application, args []string, _ string) error {
	if len(args) != 2 {
		return usage("range")
	}
	idx, err := parseIndices(args)
	if err != nil {
		return err
	}
	if err := app.engine.SelectRange(idx[0], idx[1]); err != nil {
		return NewOperationError("range", args[0]+".."+args[1], err)
	}
	app.printSelection()
	return nil
}

func cmdPick(app *Application, _ []string, rest string) error {
	if rest == "" {
		return usage("pick")
	}
	var labels []string
	for _, l := range strings.Split(rest, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	n := app.engine.SelectLabels(labels...)
	if n < len(labels) {
		app.printf("%s\n", app.styles.RenderMuted(fmt.Sprintf("%d of %d labels matched", n, len(labels))))
	}
	app.printSelection()
	return nil
}

func cmdClear(app *Application, _ []string, _ string) error {
	app.engine.ClearSelection()
	app.printSelection()
	return nil
}

func cmdGroup(app *Application, _ []string, _ string) error {
	ok, err := app.engine.Group()
	if err != nil {
		return NewOperationError("group", "", err)
	}
	if !ok {
		app.printf("%s\n", app.styles.RenderMuted("nothing selected"))
		return nil
	}
	info := app.engine.UndoInfo()
	app.printf("%s\n", app.styles.RenderSuccess(info[len(info)-1].Description))
	return nil
}

func cmdUndo(app *Application, _ []string, _ string) error {
	ok, err := app.engine.Undo()
	if err != nil {
		return NewOperationError("undo", "", err)
	}
	if !ok {
		app.printf("%s\n", app.styles.RenderMuted("nothing to undo"))
		return nil
	}
	info := app.engine.RedoInfo()
	app.printf("%s\n", app.styles.RenderSuccess("undid "+info[len(info)-1].Description))
	return nil
}

func cmdRedo(app *Application, _ []string, _ string) error {
	ok, err := app.engine.Redo()
	if err != nil {
		return NewOperationError("redo", "", err)
	}
	if !ok {
		app.printf("%s\n", app.styles.RenderMuted("nothing to redo"))
		return nil
	}
	info := app.engine.UndoInfo()
	app.printf("%s\n", app.styles.RenderSuccess("redid "+info[len(info)-1].Description))
	return nil
}

func cmdList(app *Application, _ []string, _ string) error {
	app.printf("%s", render.List(app.styles, app.engine.Items(), app.engine.Selected()))
	return nil
}

func cmdTree(app *Application, _ []string, _ string) error {
	app.printf("%s", render.Tree(app.styles, app.engine.Root()))
	return nil
}

func cmdHistory(app *Application, _ []string, _ string) error {
	app.printf("%s", render.History(app.styles, app.engine.UndoInfo(), app.engine.RedoInfo()))
	return nil
}

func cmdCheckpoint(app *Application, _ []string, _ string) error {
	cp := app.engine.Checkpoint()
	app.checkpoint = &cp
	app.printf("checkpoint at depth %d\n", cp.Depth())
	return nil
}

func cmdRollback(app *Application, _ []string, _ string) error {
	if app.checkpoint == nil {
		return NewOperationError("rollback", "", errors.New("no checkpoint"))
	}
	n, err := app.engine.UndoToCheckpoint(*app.checkpoint)
	if err != nil {
		return NewOperationError("rollback", "", err)
	}
	app.printf("undid %d\n", n)
	return nil
}

func cmdReset(app *Application, args []string, _ string) error {
	if len(args) > 1 {
		return usage("reset")
	}
	count := app.config.List.Count
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return usage("reset")
		}
		if n > config.MaxItemCount {
			return NewOperationError("reset", args[0], ErrTooManyItems).
				WithContext(fmt.Sprintf("at most %d", config.MaxItemCount))
		}
		count = n
	}
	app.engine.Reset(listing.NumberedLabels(app.config.List.LabelFormat, count)...)
	app.checkpoint = nil
	app.printf("%s\n", render.Summary(app.styles, app.engine))
	return nil
}

func cmdJSON(app *Application, _ []string, rest string) error {
	if rest == "" {
		return export.Write(app.out, app.engine, true)
	}
	out, err := export.Query(app.engine, rest)
	if err != nil {
		return NewOperationError("json", rest, err)
	}
	app.printf("%s\n", out)
	return nil
}

func cmdStats(app *Application, _ []string, _ string) error {
	m := app.metrics.Snapshot()
	bs := app.bus.Stats()
	app.printf("performed %d, undone %d, redone %d, cleared %d\n", m.Performed, m.Undone, m.Redone, m.Cleared)
	app.printf("events %d published, %d delivered, %d handler errors\n",
		bs.EventsPublished, bs.EventsDelivered, bs.HandlerErrors)
	return nil
}

func cmdHelp(app *Application, _ []string, _ string) error {
	seen := make(map[*replCommand]bool)
	var cmds []*replCommand
	for _, c := range replCommands {
		if !seen[c] {
			seen[c] = true
			cmds = append(cmds, c)
		}
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })

	for _, c := range cmds {
		line := strings.TrimSpace(c.name + " " + c.args)
		app.printf("  %-24s %s\n", line, c.help)
	}
	return nil
}

func cmdQuit(_ *Application, _ []string, _ string) error {
	return ErrQuit
}
