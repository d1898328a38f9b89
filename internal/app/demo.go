package app

import (
	"github.com/dshills/regroup/internal/render"
)

// demoScript groups items 3 to 5, then undoes and redoes the grouping.
var demoScript = []string{
	"select 3 4 5",
	"group",
	"tree",
	"undo",
	"tree",
	"redo",
	"tree",
	"history",
}

// RunDemo echoes and runs the demo script, printing a state summary
// after each step. It stops at the first failing command.
func (app *Application) RunDemo() error {
	app.printf("%s\n", render.Summary(app.styles, app.engine))
	for _, line := range demoScript {
		app.printf("%s%s\n", Prompt, line)
		if err := app.Exec(line); err != nil {
			return err
		}
		app.printf("%s\n", render.Summary(app.styles, app.engine))
	}
	return nil
}
