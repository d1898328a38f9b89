package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/regroup/internal/app"
	"github.com/dshills/regroup/internal/config"
	"github.com/dshills/regroup/internal/export"
	"github.com/dshills/regroup/internal/plugin/lua"
)

// defaultConfigFiles are tried in order when --config is not given.
var defaultConfigFiles = []string{"regroup.toml", "regroup.yaml", "regroup.yml"}

type rootOptions struct {
	configPath string
	logLevel   string
	items      int

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "regroup",
		Short: "Group list items into a tree with undo and redo",
		Long: `regroup keeps an ordered list of labeled items and a tree. Selected
items can be grouped into a new subtree under the tree root; every
grouping can be undone and redone.

Without a subcommand regroup starts the interactive line interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default is ./regroup.toml or ./regroup.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.IntVarP(&opts.items, "items", "n", 0, "number of initial items")

	root.AddCommand(
		newREPLCmd(opts),
		newScriptCmd(opts),
		newDemoCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// loadConfig layers the config file, environment and changed flags.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loadOpts := []config.Option{}

	path := o.configPath
	if path == "" {
		for _, candidate := range defaultConfigFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		loadOpts = append(loadOpts, config.WithFile(path))
	}

	overrides := map[string]any{}
	if cmd.Flags().Changed("log-level") {
		overrides["logging.level"] = o.logLevel
	}
	if cmd.Flags().Changed("items") {
		overrides["list.count"] = o.items
	}
	if len(overrides) > 0 {
		loadOpts = append(loadOpts, config.WithOverrides(overrides))
	}

	return config.Load(loadOpts...)
}

// newApp loads configuration and builds the application.
func (o *rootOptions) newApp(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(app.Options{
		Config:    cfg,
		Output:    o.stdout,
		LogOutput: o.stderr,
	})
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runREPL(cmd *cobra.Command, opts *rootOptions) error {
	a, err := opts.newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	return a.Run(ctx, opts.stdin)
}

func newREPLCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive line interface",
		Long: `Start the interactive line interface. Commands are read one per line
from standard input; type "help" for the list. Item numbers are 1-based.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}
}

func newScriptCmd(opts *rootOptions) *cobra.Command {
	var printJSON bool

	cmd := &cobra.Command{
		Use:   "script <file.lua>",
		Short: "Run a Lua script against a fresh engine",
		Long: `Run a Lua script against a fresh engine. The script sees a global
"regroup" table with items, selected, select, select_range,
select_labels, clear, group, undo, redo, can_undo, can_redo, tree,
count and log.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			state := lua.NewState(lua.WithOutput(opts.stdout))
			defer state.Close()
			lua.Install(state, a.Engine(), a.Logger().WithComponent("script"))

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			if err := state.DoFile(ctx, args[0]); err != nil {
				return err
			}

			if printJSON {
				return export.Write(opts.stdout, a.Engine(), true)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printJSON, "json", false, "print the final state as JSON")
	return cmd
}

func newDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Group items 3 to 5, undo, redo, printing each state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.RunDemo()
		},
	}
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(opts.stdout, "regroup %s\n", version)
			fmt.Fprintf(opts.stdout, "  commit: %s\n", commit)
			fmt.Fprintf(opts.stdout, "  built:  %s\n", date)
		},
	}
}
