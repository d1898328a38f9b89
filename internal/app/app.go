// Package app provides the main application structure and coordination
// for regroup. It wires configuration, logging, the event bus and the
// grouping engine, and drives them from line commands.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dshills/regroup/internal/config"
	"github.com/dshills/regroup/internal/engine"
	"github.com/dshills/regroup/internal/engine/listing"
	"github.com/dshills/regroup/internal/event"
	"github.com/dshills/regroup/internal/event/events"
	"github.com/dshills/regroup/internal/render"
)

// eventSource is the metadata source of events the application publishes.
const eventSource = "app"

// Application is the top-level controller. It owns the one engine
// instance and passes it by reference to whatever drives it.
type Application struct {
	// Core infrastructure
	bus     *event.Bus
	config  *config.Config
	logger  *Logger
	metrics *Metrics
	subs    *subscriptionManager

	// Domain
	engine *engine.Engine

	// Presentation
	out    io.Writer
	styles render.Styles

	// State
	checkpoint *engine.Checkpoint
	closed     atomic.Bool

	opts Options
}

// Options configures the application.
type Options struct {
	// Config is the loaded configuration. Defaults to config.Default().
	Config *config.Config

	// Output receives command output. Defaults to os.Stdout.
	Output io.Writer

	// LogOutput receives log entries. Defaults to os.Stderr.
	LogOutput io.Writer

	// Logger replaces the logger built from Config.Logging.
	Logger *Logger

	// Styles overrides style detection on Output.
	Styles *render.Styles
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	app.config = app.opts.Config
	if app.config == nil {
		app.config = config.Default()
	}
	if err := app.config.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}

	// 2. Logging
	app.logger = app.opts.Logger
	if app.logger == nil {
		app.logger = NewLogger(LoggerConfig{
			Level:  app.config.Logging.Level,
			Format: app.config.Logging.Format,
			Output: app.opts.LogOutput,
			Prefix: "regroup",
		})
	}

	// 3. Output
	app.out = app.opts.Output
	if app.out == nil {
		app.out = os.Stdout
	}
	if app.opts.Styles != nil {
		app.styles = *app.opts.Styles
	} else {
		app.styles = render.ForWriter(app.out)
	}

	// 4. Event bus
	app.bus = event.NewBus(event.WithPanicHandler(func(ev any, sub event.Subscription, recovered any) {
		app.Logger().WithComponent("events").
			WithField("subscription", sub.Topic()).
			Error("handler panic: %v", recovered)
	}))
	app.subs = newSubscriptionManager(app)
	if err := app.subs.setupSubscriptions(); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}

	// 5. Engine
	app.engine = engine.New(
		engine.WithItems(ItemLabels(app.config)...),
		engine.WithRootLabel(app.config.Tree.RootLabel),
		engine.WithMaxUndoEntries(app.config.History.MaxEntries),
		engine.WithPlacement(PlacementFor(app.config.History.Placement)),
		engine.WithPublisher(app.bus),
		engine.WithPublishErrorHandler(func(err error) {
			app.logComponentError("events", err)
		}),
	)

	if err := app.bus.Publish(context.Background(), event.NewEvent(
		events.TopicConfigLoaded,
		events.ConfigLoaded{Path: app.config.Path(), Sources: app.config.Sources()},
		eventSource,
	)); err != nil {
		app.logComponentError("events", err)
	}

	app.Logger().WithFields(map[string]any{
		"items":     app.engine.Len(),
		"placement": app.config.History.Placement,
		"sources":   app.config.Sources(),
	}).Debug("application initialized")
	return nil
}

// ItemLabels formats the initial item labels from cfg.List.
func ItemLabels(cfg *config.Config) []string {
	return listing.NumberedLabels(cfg.List.LabelFormat, cfg.List.Count)
}

// PlacementFor maps a history.placement setting to an engine placement.
// Unknown names select the contiguous default.
func PlacementFor(name string) engine.Placement {
	if name == config.PlacementOriginal {
		return engine.PlaceOriginal
	}
	return engine.PlaceContiguous
}

// Close releases the application's subscriptions. It is safe to call
// more than once.
func (app *Application) Close() {
	if !app.closed.CompareAndSwap(false, true) {
		return
	}
	app.subs.cleanup()
	app.Logger().Debug("application closed")
}

// Engine returns the grouping engine.
func (app *Application) Engine() *engine.Engine {
	return app.engine
}

// EventBus returns the application's event bus.
func (app *Application) EventBus() *event.Bus {
	return app.bus
}

// Config returns the application's configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Output returns the writer command output goes to.
func (app *Application) Output() io.Writer {
	return app.out
}

// Styles returns the output styles.
func (app *Application) Styles() render.Styles {
	return app.styles
}

func (app *Application) printf(format string, args ...any) {
	fmt.Fprintf(app.out, format, args...)
}
