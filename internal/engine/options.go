package engine

import (
	"github.com/dshills/regroup/internal/engine/history"
	"github.com/dshills/regroup/internal/engine/tree"
	"github.com/dshills/regroup/internal/event"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
	DefaultRootLabel      = tree.DefaultRootLabel
	DefaultSource         = "engine"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithItems sets the initial items of the linear store, in order.
func WithItems(labels ...string) Option {
	return func(e *Engine) {
		e.initItems = append([]string(nil), labels...)
	}
}

// WithRootLabel sets the label of the tree root.
func WithRootLabel(label string) Option {
	return func(e *Engine) {
		if label != "" {
			e.rootLabel = label
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithPlacement sets how undone groupings put their items back.
func WithPlacement(p history.Placement) Option {
	return func(e *Engine) {
		e.placement = p
	}
}

// WithPublisher sets the destination for change events.
func WithPublisher(p event.Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithPublishErrorHandler sets a callback for errors returned by the
// publisher. Without one, publish errors are dropped.
func WithPublishErrorHandler(fn func(error)) Option {
	return func(e *Engine) {
		e.onPublishError = fn
	}
}

// WithSource sets the source recorded in published event metadata.
func WithSource(source string) Option {
	return func(e *Engine) {
		if source != "" {
			e.source = source
		}
	}
}
