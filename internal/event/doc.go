// Package event provides the synchronous event bus that connects the
// engine to its observers (logging, presentation, scripts).
//
// # Event Topics
//
// Events use hierarchical topics with dot notation. The engine publishes:
//
//	list.changed            - an item was inserted or removed, or the selection changed
//	tree.structure.changed  - a subtree was attached or detached
//	history.performed       - a grouping was performed
//	history.undone          - a grouping was undone
//	history.redone          - a grouping was redone
//	history.cleared         - the history was reset
//	config.loaded           - configuration was loaded
//
// Topic constants and payload types live in the events subpackage.
//
// # Wildcard Patterns
//
// Subscriptions support wildcard patterns:
//
//	history.*  - matches history.undone, history.redone (single segment)
//	tree.**    - matches tree.structure.changed (multi-segment)
//	**         - matches everything
//
// # Delivery
//
// Publish delivers in the publisher's goroutine. Handlers run in priority
// order (lower first), then in subscription order. A failing or panicking
// handler does not stop delivery to the others; Publish reports the
// collected failures.
//
// # Usage
//
//	bus := event.NewBus()
//	sub, _ := bus.SubscribeFunc("history.*", func(ctx context.Context, ev any) error {
//	    e := ev.(event.Event[events.HistoryChanged])
//	    fmt.Println(e.Payload.Description)
//	    return nil
//	})
//	defer sub.Cancel()
package event
