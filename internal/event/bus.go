package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/regroup/internal/event/topic"
)

// Subscription is a handle to an active subscription.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Topic returns the subscribed topic pattern.
	Topic() topic.Topic

	// IsActive returns false once the subscription is cancelled.
	IsActive() bool

	// Cancel removes the subscription from its bus.
	Cancel()
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*subscription)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(s *subscription) {
		s.priority = p
	}
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(s *subscription) {
		s.filter = f
	}
}

// WithOnce cancels the subscription after its first delivery.
func WithOnce() SubscriptionOption {
	return func(s *subscription) {
		s.once = true
	}
}

type subscription struct {
	id       string
	pattern  topic.Topic
	handler  Handler
	priority Priority
	filter   FilterFunc
	once     bool
	seq      uint64

	bus       *Bus
	cancelled atomic.Bool
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.pattern }
func (s *subscription) IsActive() bool     { return !s.cancelled.Load() }

func (s *subscription) Cancel() {
	if s.cancelled.Swap(true) {
		return
	}
	s.bus.remove(s)
}

// claim cancels the subscription and reports whether this call did so.
// Once-only subscriptions deliver only to the publisher that claims them.
func (s *subscription) claim() bool {
	if s.cancelled.Swap(true) {
		return false
	}
	s.bus.remove(s)
	return true
}

// PanicHandler is called when a handler panics.
type PanicHandler func(event any, sub Subscription, recovered any)

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets a callback for recovered handler panics.
func WithPanicHandler(fn PanicHandler) BusOption {
	return func(b *Bus) {
		b.panicHandler = fn
	}
}

// Bus is a synchronous topic-based event bus.
// It is safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscription
	seq  uint64

	panicHandler PanicHandler

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for topics matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, fmt.Errorf("subscribe %q: %w", pattern, ErrInvalidTopic)
	}

	s := &subscription{
		id:       uuid.New().String(),
		pattern:  pattern,
		handler:  handler,
		priority: PriorityNormal,
		bus:      b,
	}
	for _, opt := range opts {
		opt(s)
	}

	b.mu.Lock()
	b.seq++
	s.seq = b.seq
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s, nil
}

// SubscribeFunc registers a handler function.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe cancels sub. It fails if sub does not belong to this bus
// or was already cancelled.
func (b *Bus) Unsubscribe(sub Subscription) error {
	s, ok := sub.(*subscription)
	if !ok || s.bus != b || !s.IsActive() {
		return ErrSubscriptionNotFound
	}
	s.Cancel()
	return nil
}

func (b *Bus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.subs {
		if cur == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// matching returns the active subscriptions for t in delivery order.
func (b *Bus) matching(t topic.Topic) []*subscription {
	b.mu.RLock()
	out := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if t.Matches(s.pattern) {
			out = append(out, s)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority < out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Publish delivers event to every matching handler in the caller's
// goroutine. The event must implement TopicProvider (Event[T] does).
// Handler failures are joined into the returned error.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok {
		return fmt.Errorf("publish %T: %w", event, ErrInvalidEvent)
	}
	t := tp.EventTopic()
	if !t.IsValid() || t.IsWildcard() {
		return fmt.Errorf("publish %q: %w", t, ErrInvalidTopic)
	}
	b.published.Add(1)

	var errs []error
	for _, s := range b.matching(t) {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if !s.IsActive() || (s.filter != nil && !s.filter(event)) {
			continue
		}
		if s.once && !s.claim() {
			continue
		}
		if err := b.deliver(ctx, s, t, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *subscription, t topic.Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.panicHandler != nil {
				b.panicHandler(event, s, r)
			}
			err = &PanicError{SubscriptionID: s.id, Topic: t.String(), Value: r, Stack: string(debug.Stack())}
		}
	}()

	b.delivered.Add(1)
	if herr := s.handler.Handle(ctx, event); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: s.id, Topic: t.String(), Err: herr}
	}
	return nil
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsPublished: b.published.Load(),
		EventsDelivered: b.delivered.Load(),
		HandlerErrors:   b.handlerErrors.Load(),
		HandlerPanics:   b.handlerPanics.Load(),
		Subscriptions:   b.SubscriberCount(),
	}
}
