package app

import (
	"context"
	"sync"

	"github.com/dshills/regroup/internal/event"
	"github.com/dshills/regroup/internal/event/topic"
)

// Subscription patterns.
const (
	patternAll     topic.Topic = "**"
	patternHistory topic.Topic = "history.*"
)

// subscriptionManager owns the application's own bus subscriptions.
type subscriptionManager struct {
	mu   sync.Mutex
	app  *Application
	subs []event.Subscription
}

func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{app: app}
}

// setupSubscriptions registers the metrics and event log handlers.
func (sm *subscriptionManager) setupSubscriptions() error {
	sub, err := sm.app.bus.SubscribeFunc(patternHistory, sm.handleHistory,
		event.WithPriority(event.PriorityHigh))
	if err != nil {
		return err
	}
	sm.addSubscription(sub)

	// Lowest priority so the log reflects what other handlers already saw.
	sub, err = sm.app.bus.SubscribeFunc(patternAll, sm.handleAny,
		event.WithPriority(event.PriorityLow))
	if err != nil {
		sm.cleanup()
		return err
	}
	sm.addSubscription(sub)
	return nil
}

func (sm *subscriptionManager) addSubscription(sub event.Subscription) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.subs = append(sm.subs, sub)
}

// cleanup cancels every subscription.
func (sm *subscriptionManager) cleanup() {
	sm.mu.Lock()
	subs := sm.subs
	sm.subs = nil
	sm.mu.Unlock()

	for _, sub := range subs {
		_ = sm.app.bus.Unsubscribe(sub)
	}
}

func (sm *subscriptionManager) handleHistory(_ context.Context, ev any) error {
	if tp, ok := ev.(event.TopicProvider); ok {
		sm.app.metrics.RecordHistory(tp.EventTopic())
	}
	return nil
}

func (sm *subscriptionManager) handleAny(_ context.Context, ev any) error {
	tp, ok := ev.(event.TopicProvider)
	if !ok {
		return nil
	}
	log := sm.app.Logger().WithComponent("events")
	if mp, ok := ev.(event.MetadataProvider); ok {
		md := mp.EventMetadata()
		sm.app.metrics.RecordEvent(md.Timestamp)
		log = log.WithField("source", md.Source)
	}
	if log.IsDebug() {
		log.Debug("%s %+v", tp.EventTopic(), payloadOf(ev))
	}
	return nil
}

// payloadOf extracts the payload of the event types the engine publishes.
func payloadOf(ev any) any {
	if p, ok := ev.(event.PayloadProvider); ok {
		return p.EventPayload()
	}
	return ev
}
