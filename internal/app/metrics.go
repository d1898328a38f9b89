package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/regroup/internal/event/events"
	"github.com/dshills/regroup/internal/event/topic"
)

// Metrics counts engine activity observed on the event bus.
type Metrics struct {
	performed atomic.Uint64
	undone    atomic.Uint64
	redone    atomic.Uint64
	cleared   atomic.Uint64

	eventCount atomic.Uint64
	lastEvent  atomic.Int64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Performed uint64
	Undone    uint64
	Redone    uint64
	Cleared   uint64
	Events    uint64

	// LastEvent is the time of the most recent event, zero if none.
	LastEvent time.Time
	Uptime    time.Duration
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordHistory counts one history transition by topic.
func (m *Metrics) RecordHistory(t topic.Topic) {
	switch t {
	case events.TopicHistoryPerformed:
		m.performed.Add(1)
	case events.TopicHistoryUndone:
		m.undone.Add(1)
	case events.TopicHistoryRedone:
		m.redone.Add(1)
	case events.TopicHistoryCleared:
		m.cleared.Add(1)
	}
}

// RecordEvent counts one delivered event.
func (m *Metrics) RecordEvent(at time.Time) {
	m.eventCount.Add(1)
	m.lastEvent.Store(at.UnixNano())
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Performed: m.performed.Load(),
		Undone:    m.undone.Load(),
		Redone:    m.redone.Load(),
		Cleared:   m.cleared.Load(),
		Events:    m.eventCount.Load(),
		Uptime:    time.Since(m.startTime),
	}
	if ns := m.lastEvent.Load(); ns != 0 {
		s.LastEvent = time.Unix(0, ns)
	}
	return s
}

// Reset zeroes all counters.
func (m *Metrics) Reset() {
	m.performed.Store(0)
	m.undone.Store(0)
	m.redone.Store(0)
	m.cleared.Store(0)
	m.eventCount.Store(0)
	m.lastEvent.Store(0)
}

// Metrics returns the application's metrics tracker.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
