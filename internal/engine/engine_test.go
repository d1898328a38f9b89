package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/dshills/regroup/internal/event"
	"github.com/dshills/regroup/internal/event/events"
	"github.com/dshills/regroup/internal/event/topic"
)

func numbered(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("Item %d", i+1)
	}
	return labels
}

// recorder collects published topics.
type recorder struct {
	mu     sync.Mutex
	topics []topic.Topic
	events []any
}

func (r *recorder) Publish(ctx context.Context, ev any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, ev.(event.TopicProvider).EventTopic())
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) count(t topic.Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.topics {
		if got == t {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = nil
	r.events = nil
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	e := New()
	if e.Len() != 0 {
		t.Errorf("expected empty engine, got len %d", e.Len())
	}
	if e.Root().Label() != DefaultRootLabel {
		t.Errorf("root label = %q", e.Root().Label())
	}
	if e.MaxUndoEntries() != DefaultMaxUndoEntries {
		t.Errorf("max undo = %d", e.MaxUndoEntries())
	}
	if e.Placement() != PlaceContiguous {
		t.Errorf("placement = %s", e.Placement())
	}
}

func TestNewWithOptions(t *testing.T) {
	e := New(
		WithItems("a", "b"),
		WithRootLabel("Top"),
		WithMaxUndoEntries(5),
		WithPlacement(PlaceOriginal),
	)

	if !reflect.DeepEqual(e.Labels(), []string{"a", "b"}) {
		t.Errorf("labels = %v", e.Labels())
	}
	if e.Root().Label() != "Top" {
		t.Errorf("root label = %q", e.Root().Label())
	}
	if e.MaxUndoEntries() != 5 {
		t.Errorf("max undo = %d", e.MaxUndoEntries())
	}
	if e.Placement() != PlaceOriginal {
		t.Errorf("placement = %s", e.Placement())
	}
}

func TestSelection(t *testing.T) {
	e := New(WithItems("a", "b", "c", "d"))

	if err := e.SelectRange(1, 2); err != nil {
		t.Fatalf("SelectRange failed: %v", err)
	}
	if got := labelsOf(e.Selected()); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("selected = %v", got)
	}

	if err := e.Select(9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}

	if n := e.SelectLabels("d", "a"); n != 2 {
		t.Errorf("SelectLabels = %d", n)
	}
	if got := labelsOf(e.Selected()); !reflect.DeepEqual(got, []string{"a", "d"}) {
		t.Errorf("selected = %v", got)
	}

	e.ClearSelection()
	if len(e.Selected()) != 0 {
		t.Error("selection not cleared")
	}
}

func labelsOf(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

// ============================================================================
// Grouping and Undo/Redo
// ============================================================================

func TestScenario(t *testing.T) {
	e := New(WithItems(numbered(50)...))
	group := []string{"Item 3", "Item 4", "Item 5"}

	e.SelectLabels(group...)
	ok, err := e.Group()
	if err != nil || !ok {
		t.Fatalf("Group = %v, %v", ok, err)
	}
	if e.Len() != 47 {
		t.Errorf("len = %d, want 47", e.Len())
	}
	root := e.Root()
	if root.ChildCount() != 1 || root.Child(0).Label() != "Item 3" {
		t.Fatalf("root = %s", root)
	}
	if !reflect.DeepEqual(root.Child(0).ChildLabels(), group[1:]) {
		t.Errorf("children = %v", root.Child(0).ChildLabels())
	}
	firstID := root.Child(0).ID()

	ok, err = e.Undo()
	if err != nil || !ok {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if got := e.Labels()[2:5]; !reflect.DeepEqual(got, group) {
		t.Errorf("restored = %v", got)
	}
	if e.Root().ChildCount() != 0 {
		t.Error("root should be empty after undo")
	}

	ok, err = e.Redo()
	if err != nil || !ok {
		t.Fatalf("Redo = %v, %v", ok, err)
	}
	root = e.Root()
	if e.Len() != 47 || root.ChildCount() != 1 {
		t.Fatalf("after redo: len %d, children %d", e.Len(), root.ChildCount())
	}
	if root.Child(0).ID() == firstID {
		t.Error("redo should create a new node")
	}
	if root.Child(0).Label() != "Item 3" || !reflect.DeepEqual(root.Child(0).ChildLabels(), group[1:]) {
		t.Errorf("redone = %s", root.Child(0))
	}
}

func TestGroupEmptySelection(t *testing.T) {
	e := New(WithItems("a", "b"))

	ok, err := e.Group()
	if err != nil || ok {
		t.Fatalf("Group = %v, %v; want false, nil", ok, err)
	}
	if e.CanUndo() || e.CanRedo() || e.Len() != 2 || e.TreeSize() != 1 {
		t.Error("empty group changed state")
	}
}

func TestUndoRedoEmptyHistory(t *testing.T) {
	e := New(WithItems("a"))

	if ok, err := e.Undo(); ok || err != nil {
		t.Errorf("Undo = %v, %v", ok, err)
	}
	if ok, err := e.Redo(); ok || err != nil {
		t.Errorf("Redo = %v, %v", ok, err)
	}
}

func TestRootIsACopy(t *testing.T) {
	e := New(WithItems("a", "b"))
	_ = e.Select(0, 1)
	_, _ = e.Group()

	view := e.Root()
	if view.Child(0).Parent() != view {
		t.Fatal("copy should be internally linked")
	}
	if e.Root() == view {
		t.Error("Root should return a fresh copy")
	}
}

func TestHistoryInfoAndClear(t *testing.T) {
	e := New(WithItems(numbered(6)...))

	_ = e.Select(0, 1)
	_, _ = e.Group()
	_ = e.Select(0)
	_, _ = e.Group()
	_, _ = e.Undo()

	if e.UndoCount() != 1 || e.RedoCount() != 1 {
		t.Fatalf("stacks = %d/%d", e.UndoCount(), e.RedoCount())
	}
	if got := e.UndoInfo()[0].Description; got != `Group "Item 1" (2 items)` {
		t.Errorf("undo info = %q", got)
	}
	if got := e.RedoInfo()[0].Description; got != `Group "Item 3" (1 items)` {
		t.Errorf("redo info = %q", got)
	}

	e.ClearHistory()
	if e.CanUndo() || e.CanRedo() {
		t.Error("ClearHistory left entries")
	}
	if e.Len() != 4 {
		t.Error("ClearHistory should not touch the stores")
	}
}

func TestCheckpoints(t *testing.T) {
	e := New(WithItems(numbered(5)...))
	cp := e.Checkpoint()

	for i := 0; i < 3; i++ {
		_ = e.Select(0)
		_, _ = e.Group()
	}

	n, err := e.UndoToCheckpoint(cp)
	if err != nil || n != 3 {
		t.Fatalf("UndoToCheckpoint = %d, %v", n, err)
	}
	if !reflect.DeepEqual(e.Labels(), numbered(5)) {
		t.Errorf("labels = %v", e.Labels())
	}

	_ = e.Select(0)
	_, _ = e.Group()
	top := e.Checkpoint()
	_, _ = e.Undo()
	n, err = e.RedoToCheckpoint(top)
	if err != nil || n != 1 {
		t.Fatalf("RedoToCheckpoint = %d, %v", n, err)
	}
}

func TestReset(t *testing.T) {
	e := New(WithItems("a", "b"))
	_ = e.Select(0)
	_, _ = e.Group()

	e.Reset("x", "y", "z")
	if !reflect.DeepEqual(e.Labels(), []string{"x", "y", "z"}) {
		t.Errorf("labels = %v", e.Labels())
	}
	if e.TreeSize() != 1 || e.CanUndo() {
		t.Error("Reset should clear the tree and the history")
	}

	// The new stores are wired: grouping still works.
	_ = e.Select(2)
	if ok, _ := e.Group(); !ok || e.Root().Child(0).Label() != "z" {
		t.Error("group after reset failed")
	}
}

// ============================================================================
// Events
// ============================================================================

func TestEventsPublished(t *testing.T) {
	rec := &recorder{}
	e := New(WithItems("a", "b", "c"), WithPublisher(rec))

	_ = e.Select(0, 1)
	if rec.count(events.TopicListChanged) != 1 {
		t.Errorf("select: list events = %d", rec.count(events.TopicListChanged))
	}
	rec.reset()

	_, _ = e.Group()
	if got := rec.count(events.TopicListChanged); got != 2 {
		t.Errorf("group: list events = %d, want 2", got)
	}
	if got := rec.count(events.TopicTreeStructureChanged); got != 1 {
		t.Errorf("group: tree events = %d, want 1", got)
	}
	if got := rec.count(events.TopicHistoryPerformed); got != 1 {
		t.Errorf("group: performed events = %d", got)
	}
	last := rec.events[len(rec.events)-1].(event.Event[events.HistoryChanged])
	if last.Payload.UndoCount != 1 || last.Payload.Items != 2 {
		t.Errorf("performed payload = %+v", last.Payload)
	}
	rec.reset()

	_, _ = e.Undo()
	if rec.count(events.TopicHistoryUndone) != 1 || rec.count(events.TopicTreeStructureChanged) != 1 {
		t.Errorf("undo events = %v", rec.topics)
	}
	rec.reset()

	_, _ = e.Redo()
	if rec.count(events.TopicHistoryRedone) != 1 {
		t.Errorf("redo events = %v", rec.topics)
	}
	rec.reset()

	_, _ = e.Group() // nothing selected
	if len(rec.topics) != 0 {
		t.Errorf("no-op group published %v", rec.topics)
	}

	e.Reset()
	if rec.count(events.TopicHistoryCleared) != 1 {
		t.Errorf("reset events = %v", rec.topics)
	}
}

func TestHandlersMayCallBack(t *testing.T) {
	bus := event.NewBus()
	e := New(WithItems("a", "b"), WithPublisher(bus))

	var seen []int
	_, _ = bus.SubscribeFunc("history.*", func(ctx context.Context, ev any) error {
		seen = append(seen, e.Len())
		return nil
	})

	_ = e.Select(0)
	_, _ = e.Group()
	_, _ = e.Undo()

	if !reflect.DeepEqual(seen, []int{1, 2}) {
		t.Errorf("seen = %v", seen)
	}
}

func TestPublishErrorHandler(t *testing.T) {
	bus := event.NewBus()
	boom := errors.New("boom")
	_, _ = bus.SubscribeFunc("history.performed", func(ctx context.Context, ev any) error {
		return boom
	})

	var got error
	e := New(WithItems("a"), WithPublisher(bus), WithPublishErrorHandler(func(err error) { got = err }))
	_ = e.Select(0)
	if ok, err := e.Group(); !ok || err != nil {
		t.Fatalf("Group = %v, %v", ok, err)
	}
	if !errors.Is(got, boom) {
		t.Errorf("publish error = %v", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	e := New(WithItems(numbered(200)...))
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = e.Select(0)
				_, _ = e.Group()
				_ = e.Root()
				_ = e.Items()
			}
		}()
	}
	wg.Wait()

	if e.Len()+e.Root().ChildCount() != 200 {
		t.Errorf("items lost: %d in list, %d groups", e.Len(), e.Root().ChildCount())
	}
}
