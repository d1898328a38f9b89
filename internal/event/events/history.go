package events

import "github.com/dshills/regroup/internal/event/topic"

// History event topics.
const (
	// TopicHistoryPerformed is published after a grouping is performed.
	TopicHistoryPerformed topic.Topic = "history.performed"

	// TopicHistoryUndone is published after a grouping is undone.
	TopicHistoryUndone topic.Topic = "history.undone"

	// TopicHistoryRedone is published after a grouping is redone.
	TopicHistoryRedone topic.Topic = "history.redone"

	// TopicHistoryCleared is published when the history is reset.
	TopicHistoryCleared topic.Topic = "history.cleared"
)

// HistoryChanged describes a history transition.
type HistoryChanged struct {
	Description string
	Items       int
	UndoCount   int
	RedoCount   int
}
