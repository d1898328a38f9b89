// Package events defines the topics and payloads published by regroup
// components.
package events

import "github.com/dshills/regroup/internal/event/topic"

// List event topics.
const (
	// TopicListChanged is published after every linear store mutation.
	TopicListChanged topic.Topic = "list.changed"
)

// ListChanged describes a linear store mutation.
type ListChanged struct {
	// Kind is "inserted", "removed" or "selection".
	Kind string

	ItemID string
	Label  string

	// Index is the position of the inserted or removed item, -1 for
	// selection changes.
	Index int

	// Len is the store length after the change.
	Len int
}
