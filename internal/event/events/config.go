package events

import "github.com/dshills/regroup/internal/event/topic"

// Config event topics.
const (
	// TopicConfigLoaded is published once configuration has been layered
	// and validated.
	TopicConfigLoaded topic.Topic = "config.loaded"
)

// ConfigLoaded describes a completed configuration load.
type ConfigLoaded struct {
	// Path is the config file that was read, empty if none.
	Path string

	// Sources lists the layers applied, lowest precedence first.
	Sources []string
}
