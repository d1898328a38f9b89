// Package config provides regroup's configuration.
//
// # Architecture
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Overrides (CLI flags)   │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← REGROUP_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← regroup.toml / regroup.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Each layer is read into a map by the loader sub-package, the maps are
// deep-merged, and the result is decoded into a Config and validated.
//
// # Settings
//
//	[list]
//	count = 50                 # initial number of items
//	label_format = "Item %d"   # receives the 1-based item number
//
//	[tree]
//	root_label = "Root"
//
//	[history]
//	max_entries = 1000
//	placement = "contiguous"   # or "original"
//
//	[logging]
//	level = "info"             # trace, debug, info, warn, error
//	format = "text"            # or "json"
//
// # Environment Variables
//
// Any setting can be set as REGROUP_<SECTION>_<KEY>, e.g.
// REGROUP_HISTORY_MAX_ENTRIES=20. Short aliases exist for common ones:
// REGROUP_LOG_LEVEL, REGROUP_ITEMS, REGROUP_ROOT_LABEL, REGROUP_MAX_UNDO.
package config
