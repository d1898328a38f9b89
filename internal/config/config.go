package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dshills/regroup/internal/config/loader"
	"github.com/dshills/regroup/internal/engine/listing"
)

// Default setting values.
const (
	DefaultItemCount   = 50
	DefaultLabelFormat = "Item %d"
	DefaultRootLabel   = "Root"
	DefaultMaxEntries  = 1000
	DefaultPlacement   = PlacementContiguous
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"

	// MaxItemCount bounds list.count.
	MaxItemCount = listing.MaxNumbered
)

// Placement names accepted by history.placement.
const (
	PlacementContiguous = "contiguous"
	PlacementOriginal   = "original"
)

// Layer names reported by Sources.
const (
	SourceDefaults  = "defaults"
	SourceEnv       = "env"
	SourceOverrides = "overrides"
)

// ListConfig holds the initial linear store settings.
type ListConfig struct {
	// Count is the number of items created at startup.
	Count int

	// LabelFormat formats each item label from its 1-based number.
	LabelFormat string
}

// TreeConfig holds the hierarchical store settings.
type TreeConfig struct {
	RootLabel string
}

// HistoryConfig holds undo/redo settings.
type HistoryConfig struct {
	// MaxEntries is the undo depth; older entries are evicted.
	MaxEntries int

	// Placement is "contiguous" or "original".
	Placement string
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// Config is the validated application configuration.
type Config struct {
	List    ListConfig
	Tree    TreeConfig
	History HistoryConfig
	Logging LoggingConfig

	path    string
	sources []string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		List:    ListConfig{Count: DefaultItemCount, LabelFormat: DefaultLabelFormat},
		Tree:    TreeConfig{RootLabel: DefaultRootLabel},
		History: HistoryConfig{MaxEntries: DefaultMaxEntries, Placement: DefaultPlacement},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		sources: []string{SourceDefaults},
	}
}

// Path returns the config file that was read, or "" if none was.
func (c *Config) Path() string {
	return c.path
}

// Sources returns the layers that contributed, lowest precedence first.
func (c *Config) Sources() []string {
	return append([]string(nil), c.sources...)
}

// ToMap returns the configuration as a nested settings map.
func (c *Config) ToMap() map[string]any {
	return map[string]any{
		"list": map[string]any{
			"count":        c.List.Count,
			"label_format": c.List.LabelFormat,
		},
		"tree": map[string]any{
			"root_label": c.Tree.RootLabel,
		},
		"history": map[string]any{
			"max_entries": c.History.MaxEntries,
			"placement":   c.History.Placement,
		},
		"logging": map[string]any{
			"level":  c.Logging.Level,
			"format": c.Logging.Format,
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	path      string
	fs        loader.FileSystem
	envPrefix string
	useEnv    bool
	overrides map[string]any
}

// WithFile reads the given TOML or YAML file as the file layer.
// A missing file is not an error.
func WithFile(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithFS sets the file system the config file is read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutEnv skips the environment layer.
func WithoutEnv() Option {
	return func(o *options) {
		o.useEnv = false
	}
}

// WithOverrides adds a final layer of settings keyed by dotted path,
// e.g. "list.count". CLI flags use this.
func WithOverrides(values map[string]any) Option {
	return func(o *options) {
		if o.overrides == nil {
			o.overrides = make(map[string]any)
		}
		for path, v := range values {
			loader.SetByPath(o.overrides, path, v)
		}
	}
}

// Load layers defaults, the config file, the environment and overrides,
// then decodes and validates the result.
func Load(opts ...Option) (*Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		useEnv:    true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	merged := cfg.ToMap()

	if o.path != "" {
		l, err := loader.ForPath(o.fs, o.path)
		if err != nil {
			return nil, err
		}
		fileMap, err := l.Load()
		if err != nil {
			return nil, err
		}
		if fileMap != nil {
			merged = loader.DeepMerge(merged, fileMap)
			cfg.path = o.path
			cfg.sources = append(cfg.sources, o.path)
		}
	}

	if o.useEnv {
		envMap, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		if len(envMap) > 0 {
			merged = loader.DeepMerge(merged, envMap)
			cfg.sources = append(cfg.sources, SourceEnv)
		}
	}

	if len(o.overrides) > 0 {
		merged = loader.DeepMerge(merged, o.overrides)
		cfg.sources = append(cfg.sources, SourceOverrides)
	}

	if err := cfg.decode(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// knownSettings lists every accepted setting path.
var knownSettings = map[string]bool{
	"list.count":          true,
	"list.label_format":   true,
	"tree.root_label":     true,
	"history.max_entries": true,
	"history.placement":   true,
	"logging.level":       true,
	"logging.format":      true,
}

// decode copies typed values out of a merged settings map.
func (c *Config) decode(m map[string]any) error {
	var errs []error
	for _, path := range unknownPaths(m, "") {
		errs = append(errs, &ValidationError{Path: path, Message: "unknown setting", Code: ErrCodeUnknownSetting})
	}

	decodeInt(m, "list.count", &c.List.Count, &errs)
	decodeString(m, "list.label_format", &c.List.LabelFormat, &errs)
	decodeString(m, "tree.root_label", &c.Tree.RootLabel, &errs)
	decodeInt(m, "history.max_entries", &c.History.MaxEntries, &errs)
	decodeString(m, "history.placement", &c.History.Placement, &errs)
	decodeString(m, "logging.level", &c.Logging.Level, &errs)
	decodeString(m, "logging.format", &c.Logging.Format, &errs)

	return errors.Join(errs...)
}

func unknownPaths(m map[string]any, prefix string) []string {
	var out []string
	for key, v := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if sub, ok := v.(map[string]any); ok && prefix == "" {
			out = append(out, unknownPaths(sub, path)...)
			continue
		}
		if !knownSettings[path] {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

func decodeInt(m map[string]any, path string, dst *int, errs *[]error) {
	v, ok := loader.GetByPath(m, path)
	if !ok {
		return
	}
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case uint64:
		*dst = int(n)
	case float64:
		if n == math.Trunc(n) {
			*dst = int(n)
			return
		}
		*errs = append(*errs, &ValidationError{Path: path, Message: "expected an integer", Value: v, Code: ErrCodeTypeMismatch})
	default:
		*errs = append(*errs, &ValidationError{Path: path, Message: "expected an integer", Value: v, Code: ErrCodeTypeMismatch})
	}
}

func decodeString(m map[string]any, path string, dst *string, errs *[]error) {
	v, ok := loader.GetByPath(m, path)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		*errs = append(*errs, &ValidationError{Path: path, Message: "expected a string", Value: v, Code: ErrCodeTypeMismatch})
		return
	}
	*dst = s
}

// Validate checks ranges and enums. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, v any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v, Code: code})
	}

	if c.List.Count < 0 || c.List.Count > MaxItemCount {
		add("list.count", fmt.Sprintf("must be between 0 and %d", MaxItemCount), c.List.Count, ErrCodeOutOfRange)
	}
	if strings.Count(c.List.LabelFormat, "%d") != 1 || strings.Count(c.List.LabelFormat, "%") != 1 {
		add("list.label_format", `must contain exactly one "%d" verb`, c.List.LabelFormat, ErrCodePatternMismatch)
	}
	if c.History.MaxEntries < 1 {
		add("history.max_entries", "must be at least 1", c.History.MaxEntries, ErrCodeOutOfRange)
	}
	switch c.History.Placement {
	case PlacementContiguous, PlacementOriginal:
	default:
		add("history.placement", fmt.Sprintf("must be %q or %q", PlacementContiguous, PlacementOriginal), c.History.Placement, ErrCodeInvalidEnum)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "unknown level", c.Logging.Level, ErrCodeInvalidEnum)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		add("logging.format", `must be "text" or "json"`, c.Logging.Format, ErrCodeInvalidEnum)
	}

	return errors.Join(errs...)
}
