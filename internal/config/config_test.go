package config

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/regroup/internal/config/loader"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 50, cfg.List.Count)
	assert.Equal(t, "Item %d", cfg.List.LabelFormat)
	assert.Equal(t, "Root", cfg.Tree.RootLabel)
	assert.Equal(t, 1000, cfg.History.MaxEntries)
	assert.Equal(t, PlacementContiguous, cfg.History.Placement)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, []string{SourceDefaults}, cfg.Sources())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, Default().ToMap(), cfg.ToMap())
	assert.Empty(t, cfg.Path())
}

func TestLoad_TOMLFile(t *testing.T) {
	fsys := fstest.MapFS{
		"regroup.toml": {Data: []byte(`
[list]
count = 8

[history]
placement = "original"
`)},
	}

	cfg, err := Load(WithFS(fsys), WithFile("regroup.toml"), WithoutEnv())
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.List.Count)
	assert.Equal(t, "Item %d", cfg.List.LabelFormat, "unset keys keep defaults")
	assert.Equal(t, PlacementOriginal, cfg.History.Placement)
	assert.Equal(t, "regroup.toml", cfg.Path())
	assert.Equal(t, []string{SourceDefaults, "regroup.toml"}, cfg.Sources())
}

func TestLoad_YAMLFile(t *testing.T) {
	fsys := fstest.MapFS{
		"regroup.yml": {Data: []byte("tree:\n  root_label: Groups\nlogging:\n  level: debug\n")},
	}

	cfg, err := Load(WithFS(fsys), WithFile("regroup.yml"), WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, "Groups", cfg.Tree.RootLabel)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(WithFS(fstest.MapFS{}), WithFile("absent.toml"), WithoutEnv())
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())
	assert.Equal(t, []string{SourceDefaults}, cfg.Sources())
}

func TestLoad_Precedence(t *testing.T) {
	fsys := fstest.MapFS{
		"regroup.toml": {Data: []byte("[list]\ncount = 8\nlabel_format = \"File %d\"\n[tree]\nroot_label = \"FileRoot\"\n")},
	}
	t.Setenv("REGROUP_ITEMS", "9")
	t.Setenv("REGROUP_TREE_ROOT_LABEL", "EnvRoot")

	cfg, err := Load(
		WithFS(fsys),
		WithFile("regroup.toml"),
		WithOverrides(map[string]any{"list.count": 10}),
	)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.List.Count, "overrides beat env")
	assert.Equal(t, "EnvRoot", cfg.Tree.RootLabel, "env beats file")
	assert.Equal(t, "File %d", cfg.List.LabelFormat, "file beats defaults")
	assert.Equal(t, []string{SourceDefaults, "regroup.toml", SourceEnv, SourceOverrides}, cfg.Sources())
}

func TestLoad_CustomEnvPrefix(t *testing.T) {
	t.Setenv("RG_LIST_COUNT", "3")

	cfg, err := Load(WithEnvPrefix("RG_"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.List.Count)
}

func TestLoad_ParseError(t *testing.T) {
	fsys := fstest.MapFS{"bad.toml": {Data: []byte("[list\n")}}

	_, err := Load(WithFS(fsys), WithFile("bad.toml"), WithoutEnv())
	var perr *loader.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(WithFile("regroup.ini"), WithoutEnv())
	assert.ErrorIs(t, err, loader.ErrUnsupportedFormat)
}

func TestLoad_TypeMismatchAndUnknown(t *testing.T) {
	fsys := fstest.MapFS{
		"regroup.toml": {Data: []byte("[list]\ncount = \"many\"\ncolour = \"red\"\n")},
	}

	_, err := Load(WithFS(fsys), WithFile("regroup.toml"), WithoutEnv())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "list.count")
	assert.Contains(t, err.Error(), "list.colour")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
		code   ValidationErrorCode
	}{
		{"negative count", func(c *Config) { c.List.Count = -1 }, "list.count", ErrCodeOutOfRange},
		{"count too large", func(c *Config) { c.List.Count = MaxItemCount + 1 }, "list.count", ErrCodeOutOfRange},
		{"format without verb", func(c *Config) { c.List.LabelFormat = "Item" }, "list.label_format", ErrCodePatternMismatch},
		{"format with extra verb", func(c *Config) { c.List.LabelFormat = "%s %d" }, "list.label_format", ErrCodePatternMismatch},
		{"zero max entries", func(c *Config) { c.History.MaxEntries = 0 }, "history.max_entries", ErrCodeOutOfRange},
		{"bad placement", func(c *Config) { c.History.Placement = "scattered" }, "history.placement", ErrCodeInvalidEnum},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level", ErrCodeInvalidEnum},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format", ErrCodeInvalidEnum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.path, verr.Path)
			assert.Equal(t, tt.code, verr.Code)
		})
	}
}

func TestValidationErrorCodeString(t *testing.T) {
	assert.Equal(t, "out_of_range", ErrCodeOutOfRange.String())
	assert.Equal(t, "unknown", ValidationErrorCode(99).String())
}
