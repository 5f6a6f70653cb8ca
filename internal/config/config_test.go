package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/schemewasm/swc/frontend/types"
	"github.com/schemewasm/swc/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(`
log_level: debug
log_sections: [parser]
reject_duplicate_fields: true
parallel: true
prelude:
  add1: (-> int int)
  origin: "(record (x : int) (y : int))"
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"parser"}, cfg.LogSections)
	assert.True(t, cfg.CheckOptions().RejectDuplicateFields)
	assert.True(t, cfg.CheckOptions().Parallel)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	scope, err := cfg.Env()
	require.NoError(t, err)
	assert.Equal(t, []string{"add1", "origin"}, scope.Names())
	add1, _ := scope.Lookup("add1")
	assert.True(t, add1.Equals(types.Func{Params: []types.Type{types.IntType}, Ret: types.IntType}))
	origin, _ := scope.Lookup("origin")
	assert.Equal(t, "(record (x : int) (y : int))", origin.String())
}

func TestUnquotedRecordPrelude(t *testing.T) {
	_, err := config.Parse([]byte("prelude:\n  origin: (record (x : int))\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote")
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "colour: blue\n",
		"bad level":    "log_level: loud\n",
		"invalid yaml": "log_level: [\n",
		"wrong type":   "parallel: sometimes\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestBadPrelude(t *testing.T) {
	cfg, err := config.Parse([]byte("prelude:\n  f: (-> int\n"))
	require.NoError(t, err)
	_, err = cfg.Env()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prelude binding f")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallel: false\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Parallel)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadMissingDefault(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	require.NoError(t, os.WriteFile(config.DefaultFile, []byte("log_level: warn\n"), 0o644))
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
