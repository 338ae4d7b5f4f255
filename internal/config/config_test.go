package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg := Load(zap.NewNop())
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.FuzzyMatch)
	assert.True(t, cfg.ShortcutMatch)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout())
}

func TestLoad_ReadsXDGConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	dir := filepath.Join(xdg, "sawsh")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
fuzzy_match: false
color_output: false
log_level: debug
fetch_timeout_seconds: 10
`), 0600))

	cfg := Load(zap.NewNop())
	assert.False(t, cfg.FuzzyMatch)
	assert.False(t, cfg.ColorOutput)
	// Keys absent from the file keep their defaults.
	assert.True(t, cfg.ShortcutMatch)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
}

func TestLoad_MalformedFileFallsBackToDefaults(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	dir := filepath.Join(xdg, "sawsh")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0600))

	assert.Equal(t, Default(), Load(zap.NewNop()))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sawsh", "config.yaml")

	cfg := Default()
	cfg.FuzzyMatch = false
	cfg.FetchTimeoutSeconds = 30
	require.NoError(t, Save(cfg, path))

	t.Setenv("XDG_CONFIG_HOME", filepath.Dir(filepath.Dir(path)))
	t.Setenv("HOME", t.TempDir())
	loaded := Load(zap.NewNop())
	assert.Equal(t, cfg, loaded)
}

func TestFetchTimeout_NonPositiveUsesDefault(t *testing.T) {
	cfg := Config{FetchTimeoutSeconds: 0}
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout())
}
