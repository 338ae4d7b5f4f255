// Package config loads and persists user settings from a YAML file under
// the user's config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config holds the user-tunable settings. Zero values are never used
// directly; start from Default and overlay the file on top.
type Config struct {
	// FuzzyMatch enables subsequence completion matching at startup.
	FuzzyMatch bool `yaml:"fuzzy_match"`
	// ShortcutMatch merges shortcut aliases into completions at startup.
	ShortcutMatch bool `yaml:"shortcut_match"`
	// ColorOutput pipes command output through a JSON pretty-printer.
	ColorOutput bool `yaml:"color_output"`
	// LogLevel sets the file logger level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// FetchTimeoutSeconds bounds a single resource listing call.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		FuzzyMatch:          true,
		ShortcutMatch:       true,
		ColorOutput:         true,
		LogLevel:            "info",
		FetchTimeoutSeconds: 5,
	}
}

// FetchTimeout returns the resource fetch deadline as a duration.
func (c Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return time.Duration(Default().FetchTimeoutSeconds) * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// probePaths lists config file locations in priority order.
func probePaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "sawsh", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "sawsh", "config.yaml"),
			filepath.Join(home, ".sawsh.yaml"))
	}
	return paths
}

// DefaultPath returns the preferred location for writing the config file.
func DefaultPath() string {
	paths := probePaths()
	if len(paths) == 0 {
		return "sawsh-config.yaml"
	}
	return paths[0]
}

// Load returns the defaults overlaid with the first readable config file.
// A missing file is not an error; a malformed one is logged and skipped so
// a bad edit never locks the user out of the shell.
func Load(logger *zap.Logger) Config {
	cfg := Default()
	for _, path := range probePaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logger.Warn("ignoring malformed config file",
				zap.String("path", path), zap.Error(err))
			return Default()
		}
		logger.Debug("loaded config", zap.String("path", path))
		return cfg
	}
	return cfg
}

// Save writes cfg to path atomically via a temp file rename.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "config.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Chmod(0600); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
