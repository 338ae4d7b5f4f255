package shortcut

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Table maps short aliases to their full command-fragment expansions.
// It is built once by Load and read-only afterwards, so it is safe for
// concurrent lookups.
type Table struct {
	expansions map[string]string
	aliases    []string
	logger     *zap.Logger
}

// shortcutFile mirrors the YAML layout of a shortcut definition file.
type shortcutFile struct {
	Shortcuts map[string]string `yaml:"shortcuts"`
}

// Load builds a Table from every YAML file in the given filesystem, then
// merges user-defined shortcuts from the standard config locations. The
// reserved set (typically the known command names) is excluded: an alias
// shadowing a real command is dropped with a warning rather than loaded.
func Load(fsys fs.FS, reserved []string, logger *zap.Logger) (*Table, error) {
	table := &Table{
		expansions: make(map[string]string),
		logger:     logger,
	}

	reservedSet := make(map[string]bool, len(reserved))
	for _, name := range reserved {
		reservedSet[name] = true
	}

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var file shortcutFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		table.register(file.Shortcuts, reservedSet)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load shortcuts: %w", err)
	}

	table.loadUserShortcuts(reservedSet)
	table.rebuildAliases()
	return table, nil
}

func (t *Table) register(shortcuts map[string]string, reserved map[string]bool) {
	for alias, expansion := range shortcuts {
		if reserved[alias] {
			t.logger.Warn("shortcut alias shadows a command name, dropping",
				zap.String("alias", alias))
			continue
		}
		t.expansions[alias] = expansion
	}
}

// loadUserShortcuts merges shortcuts from the first readable user config
// file. User entries override embedded defaults for the same alias.
func (t *Table) loadUserShortcuts(reserved map[string]bool) {
	for _, path := range userShortcutPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var file shortcutFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			t.logger.Warn("ignoring malformed user shortcut file",
				zap.String("path", path), zap.Error(err))
			continue
		}

		t.register(file.Shortcuts, reserved)
		return
	}
}

// userShortcutPaths returns the candidate locations for a user-defined
// shortcut file, most specific first.
func userShortcutPaths() []string {
	var paths []string

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		paths = append(paths, filepath.Join(xdgConfig, "sawsh", "shortcuts.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sawsh", "shortcuts.yaml"))
		paths = append(paths, filepath.Join(home, ".sawsh_shortcuts.yaml"))
	}

	return paths
}

func (t *Table) rebuildAliases() {
	t.aliases = make([]string, 0, len(t.expansions))
	for alias := range t.expansions {
		t.aliases = append(t.aliases, alias)
	}
	sort.Strings(t.aliases)
}

// Expand replaces the first token of line that exactly matches a registered
// alias with its expansion. Only one replacement is performed per call, and
// a line containing no alias tokens is returned unchanged, so Expand is
// idempotent on already-expanded text.
func (t *Table) Expand(line string) string {
	fields := strings.Fields(line)
	for i, field := range fields {
		expansion, ok := t.expansions[field]
		if !ok {
			continue
		}
		fields[i] = expansion
		return strings.Join(fields, " ")
	}
	return line
}

// Expansion returns the expansion registered for alias.
func (t *Table) Expansion(alias string) (string, bool) {
	expansion, ok := t.expansions[alias]
	return expansion, ok
}

// Candidates returns the aliases having prefix as a case-insensitive
// prefix, sorted.
func (t *Table) Candidates(prefix string) []string {
	lowered := strings.ToLower(prefix)
	var out []string
	for _, alias := range t.aliases {
		if strings.HasPrefix(strings.ToLower(alias), lowered) {
			out = append(out, alias)
		}
	}
	return out
}

// Aliases returns all registered aliases, sorted.
func (t *Table) Aliases() []string {
	out := make([]string, len(t.aliases))
	copy(out, t.aliases)
	return out
}
