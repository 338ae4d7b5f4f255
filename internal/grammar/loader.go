package grammar

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// specFile mirrors the YAML layout of a grammar specification file.
type specFile struct {
	Root            string              `yaml:"root"`
	Commands        map[string][]string `yaml:"commands"`
	GlobalOptions   []string            `yaml:"global_options"`
	ResourceOptions map[string][]string `yaml:"resource_options"`
	OptionValues    map[string]struct {
		Values   []string `yaml:"values"`
		Resource string   `yaml:"resource"`
	} `yaml:"option_values"`
}

// Load builds a Store from every YAML file in the given filesystem.
// Later files merge into earlier ones; command and option lists from
// multiple files are concatenated and deduplicated.
func Load(fsys fs.FS) (*Store, error) {
	store := &Store{
		commandSet:      make(map[string]bool),
		subCommands:     make(map[string][]string),
		resourceOptions: make(map[string][]string),
		enumValues:      make(map[string][]string),
		resourceKinds:   make(map[string]string),
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

		var file specFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		mergeSpec(store, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load grammar: %w", err)
	}

	finalize(store)
	return store, nil
}

func mergeSpec(store *Store, file specFile) {
	if file.Root != "" {
		store.root = file.Root
	}
	for command, subs := range file.Commands {
		if !store.commandSet[command] {
			store.commandSet[command] = true
			store.commands = append(store.commands, command)
		}
		store.subCommands[command] = append(store.subCommands[command], subs...)
	}
	store.globalOptions = append(store.globalOptions, file.GlobalOptions...)
	for sub, opts := range file.ResourceOptions {
		store.resourceOptions[sub] = append(store.resourceOptions[sub], opts...)
	}
	for option, spec := range file.OptionValues {
		if len(spec.Values) > 0 {
			store.enumValues[option] = append(store.enumValues[option], spec.Values...)
		}
		if spec.Resource != "" {
			store.resourceKinds[option] = spec.Resource
		}
	}
}

// finalize sorts and deduplicates every table so lookups return stable,
// ordered results.
func finalize(store *Store) {
	store.commands = sortedUnique(store.commands)
	store.globalOptions = sortedUnique(store.globalOptions)
	for command, subs := range store.subCommands {
		store.subCommands[command] = sortedUnique(subs)
	}
	for sub, opts := range store.resourceOptions {
		store.resourceOptions[sub] = sortedUnique(opts)
	}
	for option, values := range store.enumValues {
		store.enumValues[option] = sortedUnique(values)
	}
}

func sortedUnique(in []string) []string {
	sort.Strings(in)
	out := in[:0]
	for i, s := range in {
		if i > 0 && in[i-1] == s {
			continue
		}
		out = append(out, s)
	}
	return out
}
