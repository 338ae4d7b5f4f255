package grammar

import (
	"sort"
)

// Store holds the command grammar tables used for completion lookups:
// top-level commands, per-command subcommands, global options, per-subcommand
// resource options, enumerated option values, and the resource kind consumed
// by options whose values are discovered at runtime.
//
// All tables are built once by Load and never mutated afterwards, so a Store
// is safe for concurrent readers without locking.
type Store struct {
	root            string
	commands        []string
	commandSet      map[string]bool
	subCommands     map[string][]string
	globalOptions   []string
	resourceOptions map[string][]string
	enumValues      map[string][]string
	resourceKinds   map[string]string
}

// Root returns the wrapped tool's root command name (e.g. "aws").
func (s *Store) Root() string {
	return s.root
}

// Commands returns all top-level command names, sorted.
func (s *Store) Commands() []string {
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// IsCommand reports whether name is a known top-level command.
func (s *Store) IsCommand(name string) bool {
	return s.commandSet[name]
}

// SubCommandsOf returns the subcommands registered under command, sorted.
// Unknown commands yield an empty list.
func (s *Store) SubCommandsOf(command string) []string {
	subs := s.subCommands[command]
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// IsSubCommandOf reports whether sub is a known subcommand of command.
func (s *Store) IsSubCommandOf(command, sub string) bool {
	for _, candidate := range s.subCommands[command] {
		if candidate == sub {
			return true
		}
	}
	return false
}

// GlobalOptions returns the options valid in any context, sorted.
func (s *Store) GlobalOptions() []string {
	out := make([]string, len(s.globalOptions))
	copy(out, s.globalOptions)
	return out
}

// OptionsFor returns the options valid after the given subcommand: the
// global options plus any resource options registered for it. The result
// is sorted and deduplicated.
func (s *Store) OptionsFor(sub string) []string {
	merged := make([]string, 0, len(s.globalOptions)+len(s.resourceOptions[sub]))
	merged = append(merged, s.globalOptions...)
	merged = append(merged, s.resourceOptions[sub]...)
	sort.Strings(merged)

	out := merged[:0]
	for i, opt := range merged {
		if i > 0 && merged[i-1] == opt {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// EnumValuesFor returns the closed value set for an option that takes an
// enumerated argument, e.g. --instance-state-name.
func (s *Store) EnumValuesFor(option string) ([]string, bool) {
	values, ok := s.enumValues[option]
	if !ok {
		return nil, false
	}
	out := make([]string, len(values))
	copy(out, values)
	return out, true
}

// ResourceKindFor returns the resource kind an option's values are fetched
// from at runtime, e.g. --instance-ids -> ec2-instance-ids.
func (s *Store) ResourceKindFor(option string) (string, bool) {
	kind, ok := s.resourceKinds[option]
	return kind, ok
}

// TakesValue reports whether the option expects an argument value the
// completer knows how to suggest, either enumerated or resource-backed.
func (s *Store) TakesValue(option string) bool {
	if _, ok := s.enumValues[option]; ok {
		return true
	}
	_, ok := s.resourceKinds[option]
	return ok
}
