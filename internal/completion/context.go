package completion

import (
	"strings"
	"unicode"

	"github.com/robottwo/sawsh/internal/grammar"
)

// ContextKind identifies the grammatical position the cursor is at.
type ContextKind int

const (
	// KindCommand: completing a top-level command name. An empty line is
	// a Command context with the full command set as candidates.
	KindCommand ContextKind = iota
	// KindSubCommand: completing a subcommand of a known command.
	KindSubCommand
	// KindOption: completing an option after a known (command, subcommand).
	KindOption
	// KindOptionValue: completing the value of the preceding option.
	KindOptionValue
)

// Context is the resolved grammatical position for a partial input line.
type Context struct {
	Kind       ContextKind
	Command    string
	SubCommand string
	Option     string
	// Partial is the in-progress word being completed; empty when the
	// line ends in whitespace and the next word hasn't started yet.
	Partial string
}

// ResolveContext tokenizes line on whitespace and classifies the position
// at the end of it against the grammar store.
//
// Committed tokens (every token except an in-progress trailing word) drive
// a state walk: an exact command match advances to subcommand position, an
// exact subcommand match advances to options, and a recognized option that
// takes a value puts the very next position in value context. Prefix
// matches never advance the walk — an unknown or partial first token keeps
// the resolver in Command context so the grammar state can't advance on a
// guess. The trailing word itself also advances on exact equality, per the
// same rule, so "aws ec2" followed by nothing completes ec2's subcommands.
func ResolveContext(store *grammar.Store, line string) Context {
	tokens := strings.Fields(line)
	trailingSpace := len(line) > 0 && unicode.IsSpace(rune(line[len(line)-1]))

	// The root command token carries no grammatical information.
	if len(tokens) > 0 && tokens[0] == store.Root() {
		tokens = tokens[1:]
	}

	partial := ""
	committed := tokens
	if len(tokens) > 0 && !trailingSpace {
		partial = tokens[len(tokens)-1]
		committed = tokens[:len(tokens)-1]
	}

	ctx := Context{Kind: KindCommand}
	pendingValue := ""

	for _, token := range committed {
		if pendingValue != "" {
			// The token filled the pending option's value slot.
			pendingValue = ""
			continue
		}
		switch ctx.Kind {
		case KindCommand:
			if store.IsCommand(token) {
				ctx.Command = token
				ctx.Kind = KindSubCommand
			}
		case KindSubCommand:
			if store.IsSubCommandOf(ctx.Command, token) {
				ctx.SubCommand = token
				ctx.Kind = KindOption
			}
		case KindOption:
			if store.TakesValue(token) {
				pendingValue = token
			}
		}
	}

	if pendingValue != "" {
		ctx.Kind = KindOptionValue
		ctx.Option = pendingValue
		ctx.Partial = partial
		return ctx
	}

	// Exact equality of the trailing word advances context one step; a
	// mere prefix does not.
	switch ctx.Kind {
	case KindCommand:
		if partial != "" && store.IsCommand(partial) {
			ctx.Command = partial
			ctx.Kind = KindSubCommand
			partial = ""
		}
	case KindSubCommand:
		if partial != "" && store.IsSubCommandOf(ctx.Command, partial) {
			ctx.SubCommand = partial
			ctx.Kind = KindOption
			partial = ""
		}
	case KindOption:
		if partial != "" && store.TakesValue(partial) {
			ctx.Option = partial
			ctx.Kind = KindOptionValue
			partial = ""
		}
	}

	ctx.Partial = partial
	return ctx
}
