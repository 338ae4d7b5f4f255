package completion

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/robottwo/sawsh/internal/grammar"
	"github.com/robottwo/sawsh/internal/resource"
	"github.com/robottwo/sawsh/internal/shortcut"
)

// Options are the per-call completion mode flags. They are plain values
// supplied by the editing surface on every call rather than mutable engine
// state, so toggling a mode never races a completion in flight.
type Options struct {
	// FuzzyMatch enables subsequence matching when prefix filtering
	// yields no candidates.
	FuzzyMatch bool
	// ShortcutMatch merges shortcut aliases into command-position
	// candidates.
	ShortcutMatch bool
}

// Engine produces completion candidates for partial input lines. It is
// stateless per call; the resource cache is the only shared mutable
// collaborator and a completion request touches it only through Get.
type Engine struct {
	store     *grammar.Store
	shortcuts *shortcut.Table
	resources *resource.Cache
	logger    *zap.Logger
}

// NewEngine creates a completion engine over the given grammar store,
// shortcut table and resource cache.
func NewEngine(store *grammar.Store, shortcuts *shortcut.Table, resources *resource.Cache, logger *zap.Logger) *Engine {
	return &Engine{
		store:     store,
		shortcuts: shortcuts,
		resources: resources,
		logger:    logger,
	}
}

// Complete returns the ordered, deduplicated candidate completions for
// line. Candidates matching the in-progress word by case-insensitive
// prefix come first, alphabetically; when there are none and fuzzy mode is
// on, subsequence matches follow in fuzzy rank order. An empty result is a
// normal outcome, never an error.
func (e *Engine) Complete(ctx context.Context, line string, opts Options) []string {
	candidates, _ := e.CompleteLine(ctx, line, opts)
	return candidates
}

// CompleteLine is Complete plus the in-progress word the candidates stand
// in for. The partial is empty when the line ends in whitespace or its
// trailing token matched the grammar exactly, in which case a candidate
// starts a new word rather than replacing the one just typed.
func (e *Engine) CompleteLine(ctx context.Context, line string, opts Options) ([]string, string) {
	resolved := ResolveContext(e.store, line)
	raw := e.rawCandidates(ctx, resolved, opts)

	candidates := prefixFilter(resolved.Partial, raw)
	if len(candidates) == 0 && opts.FuzzyMatch {
		candidates = FuzzyFilter(resolved.Partial, raw)
	}

	return lo.Uniq(candidates), resolved.Partial
}

// rawCandidates gathers the unfiltered candidate set for the resolved
// context from the grammar store, the shortcut table and, for dynamic
// option values, the resource cache.
func (e *Engine) rawCandidates(ctx context.Context, resolved Context, opts Options) []string {
	switch resolved.Kind {
	case KindCommand:
		candidates := e.store.Commands()
		if opts.ShortcutMatch {
			candidates = append(candidates, e.shortcuts.Aliases()...)
		}
		return candidates
	case KindSubCommand:
		return e.store.SubCommandsOf(resolved.Command)
	case KindOption:
		return e.store.OptionsFor(resolved.SubCommand)
	case KindOptionValue:
		// Static grammar wins over dynamic data when an option has both.
		if values, ok := e.store.EnumValuesFor(resolved.Option); ok {
			return values
		}
		if kind, ok := e.store.ResourceKindFor(resolved.Option); ok {
			return e.resources.Get(ctx, kind)
		}
		e.logger.Debug("option takes a value with no known source",
			zap.String("option", resolved.Option))
		return nil
	}
	return nil
}

// prefixFilter returns the candidates having partial as a case-insensitive
// prefix, sorted alphabetically. An empty partial keeps the whole set.
func prefixFilter(partial string, candidates []string) []string {
	lowered := strings.ToLower(partial)
	matched := lo.Filter(candidates, func(candidate string, _ int) bool {
		return strings.HasPrefix(strings.ToLower(candidate), lowered)
	})
	sort.Strings(matched)
	return matched
}
