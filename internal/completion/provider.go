package completion

import (
	"context"
)

// PromptProvider adapts the Engine to the prompt surface's
// CompletionProvider interface, binding the current session mode flags at
// call time so key-binding toggles take effect on the next keystroke.
type PromptProvider struct {
	Engine *Engine
	// Opts returns the mode flags in effect for the call.
	Opts func() Options
}

// Completions returns the engine's candidates for the current line along
// with the in-progress word they replace. An empty partial means the
// candidates extend the line with a new word.
func (p *PromptProvider) Completions(line string) ([]string, string) {
	return p.Engine.CompleteLine(context.Background(), line, p.Opts())
}
