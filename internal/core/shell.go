package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/robottwo/sawsh/internal/completion"
	"github.com/robottwo/sawsh/internal/config"
	"github.com/robottwo/sawsh/internal/docs"
	"github.com/robottwo/sawsh/internal/grammar"
	"github.com/robottwo/sawsh/internal/history"
	"github.com/robottwo/sawsh/internal/resource"
	"github.com/robottwo/sawsh/internal/shortcut"
	"github.com/robottwo/sawsh/pkg/prompt"
)

const (
	usageLine     = "usage: aws [options] <command> <subcommand> [parameters]"
	tooFewArgsMsg = "aws: error: too few arguments"

	prettyPrintPipe = " | python -m json.tool"
)

const historySize = 500

// Shell wires the completion engine, shortcut table, resource cache,
// docs handler and history store into the interactive read-execute loop.
type Shell struct {
	Store     *grammar.Store
	Shortcuts *shortcut.Table
	Engine    *completion.Engine
	Resources *resource.Cache
	Docs      *docs.Handler
	History   *history.Manager
	Config    config.Config
	Runner    *interp.Runner
	Logger    *zap.Logger
}

// modeState holds the session mode flags behind a mutex so the prompt's
// toggle callback and the completion provider can share them mid-edit.
type modeState struct {
	mu       sync.Mutex
	fuzzy    bool
	shortcut bool
}

func (s *modeState) set(fuzzy, shortcut bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuzzy = fuzzy
	s.shortcut = shortcut
}

func (s *modeState) get() (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fuzzy, s.shortcut
}

// Run drives the interactive loop until the user exits.
func (s *Shell) Run(ctx context.Context) error {
	sessionID := uuid.New().String()
	s.Logger.Info("starting session", zap.String("session_id", sessionID))

	modes := &modeState{}
	modes.set(s.Config.FuzzyMatch, s.Config.ShortcutMatch)

	provider := &completion.PromptProvider{
		Engine: s.Engine,
		Opts: func() completion.Options {
			fuzzy, shortcutOn := modes.get()
			return completion.Options{FuzzyMatch: fuzzy, ShortcutMatch: shortcutOn}
		},
	}

	// The shell, not the terminal, decides when Ctrl+C ends the session.
	chanSIGINT := make(chan os.Signal, 1)
	signal.Notify(chanSIGINT, os.Interrupt)
	defer signal.Stop(chanSIGINT)
	go func() {
		for range chanSIGINT {
		}
	}()

	for {
		historyCommands, err := s.recentCommands()
		if err != nil {
			s.Logger.Warn("error loading history", zap.Error(err))
		}

		fuzzy, shortcutOn := modes.get()
		result, err := prompt.Run(s.Logger, prompt.Options{
			Prompt:             "sawsh> ",
			History:            historyCommands,
			PrefixHistory:      s.historyByPrefix,
			CompletionProvider: provider,
			FuzzyEnabled:       fuzzy,
			ShortcutEnabled:    shortcutOn,
			ModeChanged:        modes.set,
			CacheAge:           s.cacheAge,
			Refresh: func() {
				// Runs off the input loop; Get keeps serving the prior
				// values until each entry is replaced.
				go s.Resources.RefreshAll(context.Background(), true)
			},
			Docs: s.Docs.HandleContext,
		})
		if err != nil {
			if err == prompt.ErrInterrupted {
				continue
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		modes.set(result.FuzzyEnabled, result.ShortcutEnabled)

		if result.Exit {
			s.Logger.Info("exiting session", zap.String("session_id", sessionID))
			s.persistModes(modes)
			return nil
		}

		line := strings.TrimSpace(result.Line)
		if line == "" {
			continue
		}

		_, shortcutOn = modes.get()
		if shortcutOn {
			line = s.Shortcuts.Expand(line)
		}

		if s.Docs.Handle(line) {
			continue
		}

		line, ok := s.normalizeCommand(line)
		if !ok {
			continue
		}

		if _, err := s.History.Append(line, sessionID); err != nil {
			s.Logger.Warn("error recording history", zap.Error(err))
		}

		if err := s.execute(ctx, colorize(line, s.Config.ColorOutput)); err != nil {
			fmt.Fprintf(os.Stderr, "sawsh: %v\n", err)
		}
	}
}

// persistModes writes the session's final mode toggles back to the config
// file so they survive into the next session.
func (s *Shell) persistModes(modes *modeState) {
	fuzzy, shortcutOn := modes.get()
	if fuzzy == s.Config.FuzzyMatch && shortcutOn == s.Config.ShortcutMatch {
		return
	}
	s.Config.FuzzyMatch = fuzzy
	s.Config.ShortcutMatch = shortcutOn
	if err := config.Save(s.Config, config.DefaultPath()); err != nil {
		s.Logger.Warn("failed to persist mode toggles", zap.Error(err))
	}
}

func (s *Shell) recentCommands() ([]string, error) {
	entries, err := s.History.Recent(historySize)
	if err != nil {
		return nil, err
	}
	commands := make([]string, len(entries))
	for i, entry := range entries {
		commands[i] = entry.Command
	}
	return commands, nil
}

// historyByPrefix backs the prompt's prefix-filtered history navigation.
func (s *Shell) historyByPrefix(prefix string) []string {
	entries, err := s.History.RecentByPrefix(prefix, historySize)
	if err != nil {
		s.Logger.Warn("error searching history", zap.Error(err))
		return nil
	}
	commands := make([]string, len(entries))
	for i, entry := range entries {
		commands[i] = entry.Command
	}
	return commands
}

func (s *Shell) cacheAge() string {
	last := s.Resources.LastRefresh()
	if last.IsZero() {
		return ""
	}
	return "refreshed " + humanize.Time(last)
}

// normalizeCommand ensures line is an invocation of the root command. A
// known top-level command may be typed without the root prefix; anything
// else prints the usage error the real CLI would.
func (s *Shell) normalizeCommand(line string) (string, bool) {
	tokens := strings.Fields(line)
	root := s.Store.Root()

	switch {
	case tokens[0] == root:
		if len(tokens) == 1 {
			fmt.Fprintln(os.Stderr, usageLine)
			fmt.Fprintln(os.Stderr, tooFewArgsMsg)
			return "", false
		}
		return line, true
	case s.Store.IsCommand(tokens[0]):
		return root + " " + line, true
	default:
		fmt.Fprintln(os.Stderr, usageLine)
		fmt.Fprintf(os.Stderr, "aws: error: argument command: Invalid choice: %q\n", tokens[0])
		return "", false
	}
}

// colorize pipes JSON-producing invocations through a pretty-printer.
// Help, configure and lines already carrying a pipe stay untouched.
func colorize(line string, colorOn bool) string {
	if !colorOn {
		return line
	}
	for _, token := range strings.Fields(line) {
		if token == "help" || token == "configure" || token == "docs" || strings.Contains(token, "|") {
			return line
		}
	}
	return line + prettyPrintPipe
}

func (s *Shell) execute(ctx context.Context, line string) error {
	var prog *syntax.Stmt
	err := syntax.NewParser().Stmts(strings.NewReader(line), func(stmt *syntax.Stmt) bool {
		prog = stmt
		return false
	})
	if err != nil {
		return fmt.Errorf("failed to parse command: %w", err)
	}
	if prog == nil {
		s.Logger.Error("invalid command", zap.String("command", line))
		return nil
	}

	if err := s.Runner.Run(ctx, prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			s.Logger.Debug("command exited",
				zap.String("command", line), zap.Int("exit_code", int(status)))
			return nil
		}
		return err
	}
	return nil
}
