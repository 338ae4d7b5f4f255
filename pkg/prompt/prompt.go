// Package prompt is the interactive editing surface: a single-line input
// with tab completion, a candidate menu, mode toggles and a status
// toolbar.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// CompletionProvider supplies completion candidates for a partial input
// line, together with the in-progress word the candidates replace. An
// empty partial means the candidates start a new word: the line's trailing
// token is already complete and must not be overwritten.
type CompletionProvider interface {
	Completions(line string) (candidates []string, partial string)
}

// ErrInterrupted is returned when the user presses Ctrl+C.
var ErrInterrupted = errors.New("interrupted by user")

// Options configures a single prompt invocation.
type Options struct {
	Prompt             string
	History            []string
	CompletionProvider CompletionProvider

	// PrefixHistory returns stored lines starting with prefix, oldest
	// first. When set, pressing Up on a non-empty line walks only the
	// entries matching what has been typed so far.
	PrefixHistory func(prefix string) []string

	// Mode flags shown in the toolbar; the returned Result carries their
	// possibly toggled values back to the caller.
	FuzzyEnabled    bool
	ShortcutEnabled bool

	// ModeChanged is invoked whenever a toggle key flips a mode flag, so
	// the completion provider can pick the new modes up mid-edit.
	ModeChanged func(fuzzy, shortcut bool)

	// CacheAge renders the resource cache freshness for the toolbar.
	CacheAge func() string
	// Refresh is invoked on the refresh key binding.
	Refresh func()
	// Docs is invoked on the docs key binding with the current line.
	Docs func(line string)
}

// Result is the outcome of one prompt read.
type Result struct {
	Line            string
	FuzzyEnabled    bool
	ShortcutEnabled bool
	// Exit is set when the user asked to leave the shell.
	Exit bool
}

const maxMenuRows = 10

type appModel struct {
	logger  *zap.Logger
	options Options

	textInput textinput.Model

	fuzzyEnabled    bool
	shortcutEnabled bool

	history      []string
	historyIndex int
	savedLine    string
	// navHistory is the list being walked: the full history, or the
	// prefix-filtered slice when navigation started on a non-empty line.
	// Nil until the first Up/Down press; editing the line clears it.
	navHistory []string

	completions     []string
	completionIndex int
	menuOpen        bool
	// completionBase and completionPartial are the line and its resolved
	// in-progress word as they stood when the menu opened, so cycling
	// replaces the same trailing word every time.
	completionBase    string
	completionPartial string

	result      string
	exit        bool
	interrupted bool

	toolbarStyle  lipgloss.Style
	menuStyle     lipgloss.Style
	selectedStyle lipgloss.Style
}

func initialModel(logger *zap.Logger, options Options) appModel {
	ti := textinput.New()
	ti.Prompt = options.Prompt
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	return appModel{
		logger:          logger,
		options:         options,
		textInput:       ti,
		fuzzyEnabled:    options.FuzzyEnabled,
		shortcutEnabled: options.ShortcutEnabled,
		history:         options.History,
		historyIndex:    len(options.History),

		toolbarStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		menuStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			PaddingLeft(2),
		selectedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			PaddingLeft(2),
	}
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC:
		m.interrupted = true
		return m, tea.Quit

	case tea.KeyCtrlD:
		if m.textInput.Value() == "" {
			m.exit = true
			return m, tea.Quit
		}

	case tea.KeyEnter:
		m.result = m.textInput.Value()
		return m, tea.Quit

	case tea.KeyEsc:
		m.closeMenu()
		return m, nil

	case tea.KeyTab:
		if m.menuOpen {
			m.cycleCompletion(1)
			return m, nil
		}
		return m.openMenu(), nil

	case tea.KeyShiftTab:
		if m.menuOpen {
			m.cycleCompletion(-1)
		}
		return m, nil

	case tea.KeyUp:
		if m.menuOpen {
			m.cycleCompletion(-1)
			return m, nil
		}
		m.navigateHistory(-1)
		return m, nil

	case tea.KeyDown:
		if m.menuOpen {
			m.cycleCompletion(1)
			return m, nil
		}
		m.navigateHistory(1)
		return m, nil

	case tea.KeyF2:
		m.fuzzyEnabled = !m.fuzzyEnabled
		m.notifyModeChanged()
		m.closeMenu()
		return m, nil

	case tea.KeyF3:
		m.shortcutEnabled = !m.shortcutEnabled
		m.notifyModeChanged()
		m.closeMenu()
		return m, nil

	case tea.KeyF5:
		if m.options.Refresh != nil {
			m.options.Refresh()
		}
		return m, nil

	case tea.KeyF9:
		if m.options.Docs != nil {
			m.options.Docs(m.textInput.Value())
		}
		return m, nil

	case tea.KeyF10:
		m.exit = true
		return m, tea.Quit
	}

	// Any other key edits the line, invalidating the open menu and any
	// in-progress history walk.
	m.closeMenu()
	m.navHistory = nil
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// openMenu fetches candidates for the current line. A single candidate is
// applied directly; multiple candidates open the menu with the first one
// applied.
func (m appModel) openMenu() appModel {
	if m.options.CompletionProvider == nil {
		return m
	}

	line := m.textInput.Value()
	candidates, partial := m.options.CompletionProvider.Completions(line)
	if len(candidates) == 0 {
		return m
	}

	if len(candidates) == 1 {
		m.setLine(applyCompletion(line, partial, candidates[0]))
		return m
	}

	m.completions = candidates
	m.completionIndex = 0
	m.completionBase = line
	m.completionPartial = partial
	m.menuOpen = true
	m.setLine(applyCompletion(m.completionBase, partial, candidates[0]))
	return m
}

func (m *appModel) cycleCompletion(delta int) {
	if len(m.completions) == 0 {
		return
	}
	m.completionIndex = (m.completionIndex + delta + len(m.completions)) % len(m.completions)
	m.setLine(applyCompletion(m.completionBase, m.completionPartial, m.completions[m.completionIndex]))
}

func (m *appModel) notifyModeChanged() {
	if m.options.ModeChanged != nil {
		m.options.ModeChanged(m.fuzzyEnabled, m.shortcutEnabled)
	}
}

func (m *appModel) closeMenu() {
	m.menuOpen = false
	m.completions = nil
	m.completionIndex = 0
	m.completionBase = ""
	m.completionPartial = ""
}

func (m *appModel) navigateHistory(delta int) {
	if m.navHistory == nil {
		m.savedLine = m.textInput.Value()
		m.navHistory = m.history
		if m.savedLine != "" && m.options.PrefixHistory != nil {
			m.navHistory = m.options.PrefixHistory(m.savedLine)
		}
		m.historyIndex = len(m.navHistory)
	}
	if len(m.navHistory) == 0 {
		return
	}

	next := m.historyIndex + delta
	if next < 0 || next > len(m.navHistory) {
		return
	}
	m.historyIndex = next

	if m.historyIndex == len(m.navHistory) {
		m.setLine(m.savedLine)
		return
	}
	m.setLine(m.navHistory[m.historyIndex])
}

func (m *appModel) setLine(line string) {
	m.textInput.SetValue(line)
	m.textInput.CursorEnd()
}

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(m.textInput.View())
	b.WriteString("\n")

	if m.menuOpen {
		b.WriteString(m.renderMenu())
	}

	b.WriteString(m.toolbarStyle.Render(m.renderToolbar()))
	return b.String()
}

func (m appModel) renderMenu() string {
	// Window the menu around the selection so long candidate lists stay
	// readable.
	start := 0
	if m.completionIndex >= maxMenuRows {
		start = m.completionIndex - maxMenuRows + 1
	}
	end := start + maxMenuRows
	if end > len(m.completions) {
		end = len(m.completions)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		if i == m.completionIndex {
			b.WriteString(m.selectedStyle.Render("> " + m.completions[i]))
		} else {
			b.WriteString(m.menuStyle.Render("  " + m.completions[i]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) renderToolbar() string {
	parts := []string{
		fmt.Sprintf("[F2] Fuzzy: %s", onOff(m.fuzzyEnabled)),
		fmt.Sprintf("[F3] Shortcuts: %s", onOff(m.shortcutEnabled)),
		"[F5] Refresh",
		"[F9] Docs",
		"[F10] Exit",
	}
	if m.options.CacheAge != nil {
		if age := m.options.CacheAge(); age != "" {
			parts = append(parts, "resources: "+age)
		}
	}
	return strings.Join(parts, "  ")
}

func onOff(enabled bool) string {
	if enabled {
		return "ON"
	}
	return "OFF"
}

// applyCompletion swaps line's trailing partial word for the chosen
// completion. With an empty partial the trailing token is already complete
// and the completion joins the line as a new word, so typing "ec2" and
// completing "describe-instances" yields "ec2 describe-instances".
func applyCompletion(line, partial, completion string) string {
	if partial != "" {
		// The partial is always a suffix of the line.
		return line[:len(line)-len(partial)] + completion
	}
	if line == "" {
		return completion
	}
	if trimmed := strings.TrimRight(line, " \t"); trimmed != line {
		return line + completion
	}
	return line + " " + completion
}

// Run reads one line from the user. Ctrl+C returns ErrInterrupted with an
// empty line; the shell loop treats it as "discard and re-prompt".
func Run(logger *zap.Logger, options Options) (Result, error) {
	p := tea.NewProgram(initialModel(logger, options))

	finalModel, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read input: %w", err)
	}

	m, ok := finalModel.(appModel)
	if !ok {
		logger.Error("prompt resulted in an unexpected model")
		panic("prompt resulted in an unexpected model")
	}

	result := Result{
		Line:            m.result,
		FuzzyEnabled:    m.fuzzyEnabled,
		ShortcutEnabled: m.shortcutEnabled,
		Exit:            m.exit,
	}
	if m.interrupted {
		result.Line = ""
		return result, ErrInterrupted
	}
	return result, nil
}
