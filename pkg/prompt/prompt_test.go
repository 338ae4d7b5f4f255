package prompt

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplyCompletion(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		partial    string
		completion string
		want       string
	}{
		{
			name:       "empty line",
			line:       "",
			partial:    "",
			completion: "ec2",
			want:       "ec2",
		},
		{
			name:       "single partial word",
			line:       "ec",
			partial:    "ec",
			completion: "ec2",
			want:       "ec2",
		},
		{
			name:       "trailing partial word",
			line:       "ec2 descr",
			partial:    "descr",
			completion: "describe-instances",
			want:       "ec2 describe-instances",
		},
		{
			name:       "line ending in space appends",
			line:       "ec2 ",
			partial:    "",
			completion: "describe-instances",
			want:       "ec2 describe-instances",
		},
		{
			name:       "complete token gains a new word",
			line:       "ec2",
			partial:    "",
			completion: "describe-instances",
			want:       "ec2 describe-instances",
		},
		{
			name:       "complete token mid-line gains a new word",
			line:       "aws ec2 describe-instances",
			partial:    "",
			completion: "--instance-ids",
			want:       "aws ec2 describe-instances --instance-ids",
		},
		{
			name:       "option value",
			line:       "ec2 describe-instances --instance-state-name ru",
			partial:    "ru",
			completion: "running",
			want:       "ec2 describe-instances --instance-state-name running",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyCompletion(tt.line, tt.partial, tt.completion))
		})
	}
}

type listProvider struct {
	candidates []string
	partial    string
}

func (p *listProvider) Completions(string) ([]string, string) { return p.candidates, p.partial }

func updateKey(t *testing.T, m appModel, key tea.KeyType) appModel {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: key})
	next, ok := updated.(appModel)
	require.True(t, ok)
	return next
}

func TestModel_ToggleKeysFlipModes(t *testing.T) {
	m := initialModel(zap.NewNop(), Options{FuzzyEnabled: true, ShortcutEnabled: true})

	m = updateKey(t, m, tea.KeyF2)
	assert.False(t, m.fuzzyEnabled)
	assert.True(t, m.shortcutEnabled)

	m = updateKey(t, m, tea.KeyF3)
	assert.False(t, m.shortcutEnabled)

	m = updateKey(t, m, tea.KeyF2)
	assert.True(t, m.fuzzyEnabled)
}

func TestModel_TabCyclesCompletions(t *testing.T) {
	provider := &listProvider{candidates: []string{"describe-instances", "describe-volumes"}, partial: "descr"}
	m := initialModel(zap.NewNop(), Options{CompletionProvider: provider})
	m.textInput.SetValue("ec2 descr")

	m = updateKey(t, m, tea.KeyTab)
	assert.True(t, m.menuOpen)
	assert.Equal(t, "ec2 describe-instances", m.textInput.Value())

	m = updateKey(t, m, tea.KeyTab)
	assert.Equal(t, "ec2 describe-volumes", m.textInput.Value())

	// Cycling wraps around.
	m = updateKey(t, m, tea.KeyTab)
	assert.Equal(t, "ec2 describe-instances", m.textInput.Value())
}

func TestModel_SingleCandidateAppliesWithoutMenu(t *testing.T) {
	provider := &listProvider{candidates: []string{"describe-instances"}, partial: "descri"}
	m := initialModel(zap.NewNop(), Options{CompletionProvider: provider})
	m.textInput.SetValue("ec2 descri")

	m = updateKey(t, m, tea.KeyTab)
	assert.False(t, m.menuOpen)
	assert.Equal(t, "ec2 describe-instances", m.textInput.Value())
}

func TestModel_TabAfterCompleteTokenKeepsIt(t *testing.T) {
	// An exactly typed token yields an empty partial: candidates extend
	// the line instead of replacing the token just typed.
	provider := &listProvider{candidates: []string{"describe-instances", "describe-volumes"}}
	m := initialModel(zap.NewNop(), Options{CompletionProvider: provider})
	m.textInput.SetValue("ec2")

	m = updateKey(t, m, tea.KeyTab)
	assert.True(t, m.menuOpen)
	assert.Equal(t, "ec2 describe-instances", m.textInput.Value())

	m = updateKey(t, m, tea.KeyTab)
	assert.Equal(t, "ec2 describe-volumes", m.textInput.Value())
}

func TestModel_EscClosesMenu(t *testing.T) {
	provider := &listProvider{candidates: []string{"describe-instances", "describe-volumes"}, partial: "descr"}
	m := initialModel(zap.NewNop(), Options{CompletionProvider: provider})
	m.textInput.SetValue("ec2 descr")

	m = updateKey(t, m, tea.KeyTab)
	require.True(t, m.menuOpen)

	m = updateKey(t, m, tea.KeyEsc)
	assert.False(t, m.menuOpen)
}

func TestModel_HistoryNavigation(t *testing.T) {
	m := initialModel(zap.NewNop(), Options{History: []string{"s3 ls", "ec2 describe-instances"}})

	m = updateKey(t, m, tea.KeyUp)
	assert.Equal(t, "ec2 describe-instances", m.textInput.Value())

	m = updateKey(t, m, tea.KeyUp)
	assert.Equal(t, "s3 ls", m.textInput.Value())

	m = updateKey(t, m, tea.KeyDown)
	assert.Equal(t, "ec2 describe-instances", m.textInput.Value())

	// Returning below the newest entry restores the in-progress line.
	m = updateKey(t, m, tea.KeyDown)
	assert.Equal(t, "", m.textInput.Value())
}

func TestModel_PrefixHistoryNavigation(t *testing.T) {
	m := initialModel(zap.NewNop(), Options{
		History: []string{"s3 ls", "ec2 describe-instances", "ec2 describe-volumes"},
		PrefixHistory: func(prefix string) []string {
			require.Equal(t, "ec2", prefix)
			return []string{"ec2 describe-instances", "ec2 describe-volumes"}
		},
	})
	m.textInput.SetValue("ec2")

	// Up on a non-empty line walks only the matching entries.
	m = updateKey(t, m, tea.KeyUp)
	assert.Equal(t, "ec2 describe-volumes", m.textInput.Value())

	m = updateKey(t, m, tea.KeyUp)
	assert.Equal(t, "ec2 describe-instances", m.textInput.Value())

	// Walking past the oldest match stops there.
	m = updateKey(t, m, tea.KeyUp)
	assert.Equal(t, "ec2 describe-instances", m.textInput.Value())

	m = updateKey(t, m, tea.KeyDown)
	m = updateKey(t, m, tea.KeyDown)
	assert.Equal(t, "ec2", m.textInput.Value())
}

func TestModel_CtrlDOnEmptyLineExits(t *testing.T) {
	m := initialModel(zap.NewNop(), Options{})

	m = updateKey(t, m, tea.KeyCtrlD)
	assert.True(t, m.exit)
}
