package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyFilter_Subsequence(t *testing.T) {
	candidates := []string{"describe-instances", "create-volume", "start-instances"}

	matches := FuzzyFilter("dsi", candidates)
	assert.Equal(t, []string{"describe-instances"}, matches)
}

func TestFuzzyFilter_CaseInsensitive(t *testing.T) {
	matches := FuzzyFilter("DSI", []string{"describe-instances"})
	assert.Equal(t, []string{"describe-instances"}, matches)
}

func TestFuzzyFilter_ShorterCandidatesRankFirst(t *testing.T) {
	matches := FuzzyFilter("ls", []string{"list-subscriptions", "ls", "list-stacks"})
	assert.Equal(t, []string{"ls", "list-stacks", "list-subscriptions"}, matches)
}

func TestFuzzyFilter_LexicographicTieBreak(t *testing.T) {
	// Same length, same match positions: alphabetical order decides.
	matches := FuzzyFilter("ab", []string{"abdd", "abcc"})
	assert.Equal(t, []string{"abcc", "abdd"}, matches)
}

func TestFuzzyFilter_NoMatchIsEmpty(t *testing.T) {
	assert.Empty(t, FuzzyFilter("xyz", []string{"describe-instances"}))
	assert.Empty(t, FuzzyFilter("", []string{"describe-instances"}))
}

func TestFuzzyFilter_Deterministic(t *testing.T) {
	candidates := []string{"stop-instances", "start-instances", "describe-instance-status"}
	first := FuzzyFilter("stin", candidates)
	second := FuzzyFilter("stin", candidates)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestIsSubsequence(t *testing.T) {
	assert.True(t, isSubsequence("dsi", "describe-instances"))
	assert.True(t, isSubsequence("", "anything"))
	assert.False(t, isSubsequence("dsi", "create-volume"))
	assert.False(t, isSubsequence("instances", "inst"))
}

func TestFuzzyFilter_MultibyteInput(t *testing.T) {
	// Input characters outside ASCII must match by rune, not by byte.
	matches := FuzzyFilter("ïl", []string{"naïve-list", "create-volume"})
	assert.Equal(t, []string{"naïve-list"}, matches)

	assert.True(t, isSubsequence("Ïl", "naïve-list"))
	assert.False(t, isSubsequence("ïx", "naïve-list"))
}
