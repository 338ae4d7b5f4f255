package completion

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// FuzzyFilter returns the candidates that input matches as a
// case-insensitive subsequence: every character of input occurs in the
// candidate in order. Results are ranked by candidate length, then by how
// early the matched characters occur, then lexicographically, so the
// ordering is deterministic for identical inputs.
func FuzzyFilter(input string, candidates []string) []string {
	if input == "" {
		return nil
	}

	type ranked struct {
		value    string
		indexSum int
	}

	var matches []ranked
	for _, candidate := range candidates {
		if !isSubsequence(input, candidate) {
			continue
		}
		matches = append(matches, ranked{
			value:    candidate,
			indexSum: matchIndexSum(input, candidate),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if len(a.value) != len(b.value) {
			return len(a.value) < len(b.value)
		}
		if a.indexSum != b.indexSum {
			return a.indexSum < b.indexSum
		}
		return a.value < b.value
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.value
	}
	return out
}

// isSubsequence reports whether every character of input occurs in
// candidate in order, ignoring case.
func isSubsequence(input, candidate string) bool {
	runes := []rune(strings.ToLower(input))

	i := 0
	for _, r := range strings.ToLower(candidate) {
		if i < len(runes) && runes[i] == r {
			i++
		}
	}
	return i == len(runes)
}

// matchIndexSum scores how early input's characters occur in candidate
// using the matched index positions reported by the fuzzy matcher. Lower
// is earlier. Candidates the matcher cannot score fall back to a greedy
// leftmost scan.
func matchIndexSum(input, candidate string) int {
	results := fuzzy.Find(input, []string{candidate})
	if len(results) == 1 {
		sum := 0
		for _, idx := range results[0].MatchedIndexes {
			sum += idx
		}
		return sum
	}

	runes := []rune(strings.ToLower(input))
	sum := 0
	i := 0
	for pos, r := range strings.ToLower(candidate) {
		if i < len(runes) && runes[i] == r {
			sum += pos
			i++
		}
	}
	return sum
}
