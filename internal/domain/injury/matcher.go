package injury

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// NameMatcher decides whether a normalized player name matches a table fragment.
type NameMatcher interface {
	Match(name, fragment string) bool
}

// SubstringMatcher matches when the fragment occurs anywhere in the name.
type SubstringMatcher struct{}

// Match implements NameMatcher.
func (SubstringMatcher) Match(name, fragment string) bool {
	return fragment != "" && strings.Contains(name, fragment)
}

// FuzzyMatcher extends substring matching with per-token Levenshtein
// similarity, so misspelled feed names ("Jokic" as "Jokik") still match.
type FuzzyMatcher struct {
	Threshold float64 // minimum similarity in (0, 1]
}

// Match implements NameMatcher.
func (m FuzzyMatcher) Match(name, fragment string) bool {
	if (SubstringMatcher{}).Match(name, fragment) {
		return true
	}
	for _, token := range strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == '-' || r == '.' }) {
		if Similarity(token, fragment) >= m.Threshold {
			return true
		}
	}
	return false
}

// Similarity is 1 minus the Levenshtein distance scaled by the longer length.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(longest)
}
