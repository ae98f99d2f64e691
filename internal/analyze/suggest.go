// Package analyze provides similarity ranking used to suggest known command
// and flag names for mistyped input.
package analyze

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Suggestion pairs a known name with its similarity score (0-1, higher is better).
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// DefaultThreshold is the minimum similarity score for a suggestion to be returned.
const DefaultThreshold = 0.5

// DefaultTopN is the maximum number of suggestions returned.
const DefaultTopN = 3

// Suggest returns known names similar to name, ranked by similarity score.
// Only suggestions scoring at least DefaultThreshold are returned, up to DefaultTopN results.
func Suggest(name string, known []string) []Suggestion {
	return SuggestN(name, known, DefaultTopN, DefaultThreshold)
}

// SuggestN returns up to topN known names similar to name, with score >= threshold.
// Ties keep the order of known.
func SuggestN(name string, known []string, topN int, threshold float64) []Suggestion {
	if name == "" || len(known) == 0 {
		return nil
	}

	normName := normalize(name)
	var results []Suggestion
	for _, k := range known {
		score := similarity(normName, normalize(k))
		if score >= threshold {
			results = append(results, Suggestion{Name: k, Score: score})
		}
	}

	slices.SortStableFunc(results, func(a, b Suggestion) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}

// Closest returns the best suggestion for name, if any clears DefaultThreshold.
func Closest(name string, known []string) (string, bool) {
	s := SuggestN(name, known, 1, DefaultThreshold)
	if len(s) == 0 {
		return "", false
	}
	return s[0].Name, true
}

// similarity computes the overall similarity between two normalized strings.
// It combines Levenshtein distance with prefix/suffix bonuses.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0.0
	}

	maxLen := max(la, lb)
	dist := levenshtein.ComputeDistance(a, b)
	lev := 1.0 - float64(dist)/float64(maxLen)

	// Prefix bonus: proportion of shared prefix, weighted at 0.1.
	prefixBonus := 0.1 * float64(commonPrefixLen(a, b)) / float64(maxLen)

	// Suffix bonus: proportion of shared suffix, weighted at 0.05.
	suffixBonus := 0.05 * float64(commonSuffixLen(a, b)) / float64(maxLen)

	return min(lev+prefixBonus+suffixBonus, 1.0)
}

// normalize lowercases s, strips leading dashes, and turns the word
// separators '_' and '-' and camelCase boundaries into single spaces.
func normalize(s string) string {
	runes := []rune(strings.TrimLeft(s, "-"))
	var parts []string
	var current []rune

	for i, r := range runes {
		switch {
		case r == '_' || r == '-':
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = current[:0]
			}
		case unicode.IsUpper(r):
			if len(current) > 0 && i > 0 && unicode.IsLower(runes[i-1]) {
				parts = append(parts, string(current))
				current = current[:0]
			}
			current = append(current, unicode.ToLower(r))
		default:
			current = append(current, r)
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return strings.Join(parts, " ")
}

// commonPrefixLen returns the number of leading runes a and b share.
func commonPrefixLen(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb))
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			return i
		}
	}
	return n
}

// commonSuffixLen returns the number of trailing runes a and b share.
func commonSuffixLen(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb))
	for i := 0; i < n; i++ {
		if ra[len(ra)-1-i] != rb[len(rb)-1-i] {
			return i
		}
	}
	return n
}
