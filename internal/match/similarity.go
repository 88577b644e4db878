package match

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// levenshteinRatio converts edit distance into a 0-100 similarity. When one
// string contains the other, the ratio of their lengths is used instead, which
// rewards abbreviations like "USG ABD" against "USG ABDOME TOTAL".
func levenshteinRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	lenA, lenB := len([]rune(a)), len([]rune(b))
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return float64(min(lenA, lenB)) / float64(max(lenA, lenB)) * 100
	}
	distance := levenshtein.ComputeDistance(a, b)
	maxLen := max(lenA, lenB)
	return float64(maxLen-distance) / float64(maxLen) * 100
}

// tokenSortRatio compares the two names with their words sorted, so word
// order differences do not count against the score.
func tokenSortRatio(a, b string) float64 {
	return levenshteinRatio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Similarity is the composite score used for fuzzy candidate ranking: the best
// of plain edit-distance similarity and token-order-insensitive similarity.
func Similarity(a, b string) float64 {
	return max(levenshteinRatio(a, b), tokenSortRatio(a, b))
}
