package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const similarityThreshold = 0.5

// RelativelySimilar reports whether two manufacturer strings plausibly name
// the same thing, e.g. "WURTH ELECTRONICS INC (VA)" and "Würth Elektronik".
// Distributors spell manufacturer names inconsistently, so the bar is low.
func RelativelySimilar(a, b string) bool {
	return similarityRatio(normalizeName(a), normalizeName(b)) >= similarityThreshold
}

func normalizeName(s string) string {
	s = strings.TrimSpace(cases.Lower(language.Und).String(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.Map(func(r rune) rune {
		if r == ' ' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, s)
}

// similarityRatio is the normalised indel similarity: 2*LCS / (len(a)+len(b)).
// Two empty strings are identical.
func similarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return float64(2*lcsLength(ra, rb)) / float64(total)
}

func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
