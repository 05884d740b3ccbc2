package fuzzy

import (
	"strings"
	"unicode"
)

// LevenshteinDistance calculates the edit distance between two strings
// after normalization.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(NormalizeTitle(s1))
	r2 := []rune(NormalizeTitle(s2))

	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// NormalizeTitle lowercases, drops punctuation and collapses whitespace so
// that "Office Laptops - 2025" and "office laptops 2025" compare equal.
func NormalizeTitle(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// BestTitleMatch returns the index of the candidate that matches title.
// An exact normalized match wins; otherwise the closest candidate within
// threshold edits is used. Ambiguous or missing matches return -1.
func BestTitleMatch(title string, candidates []string, threshold int) int {
	want := NormalizeTitle(title)
	if want == "" {
		return -1
	}

	exact := -1
	for i, c := range candidates {
		if NormalizeTitle(c) == want {
			if exact != -1 {
				return -1
			}
			exact = i
		}
	}
	if exact != -1 {
		return exact
	}

	best, bestDist, tie := -1, threshold+1, false
	for i, c := range candidates {
		d := LevenshteinDistance(want, c)
		switch {
		case d < bestDist:
			best, bestDist, tie = i, d, false
		case d == bestDist:
			tie = true
		}
	}
	if best == -1 || tie {
		return -1
	}
	return best
}
