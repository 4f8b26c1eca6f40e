// Package match scores how closely two names agree and picks the best
// directory user for a free-text owner name.
package match

import "strings"

// Scoring tiers. The values are empirical and kept tunable.
var (
	// ExactScore is awarded when both strings are equal.
	ExactScore = 1.0
	// PrefixScore is awarded when one string is a prefix of the other.
	PrefixScore = 0.85
	// SubstringScore is awarded when one string contains the other.
	SubstringScore = 0.75
	// MinConfidence is the lowest score that still counts as a match.
	MinConfidence = 0.45
)

// Score returns a similarity in [0,1] between a and b. The inputs are compared
// as given; callers fold case beforehand.
//
// Tiers, highest first: exact, prefix (either direction), substring (either
// direction), then 1 - levenshtein/maxLen measured in runes.
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return ExactScore
	}
	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		return PrefixScore
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return SubstringScore
	}

	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	dist := Levenshtein(ra, rb)

	// Same as 1-dist/longest, but 9/20 compares equal to 0.45.
	s := float64(longest-dist) / float64(longest)
	return clamp(s)
}

// Levenshtein returns the single-character insert/delete/substitute edit
// distance between a and b.
func Levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
