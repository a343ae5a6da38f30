package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MatchKind reports which stage of BestMatch found the candidate
type MatchKind int

const (
	NoMatch MatchKind = iota
	ExactMatch
	NormalizedMatch
	ContainsMatch
	EditDistanceMatch
)

// Normalize folds width and compatibility forms (NFKC), lowercases, drops
// surrounding quote brackets and collapses whitespace. "ＡＢＣ　会議" and
// "abc 会議" normalize to the same string.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(`"'「」『』`, r)
	})
	return strings.Join(strings.Fields(s), " ")
}

// LevenshteinDistance calculates the edit distance between two strings in runes.
// This measures how many single-character edits (insertions, deletions, or substitutions)
// are required to change one string into another
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// two rolling rows
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// Threshold is the largest edit distance accepted for a string of this
// length: one edit per four runes, at most three. Titles shorter than four
// runes never match by edit distance.
func Threshold(s string) int {
	return min(len([]rune(s))/4, 3)
}

// BestMatch finds the candidate a model most likely meant by query.
// Stages run in order: exact, normalized, unique containment, then smallest
// edit distance within the Threshold of both the query and the candidate.
// A tie at any fuzzy stage is no match.
func BestMatch(query string, candidates []string) (int, MatchKind) {
	for i, c := range candidates {
		if c == query {
			return i, ExactMatch
		}
	}

	nq := Normalize(query)
	if nq == "" {
		return -1, NoMatch
	}
	normalized := make([]string, len(candidates))
	for i, c := range candidates {
		normalized[i] = Normalize(c)
		if normalized[i] == nq {
			return i, NormalizedMatch
		}
	}

	found := -1
	for i, nc := range normalized {
		if nc == "" {
			continue
		}
		if strings.Contains(nc, nq) || strings.Contains(nq, nc) {
			if found >= 0 {
				found = -2
				break
			}
			found = i
		}
	}
	if found >= 0 {
		return found, ContainsMatch
	}

	best, bestDist, tie := -1, Threshold(nq)+1, false
	for i, nc := range normalized {
		d := LevenshteinDistance(nq, nc)
		if d > Threshold(nc) {
			continue
		}
		switch {
		case d < bestDist:
			best, bestDist, tie = i, d, false
		case d == bestDist && best >= 0:
			tie = true
		}
	}
	if best < 0 || tie {
		return -1, NoMatch
	}
	return best, EditDistanceMatch
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
