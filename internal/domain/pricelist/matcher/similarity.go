package matcher

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// codeSimilarity scores two product codes on 0-100. It takes the best of a
// containment score, a Levenshtein ratio and a subsequence rank, so
// "SOLAR-550W" and "SOLAR550W" still score high.
func codeSimilarity(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)

	// One contains the other: supplier suffixes and prefixes
	if strings.Contains(a, b) {
		return 75 + 25*lb/la
	}
	if strings.Contains(b, a) {
		return 75 + 25*la/lb
	}

	score := levenshteinRatio(a, b)

	// Subsequence match: characters of the shorter code appear in order in
	// the longer one. The rank is the edit distance between them.
	short, long, longLen := a, b, lb
	if la > lb {
		short, long, longLen = b, a, la
	}
	if rank := fuzzy.RankMatch(short, long); rank >= 0 && rank < longLen {
		score = max(score, 60-rank*40/longLen)
	}
	return score
}

// nameSimilarity is a token-set ratio on 0-100: word order, duplicates and
// punctuation are ignored and a name whose words are a subset of the other's
// scores 100.
func nameSimilarity(a, b string) int {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	inB := make(map[string]bool, len(tb))
	for _, t := range tb {
		inB[t] = true
	}
	for _, t := range ta {
		if inB[t] {
			common = append(common, t)
			delete(inB, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range tb {
		if inB[t] {
			onlyB = append(onlyB, t)
		}
	}

	sect := strings.Join(common, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := levenshteinRatio(combinedA, combinedB)
	if sect != "" {
		best = max(best, levenshteinRatio(sect, combinedA), levenshteinRatio(sect, combinedB))
	}
	return best
}

// tokenSet lowercases s, treats anything that is not a letter or digit as a
// separator and returns the sorted distinct words.
func tokenSet(s string) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(words))
	out := words[:0]
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// levenshteinRatio converts edit distance into a 0-100 similarity.
func levenshteinRatio(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 0
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return 100 * (maxLen - distance) / maxLen
}
