package authors

import (
	"unicode"

	"github.com/agext/levenshtein"
)

// maxCost is the edit budget for a known name.
const maxCost = 1

// candidateEnds returns the prefix lengths of a text of length n that can
// be within maxCost edits of k.
func (k knownName) candidateEnds(n int) []int {
	l := len(k.lower)
	out := make([]int, 0, 2*maxCost+1)
	for end := l - maxCost; end <= l+maxCost; end++ {
		if end > 0 && end <= n {
			out = append(out, end)
		}
	}
	return out
}

// distanceTo returns the exact edit distance; candidateEnds already limits
// the prefix lengths tried.
func (k knownName) distanceTo(prefix []rune) (int, bool) {
	d := levenshtein.Distance(string(prefix), string(k.lower), nil)
	return d, d <= maxCost
}

// lowerRunes lowercases rune by rune so offsets stay aligned with the
// original text.
func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}
