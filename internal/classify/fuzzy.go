package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// withinDistance reports whether the edit distance between a and b is at
// most maxCost. The distance is computed exactly: with a MaxCost param the
// library returns a lower bound, which can fall within budget for strings
// that are far apart.
func withinDistance(a, b string, maxCost int) bool {
	d := utf8.RuneCountInString(a) - utf8.RuneCountInString(b)
	if d > maxCost || -d > maxCost {
		return false
	}
	return levenshtein.Distance(a, b, nil) <= maxCost
}

const footerPhrase = "Turkologischer Anzeiger"

// footerMaxCost is the edit budget for running page footers.
const footerMaxCost = 2

// isPageFooter reports whether text is a running page footer such as
// "112 Turkologischer Anzeiger" or "Turkologischer Anzeiger 113".
func isPageFooter(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	if rest := strings.TrimLeftFunc(text, unicode.IsDigit); rest != text && startsWithSpace(rest) {
		if withinDistance(strings.TrimSpace(rest), footerPhrase, footerMaxCost) {
			return true
		}
	}
	if rest := strings.TrimRightFunc(text, unicode.IsDigit); rest != text && endsWithSpace(rest) {
		if withinDistance(strings.TrimSpace(rest), footerPhrase, footerMaxCost) {
			return true
		}
	}
	return false
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
