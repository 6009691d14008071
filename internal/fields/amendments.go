package fields

import (
	"strings"

	"github.com/sells-group/turkology-cli/internal/pattern"
)

var (
	bulletPrefix    = pattern.MustCompile(`^[•φ#0Φ]\s+`, pattern.None)
	reviewPrefix    = pattern.MustCompile(`^Rez\. *`, pattern.None)
	reviewSeparator = pattern.MustCompile(`\s+—\s+`, pattern.None)
)

// SplitAmendments sorts amendment paragraphs into reviews and other
// amendments. Bullets are stripped; "Rez." paragraphs are split into one
// review per dash-separated entry.
func SplitAmendments(texts []string) (reviews, amendments []string) {
	for _, text := range texts {
		if text == "" {
			continue
		}
		text = bulletPrefix.ReplacePrefix(text, "")
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "Rez.") {
			reviews = append(reviews, reviewSeparator.Split(reviewPrefix.ReplacePrefix(text, ""))...)
			continue
		}
		amendments = append(amendments, text)
	}
	return reviews, amendments
}

// SplitReviews splits a review list on " — ".
func SplitReviews(s string) []string {
	if s == "" {
		return nil
	}
	return reviewSeparator.Split(s)
}
