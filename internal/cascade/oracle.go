package cascade

import (
	"regexp"
	"strings"
)

var fullyParsedRe = regexp.MustCompile(`^(?:\{\{\{\s*\w+\s*\}\}\}[.,\s]*)+$`)

// FullyParsed reports whether remaining consists only of field markers
// separated by periods, commas and whitespace. Leading and trailing
// whitespace is ignored.
func FullyParsed(remaining string) bool {
	return fullyParsedRe.MatchString(strings.TrimSpace(remaining))
}
