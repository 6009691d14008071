package fields

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/model"
)

// ParseTAReferences parses "s. TA 5.1496, 6.1621" into references.
func ParseTAReferences(s string) []model.TAReference {
	s = strings.TrimPrefix(s, "s. TA ")
	if s == "" {
		return nil
	}
	var out []model.TAReference
	for _, part := range strings.Split(s, ", ") {
		volume, number, ok := strings.Cut(part, ".")
		n, err := strconv.Atoi(strings.TrimSpace(number))
		if !ok || err != nil {
			zap.L().Debug("fields: skipping malformed TA reference", zap.String("reference", part))
			continue
		}
		out = append(out, model.TAReference{Volume: strings.TrimSpace(volume), Number: n})
	}
	return out
}
