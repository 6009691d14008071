// Package ids assigns stable citation ids.
package ids

import (
	"fmt"
	"slices"

	"github.com/sells-group/turkology-cli/internal/model"
)

// Assign gives every citation the id "<volume>-<number>". OCR errors and
// corrigenda occasionally repeat a number within a volume; the n-th repeat
// gets the suffix "-n". Citations are numbered in slice order.
func Assign(citations []model.Citation) []model.Citation {
	out := slices.Clone(citations)
	seen := make(map[model.Key]int, len(out))
	for i := range out {
		key := out[i].Key()
		id := fmt.Sprintf("%s-%d", key.Volume, key.Number)
		if n := seen[key]; n > 0 {
			id = fmt.Sprintf("%s-%d", id, n)
		}
		seen[key]++
		out[i].ID = id
	}
	return out
}
