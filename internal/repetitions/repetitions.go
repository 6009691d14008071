// Package repetitions links citations that repeat an entry of an earlier
// volume ("s. TA 5.1496") to the entry they repeat.
package repetitions

import (
	"slices"

	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/model"
)

// Link resolves the first TA reference of every citation. When the
// referenced citation exists, it receives the comments, amendments and
// reviews of the repetition, and the repetition is typed as such.
// Unresolved references are left alone. Link returns updated copies and
// the number of resolved links; running it twice changes nothing.
func Link(citations []model.Citation) ([]model.Citation, int) {
	out := slices.Clone(citations)

	index := make(map[model.Key]int, len(out))
	for i, c := range out {
		if _, dup := index[c.Key()]; !dup {
			index[c.Key()] = i
		}
	}

	links := 0
	for i := range citations {
		rep := citations[i]
		if len(rep.TAReferences) == 0 {
			continue
		}
		ref := rep.TAReferences[0]
		target, ok := index[model.Key{Volume: ref.Volume, Number: ref.Number}]
		if !ok || target == i {
			continue
		}

		t := &out[target]
		t.Comments = appendMissing(t.Comments, rep.Comments)
		t.Amendments = appendMissing(t.Amendments, rep.Amendments)
		t.Reviews = appendMissing(t.Reviews, rep.Reviews)
		out[i].Type = model.CitationTypeRepetition
		links++
	}

	zap.L().Info("repetitions: linked",
		zap.Int("citations", len(out)),
		zap.Int("links", links),
	)
	return out, links
}

// appendMissing appends the values of add not yet in dst. dst is copied
// before the first append so the input citations never change.
func appendMissing(dst, add []string) []string {
	copied := false
	for _, v := range add {
		if slices.Contains(dst, v) {
			continue
		}
		if !copied {
			dst = slices.Clone(dst)
			copied = true
		}
		dst = append(dst, v)
	}
	return dst
}
