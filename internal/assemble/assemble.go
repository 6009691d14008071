// Package assemble groups classified paragraphs into raw citation records.
package assemble

import (
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/model"
)

// Assemble walks classified paragraphs once and returns one record per
// CitationStart paragraph. A Keyword paragraph sets the heading attached to
// every following citation. Amendment paragraphs are appended to the open
// citation; an amendment with no open citation is logged and dropped.
func Assemble(paragraphs []model.Paragraph) []model.Record {
	var (
		records []model.Record
		open    *model.Record
		heading string
		hasHead bool
	)

	flush := func() {
		if open != nil {
			records = append(records, *open)
			open = nil
		}
	}

	for _, p := range paragraphs {
		switch p.Role {
		case model.RoleKeyword:
			heading, hasHead = p.Text, true
		case model.RoleCitationStart:
			flush()
			open = &model.Record{
				Volume:        p.Volume,
				OriginalIndex: p.OriginalIndex,
				RawText:       p.Text,
			}
			if hasHead {
				open.Keywords = []string{heading}
			}
		case model.RoleAmendment:
			if open == nil {
				zap.L().Warn("assemble: amendment without citation",
					zap.String("volume", p.Volume),
					zap.Int("index", p.OriginalIndex),
					zap.String("text", p.Text),
				)
				continue
			}
			open.Amendments = append(open.Amendments, p.Text)
		}
	}
	flush()

	return records
}
