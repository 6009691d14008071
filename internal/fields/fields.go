// Package fields turns the raw strings captured by the extraction cascade
// into structured citation values.
package fields

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/turkology-cli/internal/model"
)

// Build converts an extracted record into a Citation.
func Build(rec model.Record) (model.Citation, error) {
	number, err := strconv.Atoi(rec.Number)
	if err != nil {
		return model.Citation{}, eris.Wrapf(err, "fields: citation number %q", rec.Number)
	}

	var comment []string
	if rec.Comment != "" {
		comment = []string{rec.Comment}
	}
	reviews, comments := SplitAmendments(comment)
	moreReviews, amendments := SplitAmendments(rec.Amendments)
	reviews = append(reviews, moreReviews...)
	reviews = append(reviews, SplitReviews(rec.Reviews)...)

	c := model.Citation{
		Volume:          rec.Volume,
		Number:          number,
		OriginalIndex:   rec.OriginalIndex,
		Type:            rec.Type,
		Title:           rec.Title,
		Authors:         ParseAuthors(rec.Authors),
		Editors:         ParsePeople(rec.Editors),
		Translators:     ParsePeople(rec.Translators),
		Keywords:        rawKeywords(rec.Keywords),
		Comments:        comments,
		Reviews:         reviews,
		AbstractIn:      rec.AbstractIn,
		Amendments:      amendments,
		PublishedIn:     ParseReference(rec.PublishedIn),
		NumberOfPages:   rec.NumberOfPages,
		NumberOfVolumes: rec.NumberOfVolumes,
		Location:        rec.Location,
		Material:        ParseMaterials(rec.Material),
		DatePublished:   ParseDatePublished(rec.DatePublished),
		Date:            ParseConferenceDate(rec.Date),
		TAReferences:    ParseTAReferences(rec.TAReferences),
		Series:          rec.Series,
		RawText:         rec.RawText,
		RemainingText:   rec.RemainingText,
		FullyParsed:     rec.FullyParsed,
	}
	c.PageStart, _ = strconv.Atoi(rec.PageStart)
	c.PageEnd, _ = strconv.Atoi(rec.PageEnd)
	return c, nil
}

func rawKeywords(raw []string) []model.Keyword {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.Keyword, 0, len(raw))
	for _, k := range raw {
		out = append(out, model.Keyword{Raw: strings.TrimSpace(k)})
	}
	return out
}
