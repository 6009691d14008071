// Package cascade extracts citation fields from raw citation text.
//
// Extraction is an ordered list of steps over a single buffer, the record's
// RemainingText. Each step looks for one kind of field, copies the matched
// text into the record and replaces the span with a field marker such as
// "{{{ title }}}". Later steps anchor on markers left by earlier ones, so the
// order returned by Steps is part of the contract.
package cascade

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

// ErrNoCitationNumber is returned when a raw citation does not start with
// "<number>.". Such records are rejected rather than parsed.
var ErrNoCitationNumber = eris.New("cascade: citation has no number prefix")

// Step is one pure transformation of a record.
type Step struct {
	Name  string
	Apply func(model.Record) model.Record
}

// Trace observes every intermediate state of a run.
type Trace func(step string, before, after model.Record)

var numberPrefix = pattern.MustCompile(`^(?<number>\d+)\.\s*(?<rest>.+)`, pattern.Singleline)

// Steps returns the extraction steps in the order they must run.
func Steps() []Step {
	return []Step{
		{Name: "review", Apply: extractReview},
		{Name: "comment", Apply: extractComment},
		{Name: "conference", Apply: extractConference},
		{Name: "volumes", Apply: extractVolumes},
		{Name: "material", Apply: extractMaterial},
		{Name: "location_year_pages", Apply: extractLocationYearPages},
		{Name: "series", Apply: extractSeries},
		{Name: "published_in", Apply: extractPublishedIn},
		{Name: "implicit_published_in", Apply: extractImplicitPublishedIn},
		{Name: "authors", Apply: extractAuthors},
		{Name: "editors_translators", Apply: extractEditorsTranslators},
		{Name: "title", Apply: ExtractTitle},
	}
}

// Run threads rec through steps. trace may be nil.
func Run(rec model.Record, steps []Step, trace Trace) model.Record {
	for _, s := range steps {
		next := s.Apply(rec.Clone())
		if trace != nil {
			trace(s.Name, rec, next)
		}
		rec = next
	}
	rec.FullyParsed = FullyParsed(rec.RemainingText)
	return rec
}

// Extract splits off the citation number and runs the full cascade. A
// record that already carries RemainingText is parsed from that buffer.
func Extract(rec model.Record) (model.Record, error) {
	return ExtractTrace(rec, nil)
}

// ExtractTrace is Extract with a Trace callback.
func ExtractTrace(rec model.Record, trace Trace) (model.Record, error) {
	if rec.RemainingText == "" {
		m := numberPrefix.Find(rec.RawText)
		if m == nil {
			return rec, eris.Wrapf(ErrNoCitationNumber, "volume %s, paragraph %d", rec.Volume, rec.OriginalIndex)
		}
		rec.Number = m.Group("number").Text
		rec.RemainingText = m.Group("rest").Text
	}
	return Run(rec, Steps(), trace), nil
}
