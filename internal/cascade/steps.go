package cascade

import (
	"strings"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

var (
	reviewRe = pattern.MustCompile(
		` +(?:(?<review>Rez\.)|(?<abstract>Abstract +in:)) (?<items>.*)$`, pattern.None)

	commentRe = pattern.MustCompile(
		`\[(?<comment>[^\]]+)\]\.?(?<reviews> \{\{\{ reviews \}\}\})?$`, pattern.None)

	taReferencesRe = pattern.MustCompile(
		`s\. (?:TA \d+(?:-\d+)?\.\d+)(?:, \d(?:-\d+)?\.\d+)*`, pattern.None)

	conferenceRe = pattern.MustCompile(
		`^(?<location>[^,]+), *(?<date>`+pattern.ConferenceDate+`)`, pattern.None)

	volumesRe = pattern.MustCompile(
		`(?<volumes>\d+)\s*Bde[.,]+\s*(?<location>\w+),\s`+
			`(?<published>\d{4}(?:[-—]\d{4}|(?:\s*,\s*\d{4})+)?)`+
			`(?:,\s*(?<pages>[\d, +]+)\s*[Ss]\.)?`, pattern.None)

	materialRe = pattern.MustCompile(
		`, (?<material>\[?\d+\]? *(?:(?:Karte|Tafel|Tabelle|Falt(?:tafel|karte|tabelle))n?`+
			`|Porträts?|Abb\.|Tab\.|(?:Falt|Schlacht)pl(?:an|äne)))(?:\.)?`, pattern.None)

	// The leading punctuation is optional at the very start of the buffer
	// so that citations consisting only of place, year and pages parse.
	locationYearPagesRe = pattern.MustCompile(
		`(?:(?<lead>[.,?]) +|^)\[?(?<location>[^,.?]+), *\[?(?<year>\d{4})\]?[,.] *`+
			`(?:(?! )(?<pages>`+pattern.PageCount+`) *[Ss]\.|[Ss]\. (?<start>\d+)\s*[-—]\s*(?<end>\d+))`, pattern.None)

	seriesRe = pattern.MustCompile(
		`\{\{\{ (?:number_of_pages|page_range|material|date_published) \}\}\}`+
			`(?<group>[ .,]*\((?<series>[^)]+)\))\. *?(?:$|\{\{\{ comment)`, pattern.None)

	publishedInRe = pattern.MustCompile(
		`\s+In\s?: +(?<in>[^.]+ *[\d.\-— ();,*S/=und]+)(?:[.,]|(?<delim>\{\{\{))`, pattern.None)

	implicitPublishedInRe = pattern.MustCompile(
		` +(?<in>[A-Z]+ +(?:\d+(?:-\d+)?)\.(?:\d+(?:-\d+)?\.){2,})(?:[., ]|(?<delim>\{\{\{))`, pattern.None)

	multipleAuthorsRe = pattern.MustCompile(
		`^`+pattern.LastNameGivenNames+
			`(?: *[—-] *(?:`+pattern.LastNameGivenNames+`|`+pattern.GivenNamesLastName+`))+ {3,}`, pattern.None)

	singleAuthorRe = pattern.MustCompile(
		`^(?<name>`+pattern.LastNameGivenNames+`) {2} +`, pattern.None)

	// Volume 1 is set more densely: names end with a period and a single
	// space instead of a wide gap.
	singleAuthorVolume1Re = pattern.MustCompile(
		`^(?<name>`+pattern.LastNameGivenNames+`\.):?(?<!geb\.) (?!\{\{\{)`, pattern.None)

	multipleRolePersonsRe = pattern.MustCompile(
		`\. (?<names>`+pattern.GivenNamesLastName+
			`(?: *(?:[—,]| und ) *`+pattern.GivenNamesLastName+`)+) (?<role>ed|trs)\.`, pattern.None)

	singleRolePersonRe = pattern.MustCompile(
		`\. *(?<names>`+pattern.GivenNamesLastName+`) (?<role>ed|trs)\.`, pattern.None)

	titleRes = []*pattern.Regex{
		pattern.MustCompile(
			`\{\{\{ authors \}\}\}\s*(?<title>.+?)\s*`+
				`\{\{\{ (?:in|editors|translators|number_of_volumes|location) \}\}\}`, pattern.None),
		pattern.MustCompile(
			`\{\{\{ authors \}\}\}\s*(?<title>[^.(]+?)[.,]?\s*\{\{\{`, pattern.None),
		pattern.MustCompile(
			`^(?<title>(?:[^.,(](?!\{\{\{))+?)[.,]?\s*`+
				`\{\{\{ (?:in|editors|translators|number_of_volumes|comment|location) `, pattern.None),
	}
)

// marker returns " {{{ field }}}" for appending after a prefix.
func marker(field string) string {
	return " " + pattern.Marker(field)
}

// extractReview moves a trailing "Rez. ..." or "Abstract in: ..." span to
// Reviews or AbstractIn.
func extractReview(rec model.Record) model.Record {
	if rec.Reviews != "" || rec.AbstractIn != "" {
		return rec
	}
	m := reviewRe.Find(rec.RemainingText)
	if m == nil {
		return rec
	}
	items := m.Group("items").Text
	prefix := pattern.Prefix(rec.RemainingText, m.Start)
	switch {
	case m.Group("review").Matched:
		rec.Reviews = items
		rec.RemainingText = prefix + marker(pattern.FieldReviews)
	case m.Group("abstract").Matched:
		rec.AbstractIn = items
		rec.RemainingText = prefix + marker(pattern.FieldAbstractIn)
	}
	return rec
}

// extractComment moves a trailing bracketed span to TAReferences when it is
// a cross reference such as "[s. TA 5.1496, 6.1621]", or to Comment.
func extractComment(rec model.Record) model.Record {
	if rec.Comment != "" || rec.TAReferences != "" {
		return rec
	}
	m := commentRe.Find(rec.RemainingText)
	if m == nil {
		return rec
	}

	text := strings.TrimRight(strings.TrimSpace(m.Group("comment").Text), ".")
	field := pattern.FieldComment
	if taReferencesRe.FullMatch(text) != nil {
		field = pattern.FieldTAReferences
		rec.TAReferences = text
	} else {
		rec.Comment = text
	}

	rec.RemainingText = pattern.Prefix(rec.RemainingText, m.Start) + marker(field) + m.Group("reviews").Text
	return rec
}

// extractConference handles conference reports that open with
// "<place>, <day>. <roman month>. <year>".
func extractConference(rec model.Record) model.Record {
	if rec.Location != "" || rec.Date != "" {
		return rec
	}
	m := conferenceRe.Find(rec.RemainingText)
	if m == nil {
		return rec
	}
	rec.Location = m.Group("location").Text
	rec.Date = m.Group("date").Text
	rec.Type = model.CitationTypeConference
	rec.RemainingText = pattern.Marker(pattern.FieldLocation) + marker(pattern.FieldDate) + " " +
		pattern.Suffix(rec.RemainingText, m.End)
	return rec
}

// extractVolumes handles multi-volume works: "3 Bde., Stuttgart, 1974".
func extractVolumes(rec model.Record) model.Record {
	if rec.NumberOfVolumes != "" {
		return rec
	}
	m := volumesRe.Find(rec.RemainingText)
	if m == nil {
		return rec
	}

	rec.NumberOfVolumes = m.Group("volumes").Text
	if rec.Location == "" {
		rec.Location = m.Group("location").Text
	}
	if rec.DatePublished == "" {
		rec.DatePublished = m.Group("published").Text
	}

	repl := marker(pattern.FieldNumberOfVolumes) + marker(pattern.FieldLocation) + marker(pattern.FieldDatePublished)
	if pages := strings.TrimSpace(m.Group("pages").Text); pages != "" && rec.NumberOfPages == "" {
		rec.NumberOfPages = pages
		repl += marker(pattern.FieldNumberOfPages)
	}
	rec.RemainingText = pattern.Splice(rec.RemainingText, m.Start, m.End, repl+" ")
	return rec
}

// extractMaterial collects every ", <count> <Karten|Tafeln|Abb.|...>"
// annotation in one left-to-right pass.
func extractMaterial(rec model.Record) model.Record {
	matches := materialRe.FindAll(rec.RemainingText)
	if len(matches) == 0 {
		return rec
	}

	runes := []rune(rec.RemainingText)
	var b strings.Builder
	prev := 0
	for _, m := range matches {
		g := m.Group("material")
		rec.Material = append(rec.Material, g.Text)
		b.WriteString(string(runes[prev:g.Start]))
		b.WriteString(pattern.Marker(pattern.FieldMaterial))
		prev = m.End
	}
	b.WriteString(string(runes[prev:]))
	rec.RemainingText = b.String()
	return rec
}

// extractLocationYearPages handles the imprint "<place>, <year>, <n> S."
// or "<place>, <year>, S. <start>-<end>".
func extractLocationYearPages(rec model.Record) model.Record {
	if rec.DatePublished != "" {
		return rec
	}
	m := locationYearPagesRe.Find(rec.RemainingText)
	if m == nil {
		return rec
	}

	if rec.Location == "" {
		rec.Location = strings.TrimSpace(m.Group("location").Text)
	}
	rec.DatePublished = m.Group("year").Text

	pagesField := pattern.FieldNumberOfPages
	if pages := m.Group("pages"); pages.Matched {
		rec.NumberOfPages = strings.TrimSpace(pages.Text)
	} else {
		pagesField = pattern.FieldPageRange
		rec.PageStart = m.Group("start").Text
		rec.PageEnd = m.Group("end").Text
	}

	repl := pattern.Marker(pattern.FieldLocation) + marker(pattern.FieldDatePublished) + marker(pagesField)
	if lead := m.Group("lead"); lead.Matched {
		repl = lead.Text + " " + repl
	}
	rec.RemainingText = pattern.Splice(rec.RemainingText, m.Start, m.End, repl)
	return rec
}

// extractSeries takes the parenthesised series that directly follows the
// imprint or material markers.
func extractSeries(rec model.Record) model.Record {
	if rec.Series != "" {
		return rec
	}
	m := seriesRe.Find(rec.RemainingText)
	if m == nil {
		return rec
	}
	g := m.Group("group")
	rec.Series = strings.TrimSpace(m.Group("series").Text)
	rec.RemainingText = pattern.Splice(rec.RemainingText, g.Start, g.End, pattern.Marker(pattern.FieldSeries))
	return rec
}

// extractPublishedIn handles the explicit "In: <journal> <numbers>" form.
func extractPublishedIn(rec model.Record) model.Record {
	if rec.PublishedIn != "" {
		return rec
	}
	return replacePublishedIn(rec, publishedInRe.Find(rec.RemainingText))
}

// extractImplicitPublishedIn handles venues written without "In:", such as
// "ADI 1974.2.51-60.".
func extractImplicitPublishedIn(rec model.Record) model.Record {
	if rec.PublishedIn != "" {
		return rec
	}
	return replacePublishedIn(rec, implicitPublishedInRe.Find(rec.RemainingText))
}

// replacePublishedIn swaps the matched venue for an in marker. When the
// venue runs up to a marker and nothing but markers follow, those markers
// are folded into the in marker.
func replacePublishedIn(rec model.Record, m *pattern.Match) model.Record {
	if m == nil {
		return rec
	}
	text := rec.RemainingText
	rec.PublishedIn = strings.TrimSpace(m.Group("in").Text)
	rec.Type = model.CitationTypeArticle

	out := pattern.Prefix(text, m.Start) + marker(pattern.FieldIn)
	if delim := m.Group("delim"); delim.Matched {
		if rest := pattern.Suffix(text, delim.Start); !FullyParsed(rest) {
			out += " " + rest
		}
	} else {
		out += pattern.Suffix(text, m.End)
	}
	rec.RemainingText = out
	return rec
}

// extractAuthors takes the author block at the start of the buffer. A run
// of dash-joined names is tried before a single name.
func extractAuthors(rec model.Record) model.Record {
	if rec.Authors != "" {
		return rec
	}
	text := rec.RemainingText

	if m := multipleAuthorsRe.Find(text); m != nil {
		rec.Authors = strings.TrimSpace(m.Text)
		rec.RemainingText = pattern.Marker(pattern.FieldAuthors) + " " + strings.TrimSpace(pattern.Suffix(text, m.End))
		return rec
	}

	re := singleAuthorRe
	if rec.Volume == "1" {
		re = singleAuthorVolume1Re
	}
	if m := re.Find(text); m != nil {
		rec.Authors = strings.TrimSpace(m.Group("name").Text)
		rec.RemainingText = pattern.Marker(pattern.FieldAuthors) + " " + strings.TrimSpace(pattern.Suffix(text, m.End))
	}
	return rec
}

// personRole is the closed set of roles a name list before "ed." or "trs."
// can take.
type personRole int

const (
	roleEditors personRole = iota
	roleTranslators
)

func parseRole(abbrev string) personRole {
	if abbrev == "trs" {
		return roleTranslators
	}
	return roleEditors
}

func (r personRole) field() string {
	if r == roleTranslators {
		return pattern.FieldTranslators
	}
	return pattern.FieldEditors
}

// assign stores names on rec. Editors make the work a collection.
func (r personRole) assign(rec *model.Record, names string) {
	switch r {
	case roleEditors:
		rec.Editors = names
		rec.Type = model.CitationTypeCollection
	case roleTranslators:
		rec.Translators = names
	}
}

// extractEditorsTranslators handles ". <names> ed." and ". <names> trs.".
func extractEditorsTranslators(rec model.Record) model.Record {
	if rec.Editors != "" || rec.Translators != "" {
		return rec
	}
	m := multipleRolePersonsRe.Find(rec.RemainingText)
	if m == nil {
		m = singleRolePersonRe.Find(rec.RemainingText)
	}
	if m == nil {
		return rec
	}

	names := m.Group("names")
	role := parseRole(m.Group("role").Text)
	role.assign(&rec, strings.TrimSpace(names.Text))

	text := rec.RemainingText
	rec.RemainingText = pattern.Prefix(text, names.Start) + marker(role.field()) + " " + pattern.Suffix(text, m.End)
	return rec
}

// ExtractTitle finds the title relative to the markers already placed. It
// is also the only step rerun after known-author reinforcement.
func ExtractTitle(rec model.Record) model.Record {
	if rec.Title != "" {
		return rec
	}
	for _, re := range titleRes {
		m := re.Find(rec.RemainingText)
		if m == nil {
			continue
		}
		g := m.Group("title")
		title := strings.TrimRight(strings.TrimSpace(g.Text), ".,")
		if title == "" || strings.Contains(title, "{{{") {
			continue
		}
		rec.Title = title
		rec.RemainingText = pattern.Splice(rec.RemainingText, g.Start, g.End, pattern.Marker(pattern.FieldTitle))
		return rec
	}
	return rec
}
