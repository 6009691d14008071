package pattern

import (
	"regexp"
	"strings"
)

// Field names used inside markers.
const (
	FieldTitle           = "title"
	FieldAuthors         = "authors"
	FieldEditors         = "editors"
	FieldTranslators     = "translators"
	FieldIn              = "in"
	FieldLocation        = "location"
	FieldDate            = "date"
	FieldDatePublished   = "date_published"
	FieldNumberOfPages   = "number_of_pages"
	FieldNumberOfVolumes = "number_of_volumes"
	FieldPageRange       = "page_range"
	FieldSeries          = "series"
	FieldMaterial        = "material"
	FieldComment         = "comment"
	FieldTAReferences    = "ta_references"
	FieldReviews         = "reviews"
	FieldAbstractIn      = "abstract_in"
)

// Marker returns the sentinel that replaces an extracted span, e.g.
// "{{{ title }}}".
func Marker(field string) string {
	return "{{{ " + field + " }}}"
}

var markerRe = regexp.MustCompile(`\{\{\{\s*([\w_]+)\s*\}\}\}`)

// Markers returns the field names of all markers in s, in order.
func Markers(s string) []string {
	var out []string
	for _, m := range markerRe.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

// StripMarkers removes all markers from s and collapses the surrounding
// whitespace. What remains is the literal residue of a parse.
func StripMarkers(s string) string {
	return strings.Join(strings.Fields(markerRe.ReplaceAllString(s, " ")), " ")
}

// Splice replaces the runes of s in [start, end) with repl.
func Splice(s string, start, end int, repl string) string {
	rs := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(rs) {
		end = len(rs)
	}
	if start > end {
		start = end
	}
	var b strings.Builder
	b.Grow(len(s) + len(repl))
	b.WriteString(string(rs[:start]))
	b.WriteString(repl)
	b.WriteString(string(rs[end:]))
	return b.String()
}

// Prefix returns the runes of s before offset i.
func Prefix(s string, i int) string {
	return Slice(s, 0, i)
}

// Suffix returns the runes of s from offset i on.
func Suffix(s string, i int) string {
	return Slice(s, i, RuneLen(s))
}
