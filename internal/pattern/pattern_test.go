package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarker(t *testing.T) {
	assert.Equal(t, "{{{ title }}}", Marker(FieldTitle))
	assert.Equal(t, "{{{ number_of_pages }}}", Marker(FieldNumberOfPages))
}

func TestMarkers(t *testing.T) {
	got := Markers("{{{ authors }}} {{{ title }}}. {{{in}}}")
	assert.Equal(t, []string{"authors", "title", "in"}, got)
	assert.Empty(t, Markers("no markers here"))
}

func TestStripMarkers(t *testing.T) {
	assert.Equal(t, "London, 1988, XVΠ+274 S.",
		StripMarkers("{{{ editors }}}  London, 1988, XVΠ+274 S."))
	assert.Equal(t, ".", StripMarkers("{{{ title }}}.  {{{ editors }}}"))
}

func TestSplice_UsesRuneOffsets(t *testing.T) {
	s := "Handžić, Adem Problematika"
	// "Handžić, Adem" is 13 runes but 15 bytes.
	got := Splice(s, 0, 13, Marker(FieldAuthors))
	assert.Equal(t, "{{{ authors }}} Problematika", got)
}

func TestSplice_ClampsBounds(t *testing.T) {
	assert.Equal(t, "abX", Splice("abc", 2, 10, "X"))
	assert.Equal(t, "Xabc", Splice("abc", -3, 0, "X"))
}

func TestRegex_GroupOffsetsAreRunes(t *testing.T) {
	re := MustCompile(`(?<last>\w+), (?<first>\w+)`, None)
	m := re.Find("Über Mehrländer, Ursula")
	require.NotNil(t, m)

	last := m.Group("last")
	assert.True(t, last.Matched)
	assert.Equal(t, "Mehrländer", last.Text)
	assert.Equal(t, 5, last.Start)
	assert.Equal(t, "Mehrländer", Slice("Über Mehrländer, Ursula", last.Start, last.End))
	assert.Equal(t, "Ursula", m.Group("first").Text)
	assert.False(t, m.Group("missing").Matched)
}

func TestRegex_FullMatch(t *testing.T) {
	re := MustCompile(`\d+\.\s+.+`, Singleline)
	assert.NotNil(t, re.FullMatch("12. Some title"))
	assert.Nil(t, re.FullMatch("x 12. Some title"))
	assert.NotNil(t, re.Find("x 12. Some title"))
}

func TestRegex_FindAll(t *testing.T) {
	re := MustCompile(`\d+ Karten`, None)
	ms := re.FindAll("S. 1, 3 Karten, 4 Karten.")
	require.Len(t, ms, 2)
	assert.Equal(t, "3 Karten", ms[0].Text)
	assert.Equal(t, "4 Karten", ms[1].Text)
	assert.Less(t, ms[0].End, ms[1].Start)
}

func TestRegex_Split(t *testing.T) {
	re := MustCompile(`\s+—\s+`, None)
	assert.Equal(t, []string{"Wagner, ÖO 15", "Scherer, SODV 23", "Schnitter"},
		re.Split("Wagner, ÖO 15 — Scherer, SODV 23 —  Schnitter"))
	assert.Equal(t, []string{"no separator"}, re.Split("no separator"))
}

func TestRegex_ReplacePrefix(t *testing.T) {
	re := MustCompile(`^Rez\. *`, None)
	assert.Equal(t, "Wagner", re.ReplacePrefix("Rez. Wagner", ""))
	assert.Equal(t, "•Wagner", re.ReplacePrefix("Rez.Wagner", "•"))
	assert.Equal(t, "Siehe Rez. Wagner", re.ReplacePrefix("Siehe Rez. Wagner", ""))
}

func TestNameGrammars(t *testing.T) {
	lastGiven := MustCompile(LastNameGivenNames, None)
	assert.NotNil(t, lastGiven.FullMatch("Bazin, L."))
	assert.NotNil(t, lastGiven.FullMatch("Mehrländer, Ursula"))
	assert.NotNil(t, lastGiven.FullMatch("Kramer, Gerhard F."))

	givenLast := MustCompile(GivenNamesLastName, None)
	assert.NotNil(t, givenLast.FullMatch("Hans Georg Majer"))
	assert.NotNil(t, givenLast.FullMatch("Michael Rywkin"))
}

func TestConferenceDateGrammar(t *testing.T) {
	re := MustCompile(ConferenceDate, None)
	for _, s := range []string{"2.-4. VI. 1969", "4.-5. XII. 1975", "12. IX. 1970", "30. XII. 1974-2. I. 1975"} {
		assert.NotNil(t, re.FullMatch(s), s)
	}
	assert.Nil(t, re.FullMatch("1990"))
}
