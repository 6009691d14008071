package authors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/turkology-cli/internal/cascade"
	"github.com/sells-group/turkology-cli/internal/fields"
	"github.com/sells-group/turkology-cli/internal/model"
)

func parse(t *testing.T, volume, raw string) model.Citation {
	t.Helper()
	rec, err := cascade.Extract(model.Record{Volume: volume, RawText: raw})
	require.NoError(t, err)
	c, err := fields.Build(rec)
	require.NoError(t, err)
	return c
}

func TestReinforce_RoundTrip(t *testing.T) {
	raw := "12. Handžić, Adem Problematika sakupljanja i izdavanja turskih istorij-skih izvora u radu Orijentalnog Instituta. In: POF 20-21.1970/71 (1974).213-221. [Die Problematik der Erfassung und Herausgabe der türkischen historischen Quellen im Rahmen der Arbeiten des Orientalischen Instituts in Sarajevo, Jugoslavien.]"
	parsed := parse(t, "4", raw)
	require.Empty(t, parsed.Authors)
	require.False(t, parsed.FullyParsed)

	out, n, err := Reinforce(context.Background(), []model.Citation{parsed}, []string{"Handžić, Adem"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, out, 1)

	c := out[0]
	assert.Equal(t, 12, c.Number)
	assert.Equal(t, model.CitationTypeArticle, c.Type)
	assert.Equal(t, []model.Person{{First: "Adem", Last: "Handžić", Raw: "Handžić, Adem"}}, c.Authors)
	assert.Equal(t, "Problematika sakupljanja i izdavanja turskih istorij-skih izvora u radu Orijentalnog Instituta", c.Title)
	assert.Equal(t, []string{
		"Die Problematik der Erfassung und Herausgabe der türkischen historischen Quellen im Rahmen der Arbeiten des Orientalischen Instituts in Sarajevo, Jugoslavien",
	}, c.Comments)
	assert.Empty(t, c.Reviews)
	assert.Equal(t, &model.Reference{
		Type:            "journal",
		Raw:             "POF 20-21.1970/71 (1974).213-221",
		Journal:         "POF",
		VolumeStart:     20,
		VolumeEnd:       21,
		YearStart:       1970,
		YearEnd:         1971,
		YearParentheses: 1974,
		PageStart:       213,
		PageEnd:         221,
	}, c.PublishedIn)
	assert.Equal(t, "{{{ authors }}} {{{ title }}} {{{ in }}}", c.RemainingText)
	assert.True(t, c.FullyParsed)
	assert.Equal(t, raw, c.RawText)

	// the input slice is left untouched
	assert.Empty(t, parsed.Authors)
}

func TestApply_MultipleAuthors(t *testing.T) {
	r := NewReinforcer([]string{"Pollo, St.", "Pulaha, S."})
	c, ok := r.Apply(model.Citation{
		RemainingText: "Pollo, St. - Pulaha, S.  Akte të Rilindjes kombëtare shqiptare 1878-1912  {{{ ta_references }}}",
	})
	require.True(t, ok)
	require.Len(t, c.Authors, 2)
	assert.Equal(t, "Pollo, St.", c.Authors[0].Raw)
	assert.Equal(t, "Pulaha, S.", c.Authors[1].Raw)
	assert.Equal(t, "Akte të Rilindjes kombëtare shqiptare 1878-1912", c.Title)
	assert.Equal(t, "{{{ authors }}} {{{ title }}}  {{{ ta_references }}}", c.RemainingText)
	assert.True(t, c.FullyParsed)
}

func TestApply_FuzzyName(t *testing.T) {
	r := NewReinforcer([]string{"Landau, Jacob M"})
	c, ok := r.Apply(model.Citation{RemainingText: "Landau, Jakob M. Pan-Turkism in Turkey. London, 1981"})
	require.True(t, ok)
	require.Len(t, c.Authors, 1)
	assert.Equal(t, model.Person{First: "Jakob", Middle: "M", Last: "Landau", Raw: "Landau, Jakob M"}, c.Authors[0])
	assert.Equal(t, "{{{ authors }}} Pan-Turkism in Turkey. London, 1981", c.RemainingText)
	assert.False(t, c.FullyParsed)
}

func TestDistanceTo_Exact(t *testing.T) {
	k := knownName{raw: "Landau, Jacob M", lower: []rune("landau, jacob m")}

	d, ok := k.distanceTo([]rune("landau, jakob m"))
	assert.True(t, ok)
	assert.Equal(t, 1, d)

	d, ok = k.distanceTo([]rune("xqzvbn, wrtyp k"))
	assert.False(t, ok)
	assert.Greater(t, d, maxCost)
}

func TestApply_IgnoresUnrelatedOpening(t *testing.T) {
	r := NewReinforcer([]string{"Landau, Jacob M"})
	_, ok := r.Apply(model.Citation{RemainingText: "Kissling, Hans J. Pan-Turkism in Turkey. London, 1981"})
	assert.False(t, ok)
}

func TestApply_PrefersLongerExactSpan(t *testing.T) {
	r := NewReinforcer([]string{"Kakük, Z", "Kakük, Z."})
	c, ok := r.Apply(model.Citation{RemainingText: "Kakük, Z. Türk halk tiyatrosu {{{ in }}}"})
	require.True(t, ok)
	assert.Equal(t, "Kakük, Z.", c.Authors[0].Raw)
	assert.Equal(t, "Türk halk tiyatrosu", c.Title)

	r = NewReinforcer([]string{"Kakük, Z"})
	c, ok = r.Apply(model.Citation{RemainingText: "Kakük, Z. Türk halk tiyatrosu {{{ in }}}"})
	require.True(t, ok)
	assert.Equal(t, "Kakük, Z", c.Authors[0].Raw)
	assert.Equal(t, "{{{ authors }}} {{{ title }}} {{{ in }}}", c.RemainingText)
}

func TestApply_RequiresCapitalisedTitle(t *testing.T) {
	r := NewReinforcer([]string{"Handžić, Adem"})
	_, ok := r.Apply(model.Citation{RemainingText: "Handžić, Adem problematika sakupljanja. {{{ in }}}"})
	assert.False(t, ok)
}

func TestApply_SkipsIneligible(t *testing.T) {
	r := NewReinforcer([]string{"Handžić, Adem"})

	withAuthors := model.Citation{
		Authors:       []model.Person{{Raw: "Somebody"}},
		RemainingText: "Handžić, Adem Problematika sakupljanja. {{{ in }}}",
	}
	_, ok := r.Apply(withAuthors)
	assert.False(t, ok)

	parsed := model.Citation{RemainingText: "{{{ title }}}", FullyParsed: true}
	_, ok = r.Apply(parsed)
	assert.False(t, ok)
}

func TestReinforce_CountsOnlyChanged(t *testing.T) {
	in := []model.Citation{
		{Number: 1, RemainingText: "Landau, Jacob M. Pan-Turkism in Turkey {{{ location }}}"},
		{Number: 2, RemainingText: "Unknown, Person Some title {{{ in }}}"},
		{Number: 3, RemainingText: "{{{ title }}}", FullyParsed: true},
	}
	out, n, err := Reinforce(context.Background(), in, Seed, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, out[0].Authors, 1)
	assert.Empty(t, out[1].Authors)
	assert.Equal(t, in[2], out[2])
}

func TestReinforce_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Reinforce(ctx, []model.Citation{{RemainingText: "Landau, Jacob M. Pan-Turkism x"}}, Seed, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHarvest(t *testing.T) {
	names := Harvest([]model.Citation{
		{Authors: []model.Person{{Raw: "Mehrländer, Ursula"}, {Raw: ""}}},
		{Authors: []model.Person{{Raw: "Mehrländer, Ursula"}, {Raw: "Bazin, L."}}},
	})
	assert.Contains(t, names, "Mehrländer, Ursula")
	assert.Contains(t, names, "Bazin, L.")
	assert.Contains(t, names, "Landau, Jacob M")
	assert.Len(t, names, len(Seed)+2)
	assert.IsNonDecreasing(t, names)
}
