package cascade

import (
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

func extract(t *testing.T, volume, raw string) model.Record {
	t.Helper()
	rec, err := Extract(model.Record{Volume: volume, RawText: raw})
	require.NoError(t, err)
	return rec
}

func TestExtract_Collection(t *testing.T) {
	raw := "1. Lexikon der islamischen Welt. Klaus Kreiser, Werner Diem, Hans Georg Majer ed. 3 Bde., Stuttgart, 1974 (Urban-Taschenbücher, 200/1-3)."
	rec := extract(t, "3", raw)

	assert.Equal(t, "1", rec.Number)
	assert.Equal(t, raw, rec.RawText)
	assert.Equal(t, "{{{ title }}}.  {{{ editors }}}   {{{ number_of_volumes }}} "+
		"{{{ location }}} {{{ date_published }}}{{{ series }}}.", rec.RemainingText)
	assert.Equal(t, "Lexikon der islamischen Welt", rec.Title)
	assert.Equal(t, "Klaus Kreiser, Werner Diem, Hans Georg Majer", rec.Editors)
	assert.Equal(t, "3", rec.NumberOfVolumes)
	assert.Equal(t, "Stuttgart", rec.Location)
	assert.Equal(t, "3", rec.NumberOfVolumes)
	assert.Equal(t, "1974", rec.DatePublished)
	assert.Equal(t, "Urban-Taschenbücher, 200/1-3", rec.Series)
	assert.Equal(t, model.CitationTypeCollection, rec.Type)
	assert.True(t, rec.FullyParsed)
}

func TestExtract_CollectionRomanPageCount(t *testing.T) {
	raw := "98. Russian colonial expansion to 1917. Eingeleitet von Sy ed Z. abedin. Michael Rywkin ed. London, 1988, XVΠ+274 S."
	rec := extract(t, "3", raw)

	assert.Equal(t, "98", rec.Number)
	assert.Equal(t, "Michael Rywkin", rec.Editors)
	assert.Equal(t, model.CitationTypeCollection, rec.Type)
	assert.Equal(t, "XVΠ+274", rec.NumberOfPages)
	assert.Equal(t, "London", rec.Location)
	assert.Equal(t, "1988", rec.DatePublished)
	assert.Empty(t, rec.Title)
	assert.Equal(t, "Russian colonial expansion to 1917. Eingeleitet von Sy ed Z. abedin.  {{{ editors }}}  "+
		"{{{ location }}} {{{ date_published }}} {{{ number_of_pages }}}", rec.RemainingText)
	assert.False(t, rec.FullyParsed)
}

func TestExtract_AuthorTitleImprint(t *testing.T) {
	raw := "1584. Mehrländer, Ursula     Türkische Jugendliche - keine beruflichen Chancen in Deutschland? Bonn, 1983, 228S."
	rec := extract(t, "13", raw)

	assert.Equal(t, "Mehrländer, Ursula", rec.Authors)
	assert.Equal(t, "Türkische Jugendliche - keine beruflichen Chancen in Deutschland?", rec.Title)
	assert.Equal(t, "Bonn", rec.Location)
	assert.Equal(t, "1983", rec.DatePublished)
	assert.Equal(t, "228", rec.NumberOfPages)
	assert.Equal(t, "{{{ authors }}} {{{ title }}} {{{ location }}} {{{ date_published }}} {{{ number_of_pages }}}",
		rec.RemainingText)
	assert.True(t, rec.FullyParsed)
}

func TestExtract_TitleBeforeEditors(t *testing.T) {
	raw := "1667. ArsenijeviĆ, Lazar-Batalaka     Istorija srpskog ustanka. Vladimir stojancević ed. Beograd, 1979, 1 S."
	rec := extract(t, "13", raw)

	assert.Equal(t, "ArsenijeviĆ, Lazar-Batalaka", rec.Authors)
	assert.Equal(t, "Istorija srpskog ustanka", rec.Title)
	assert.Equal(t, "Vladimir stojancević", rec.Editors)
	assert.Equal(t, "Beograd", rec.Location)
	assert.Equal(t, "1", rec.NumberOfPages)
}

func TestExtract_PlaceYearPagesOnly(t *testing.T) {
	rec := extract(t, "20", "1. Berlin, 1990, 234 S.")

	assert.Equal(t, "Berlin", rec.Location)
	assert.Equal(t, "1990", rec.DatePublished)
	assert.Equal(t, "234", rec.NumberOfPages)
	assert.Equal(t, "{{{ location }}} {{{ date_published }}} {{{ number_of_pages }}}", rec.RemainingText)
	assert.True(t, rec.FullyParsed)
}

func TestExtract_PageRange(t *testing.T) {
	rec := extract(t, "20", "5. Müller, Hans   Ein Titel. Wien, 1980, S. 12-34.")

	assert.Equal(t, "Wien", rec.Location)
	assert.Equal(t, "1980", rec.DatePublished)
	assert.Equal(t, "12", rec.PageStart)
	assert.Equal(t, "34", rec.PageEnd)
	assert.Empty(t, rec.NumberOfPages)
	assert.Contains(t, rec.RemainingText, "{{{ page_range }}}")
}

func TestExtract_PublishedInFoldsTrailingComment(t *testing.T) {
	raw := "12. Handžić, Adem Problematika sakupljanja i izdavanja turskih istorij-skih izvora u radu Orijentalnog Instituta. In: POF 20-21.1970/71 (1974).213-221. [Die Problematik der Erfassung und Herausgabe der türkischen historischen Quellen im Rahmen der Arbeiten des Orientalischen Instituts in Sarajevo, Jugoslavien.]"
	rec := extract(t, "4", raw)

	assert.Equal(t, "12", rec.Number)
	assert.Empty(t, rec.Authors)
	assert.Empty(t, rec.Title)
	assert.Equal(t, model.CitationTypeArticle, rec.Type)
	assert.Equal(t, "POF 20-21.1970/71 (1974).213-221.", rec.PublishedIn)
	assert.Equal(t, "Die Problematik der Erfassung und Herausgabe der türkischen historischen Quellen im Rahmen der Arbeiten des Orientalischen Instituts in Sarajevo, Jugoslavien", rec.Comment)
	assert.Equal(t, "Handžić, Adem Problematika sakupljanja i izdavanja turskih istorij-skih izvora u radu Orijentalnog Instituta. {{{ in }}}", rec.RemainingText)
	assert.False(t, rec.FullyParsed)
}

func TestExtract_ImplicitPublishedIn(t *testing.T) {
	raw := "200. Ramazanov, K. T. Türk dillärinin ğänub-ğarb ġrupunda ġoša sözlär (jemäk-ičmäk adları). ADI 1974.2.51-60. [Wortpaare in den südwestlichen Turksprachen: Speisen und Getränke. Russ. Res.]"
	rec := extract(t, "4", raw)

	assert.Equal(t, "ADI 1974.2.51-60.", rec.PublishedIn)
	assert.Equal(t, model.CitationTypeArticle, rec.Type)
	assert.Equal(t, "Wortpaare in den südwestlichen Turksprachen: Speisen und Getränke. Russ. Res", rec.Comment)
	assert.Contains(t, rec.RemainingText, "{{{ in }}} {{{ comment }}}")
}

func TestExtract_Reviews(t *testing.T) {
	raw := "3. Biographisches Lexikon zur Geschichte Südosteuropas. Mathias Bernath und Felix v. Schroeder ed., Gerda Bartl (Red.). Bd. 1, Α-F. München, 1974, XV+557 S. (Südosteuropäische Arbeiten, 75). Rez. Gerhard Stadler, Donauraum 19.3.-4.1974.209. — Johann Weidlein, SODV 23.3.1974.218."
	rec := extract(t, "4", raw)

	assert.Equal(t, "Gerhard Stadler, Donauraum 19.3.-4.1974.209. — Johann Weidlein, SODV 23.3.1974.218.", rec.Reviews)
	assert.Contains(t, rec.RemainingText, "{{{ reviews }}}")
	assert.Equal(t, "München", rec.Location)
	assert.Equal(t, "XV+557", rec.NumberOfPages)
}

func TestExtract_AbstractIn(t *testing.T) {
	raw := "863. Nye, Roger P.   The military in Turkish politics, 1960-1973. Diss., Washington University, 1974, 302 S. (UM 74-22,540). Abstract in: DAI 35.4.1974-1975.2358-A."
	rec := extract(t, "4", raw)

	assert.Equal(t, "DAI 35.4.1974-1975.2358-A.", rec.AbstractIn)
	assert.Empty(t, rec.Reviews)
	assert.Contains(t, rec.RemainingText, "{{{ abstract_in }}}")
}

func TestExtract_TAReferencesAndMultipleAuthors(t *testing.T) {
	raw := "1226. Pollo, St. - Pulaha, S.     Akte të Rilindjes kombëtare shqiptare 1878-1912 [s. TA 5.1496, 6.1621]."
	rec := extract(t, "7", raw)

	assert.Equal(t, "s. TA 5.1496, 6.1621", rec.TAReferences)
	assert.Empty(t, rec.Comment)
	assert.Equal(t, "Pollo, St. - Pulaha, S.", rec.Authors)
	assert.Equal(t, "Akte të Rilindjes kombëtare shqiptare 1878-1912", rec.Title)
	assert.Equal(t, "{{{ authors }}} {{{ title }}}  {{{ ta_references }}}", rec.RemainingText)
	assert.True(t, rec.FullyParsed)
}

func TestExtract_Translators(t *testing.T) {
	raw := "301. Yotjnous, Emre   Poèmes. Guzine Dino—Marc Delouze trs. Paris, 1973, 41 S."
	rec := extract(t, "4", raw)

	assert.Equal(t, "Yotjnous, Emre", rec.Authors)
	assert.Equal(t, "Guzine Dino—Marc Delouze", rec.Translators)
	assert.Empty(t, rec.Editors)
	assert.NotEqual(t, model.CitationTypeCollection, rec.Type)
	assert.Equal(t, "Poèmes", rec.Title)
	assert.True(t, rec.FullyParsed)
}

func TestExtract_Conference(t *testing.T) {
	raw := "191. Ljubljana (Laibach), 4.-5. XII. 1975: Jugoslovenska orijentalistika i nesvrstani svijet [Die jugoslavische Orientalistik und die blockfreie Welt]."
	rec := extract(t, "2", raw)

	assert.Equal(t, model.CitationTypeConference, rec.Type)
	assert.Equal(t, "Ljubljana (Laibach)", rec.Location)
	assert.Equal(t, "4.-5. XII. 1975", rec.Date)
	assert.Equal(t, "Die jugoslavische Orientalistik und die blockfreie Welt", rec.Comment)
	assert.Contains(t, rec.RemainingText, "{{{ location }}} {{{ date }}}")
}

func TestExtract_Material(t *testing.T) {
	raw := "701. Brouček, Peter-LEiτscH, Walter-VocELKA, Karl—Wimmer, Jan-Wój-cıκ, Zbigniew Der Sieg bei Wien 1683. Wien-Warszawa, 1983, 187 S. 70 Abb., 4 Schlachtpläne, 1 Faltplan."
	rec := extract(t, "14", raw)

	assert.Equal(t, []string{"4 Schlachtpläne", "1 Faltplan"}, rec.Material)
	assert.Contains(t, rec.RemainingText, "{{{ material }}}, {{{ material }}}")
}

func TestExtract_NoNumber(t *testing.T) {
	_, err := Extract(model.Record{Volume: "3", RawText: "Lexikon der islamischen Welt."})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoCitationNumber))
}

func TestExtract_VolumesPlaceYearOnly(t *testing.T) {
	rec, err := Extract(model.Record{Volume: "3", RawText: "5. 3 Bde., Stuttgart, 1974, 500 S."})
	require.NoError(t, err)
	assert.Equal(t, "3", rec.NumberOfVolumes)
	assert.Equal(t, "Stuttgart", rec.Location)
	assert.Equal(t, "1974", rec.DatePublished)
	assert.Empty(t, strings.TrimSpace(pattern.StripMarkers(rec.RemainingText)))
	assert.True(t, rec.FullyParsed)
}

func TestExtract_OnlyTAReference(t *testing.T) {
	rec, err := Extract(model.Record{Volume: "7", RawText: "7. [s. TA 5.1496]."})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.TAReferences)
	assert.True(t, rec.FullyParsed)
}

func TestExtract_KeepsExistingBuffer(t *testing.T) {
	rec, err := Extract(model.Record{
		Volume:        "20",
		Number:        "7",
		RawText:       "7. ignored",
		RemainingText: "Berlin, 1990, 234 S.",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", rec.Number)
	assert.Equal(t, "Berlin", rec.Location)
}

var robustnessInputs = []string{
	"337. Özkirimli, Atillâ   Nedim. [Istanbul, 1974],  175 S. [Der Dichter Nedīm, ca. 1681-1730.]",
	"301. Yotjnous, Emre   Poèmes. Guzine Dino—Marc Delouze trs. Paris, 1973, 41 S.",
	"863. Nye, Roger P.   The military in Turkish politics, 1960-1973. Diss., Washington University, 1974, 302 S. (UM 74-22,540). Abstract in: DAI 35.4.1974-1975.2358-A.",
	"222. Süleyman the Magnificent and his age [s.TA 22 - 23.293]. Rez. György domokos, 110.4.1997.814.",
	"9. Dërfer, G.    0 sostojanii tjurkologii v Federativnoj Respublike Germanii. In: ST 1974.6.98-109. [Die Turkologie in der Bundesrepublik Deutschland.]",
	"1272. DEVECI, Hasan A.    Cyprus yesterday, today — what next? London, 1976, 1 + 60 S. (Cyprus Turkish Association, 2).",
	"660. Kramer, Gerhard F.—McGrew, Roderick E.  Potemkin, the Porte, and the road to Tsargrad. The Shumla negotiations, 1789-1790. In: CASS 8.4.1974.467-487.",
	"1226. Pollo, St. - Pulaha, S.     Akte të Rilindjes kombëtare shqiptare 1878-1912 [s. TA 5.1496, 6.1621].",
	"1018. PlNON, Pierre       Les villes du pont vues par le Père de Jerphanion.      e g Tokat, Amasya, Sivas. In: TA 25.240.859-865.                                      CO Ό",
	"3. Biographisches Lexikon zur Geschichte Südosteuropas. Mathias Bernath und Felix v. Schroeder ed., Gerda Bartl (Red.). Bd. 1, Α-F. München, 1974, XV+557 S. (Südosteuropäische Arbeiten, 75). Rez. Gerhard Stadler, Donauraum 19.3.-4.1974.209. — Johann Weidlein, SODV 23.3.1974.218.",
	"701. Brouček, Peter-LEiτscH, Walter-VocELKA, Karl—Wimmer, Jan-Wój-cıκ, Zbigniew Der Sieg bei Wien 1683. Wien-Warszawa, 1983, 187 S. 70 Abb., 4 Schlachtpläne, 1 Faltplan.",
	"117. Leningrad, 2.-4. VI. 1969: III Tjurkologičeskaja konferencija. 3. Turkologische Konferenz; die Referate sind abgedruckt in TA 1.89. Bericht: V.G.Guzev,N. A.Dulina,L. Ju.Tuguševa, TA 1.89.403-412.",
	"879. ALLAMANI,   E.-PANAYOTOPOULOU, Κ.      ΊΙ   συμμαχική  εντολή για τήν κατάληψη της Σμύρνης και ή δραστηριοποίηση της ελληνικής ηγεσίας. In: ΤΑ 7.160.119-172 [The Allied decision concerning the Greek mandate on the occupation of Smyrna.]",
	"291. Fourtis, Georgios N. Στρατıωτıκòv fλλη vo-τoυpκıκòv λεξıκóv. 2 Bde. Athenai, 1977. [Militärisches Fachwörterbuch Griechisch-Türkisch.]",
	"16. Kononov, Α. N. Nekotorye itogi razvitija sovetskoj tjurkologii i zadaci Sovetskogo komiteta tjurkologov. In: ST 1974.2.3-12. [Einige Ergebnisse der Entwicklung der sowjetischen Turkologie und die Aufgaben des Sowjetischen Komitee der Turkologen.]",
	"1. Lexikon der islamischen Welt. Klaus Kreiser, Werner Diem, Hans Georg Majer ed. 3 Bde., Stuttgart, 1974 (Urban-Taschenbücher, 200/1-3).",
	"200. Ramazanov, K. T. Türk dillärinin ğänub-ğarb ġrupunda ġoša sözlär (jemäk-ičmäk adları). ADI 1974.2.51-60. [Wortpaare in den südwestlichen Turksprachen: Speisen und Getränke. Russ. Res.]",
	"2392. Johnson,   C.   D.      Regular   disharmony   in   Kirghiz.   In: TA 10.274.8^-99.",
	"954. Ebied, R. Y.—M. J. L. Young. A list of Ottoman governors of Aleppo, A. H. 1002-1168. In: AION 34.1.1974.103-108.",
	"191. Ljubljana (Laibach), 4.-5. XII. 1975: Jugoslovenska orijentalistika i nesvrstani svijet [Die jugoslavische Orientalistik und die blockfreie Welt].",
	"3. Biographisches Lexikon zur Geschichte Südosteuropas [s. TA 1.3, 2.3, 3.3].",
	"1584. Mehrländer, Ursula     Türkische Jugendliche - keine beruflichen Chancen in Deutschland? Bonn, 1983, 228S.",
	"1667. ArsenijeviĆ, Lazar-Batalaka     Istorija srpskog ustanka. Vladimir stojancević ed. Beograd, 1979, 1 S.",
}

func TestExtract_Robustness(t *testing.T) {
	for _, volume := range []string{"1", "5"} {
		for _, raw := range robustnessInputs {
			rec, err := Extract(model.Record{Volume: volume, RawText: raw})
			require.NoError(t, err, raw)
			assert.Regexp(t, `^\d+$`, rec.Number, raw)
			assert.Equal(t, raw, rec.RawText)
			assert.Equal(t, FullyParsed(rec.RemainingText), rec.FullyParsed, raw)
		}
	}
}

func TestExtract_Invariants(t *testing.T) {
	for _, raw := range robustnessInputs {
		rec := extract(t, "5", raw)
		if rec.Editors != "" {
			assert.Equal(t, model.CitationTypeCollection, rec.Type, raw)
		}
		if rec.Type == model.CitationTypeConference {
			assert.NotEmpty(t, rec.Location, raw)
			assert.NotEmpty(t, rec.Date, raw)
		}
		if rec.FullyParsed {
			assert.Regexp(t, `^(?:\{\{\{\s*\w+\s*\}\}\}[.,\s]*)+$`, rec.RemainingText, raw)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	for _, raw := range robustnessInputs {
		rec := extract(t, "5", raw)
		if !rec.FullyParsed {
			continue
		}
		assert.Equal(t, rec, Run(rec, Steps(), nil), raw)

		bare := model.Record{Volume: rec.Volume, Number: rec.Number, RawText: rec.RawText, RemainingText: rec.RemainingText}
		assert.Equal(t, rec.RemainingText, Run(bare, Steps(), nil).RemainingText, raw)
	}
}

func TestRun_OrderMatters(t *testing.T) {
	raw := "1. Lexikon der islamischen Welt. Klaus Kreiser, Werner Diem, Hans Georg Majer ed. 3 Bde., Stuttgart, 1974 (Urban-Taschenbücher, 200/1-3)."
	want := extract(t, "3", raw)

	steps := Steps()
	reversed := make([]Step, len(steps))
	for i, s := range steps {
		reversed[len(steps)-1-i] = s
	}

	got := Run(model.Record{Volume: "3", Number: "1", RawText: raw, RemainingText: want.RawText[3:]}, reversed, nil)
	assert.NotEqual(t, want.RemainingText, got.RemainingText)
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Series)
}

func TestRun_Trace(t *testing.T) {
	var names []string
	rec, err := ExtractTrace(model.Record{Volume: "20", RawText: "1. Berlin, 1990, 234 S."},
		func(step string, before, after model.Record) {
			names = append(names, step)
			if step == "location_year_pages" {
				assert.Equal(t, "Berlin, 1990, 234 S.", before.RemainingText)
				assert.Equal(t, "Berlin", after.Location)
			}
		})
	require.NoError(t, err)
	assert.True(t, rec.FullyParsed)
	require.Len(t, names, len(Steps()))
	assert.Equal(t, "review", names[0])
	assert.Equal(t, "title", names[len(names)-1])
}

func TestExtractTitle_SkipsMarkerOnlyCandidates(t *testing.T) {
	rec := ExtractTitle(model.Record{RemainingText: "{{{ authors }}} {{{ in }}}"})
	assert.Empty(t, rec.Title)
	assert.Equal(t, "{{{ authors }}} {{{ in }}}", rec.RemainingText)
}

func TestFullyParsed(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"{{{ title }}}", true},
		{"{{{ authors }}} {{{ title }}}. {{{ in }}}", true},
		{"{{{ title }}}.  {{{ editors }}}   {{{ location }}},", true},
		{"", false},
		{"Berlin {{{ title }}}", false},
		{"{{{ title }}} Berlin", false},
		{" {{{ title }}}", true},
		{" {{{ number_of_volumes }}} {{{ location }}} {{{ date_published }}} ", true},
		{"  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, FullyParsed(tt.text))
		})
	}
}
