package model

// CitationType classifies a bibliographic entry.
type CitationType string

const (
	CitationTypeArticle    CitationType = "article"
	CitationTypeCollection CitationType = "collection"
	CitationTypeMonograph  CitationType = "monograph"
	CitationTypeRepetition CitationType = "repetition"
	CitationTypeConference CitationType = "conference"
)

// Person is an author, editor or translator. Raw keeps the name as it
// appeared in the citation.
type Person struct {
	First  string `json:"first,omitempty"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last,omitempty"`
	Title  string `json:"title,omitempty"`
	Suffix string `json:"suffix,omitempty"`
	Raw    string `json:"raw"`
}

// Reference is a parsed "published in" venue.
type Reference struct {
	Type            string `json:"type,omitempty"` // "ta" or "journal", empty when unrecognised
	Raw             string `json:"raw"`
	Journal         string `json:"journal,omitempty"`
	Number          int    `json:"number,omitempty"`
	Volume          int    `json:"volume,omitempty"`
	VolumeStart     int    `json:"volumeStart,omitempty"`
	VolumeEnd       int    `json:"volumeEnd,omitempty"`
	Issue           int    `json:"issue,omitempty"`
	IssueStart      int    `json:"issueStart,omitempty"`
	IssueEnd        int    `json:"issueEnd,omitempty"`
	Year            int    `json:"year,omitempty"`
	YearStart       int    `json:"yearStart,omitempty"`
	YearEnd         int    `json:"yearEnd,omitempty"`
	YearParentheses int    `json:"yearParentheses,omitempty"`
	PageStart       int    `json:"pageStart,omitempty"`
	PageEnd         int    `json:"pageEnd,omitempty"`
}

// Material is a physical annotation such as maps or tables.
type Material struct {
	Count int    `json:"count,omitempty"`
	Type  string `json:"type,omitempty"`
	Raw   string `json:"raw"`
}

// DatePublished is the publication date of a monograph or collection.
type DatePublished struct {
	Year int `json:"year"`
}

// ConferenceDate is the date span of a conference. Start and End are ISO
// dates (YYYY-MM-DD); they are empty when the OCR text does not describe a
// valid calendar day.
type ConferenceDate struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Raw   string `json:"raw"`
}

// TAReference points at another citation of the annual.
type TAReference struct {
	Volume string `json:"volume"`
	Number int    `json:"number"`
}

// Keyword is a normalized subject heading. Super is the heading of the
// enclosing section ("A" for "AB"); synthesised super headings have no Raw.
type Keyword struct {
	Code   string   `json:"code,omitempty"`
	NameDE string   `json:"nameDE,omitempty"`
	NameEN string   `json:"nameEN,omitempty"`
	Raw    string   `json:"raw,omitempty"`
	Super  *Keyword `json:"super,omitempty"`
}

// Citation is the final, structured form of a bibliographic entry.
type Citation struct {
	ID              string          `json:"id,omitempty"`
	Volume          string          `json:"volume"`
	Number          int             `json:"number"`
	OriginalIndex   int             `json:"originalIndex,omitempty"`
	Type            CitationType    `json:"type,omitempty"`
	Title           string          `json:"title,omitempty"`
	Authors         []Person        `json:"authors,omitempty"`
	Editors         []Person        `json:"editors,omitempty"`
	Translators     []Person        `json:"translators,omitempty"`
	Keywords        []Keyword       `json:"keywords,omitempty"`
	Comments        []string        `json:"comments,omitempty"`
	Reviews         []string        `json:"reviews,omitempty"`
	AbstractIn      string          `json:"abstractIn,omitempty"`
	Amendments      []string        `json:"amendments,omitempty"`
	PublishedIn     *Reference      `json:"publishedIn,omitempty"`
	NumberOfPages   string          `json:"numberOfPages,omitempty"`
	NumberOfVolumes string          `json:"numberOfVolumes,omitempty"`
	Location        string          `json:"location,omitempty"`
	Material        []Material      `json:"material,omitempty"`
	DatePublished   *DatePublished  `json:"datePublished,omitempty"`
	Date            *ConferenceDate `json:"date,omitempty"`
	TAReferences    []TAReference   `json:"taReferences,omitempty"`
	PageStart       int             `json:"pageStart,omitempty"`
	PageEnd         int             `json:"pageEnd,omitempty"`
	Series          string          `json:"series,omitempty"`
	RawText         string          `json:"rawText"`
	RemainingText   string          `json:"remainingText,omitempty"`
	FullyParsed     bool            `json:"fullyParsed"`
}

// Key identifies a citation by volume and number.
type Key struct {
	Volume string
	Number int
}

// Key returns the volume/number key of c.
func (c Citation) Key() Key {
	return Key{Volume: c.Volume, Number: c.Number}
}
