package model

import "slices"

// Record is a citation while it passes through field extraction. Field
// values are the raw strings cut out of RemainingText; they are refined
// into a Citation afterwards.
//
// Record is a value type. Extraction steps receive a copy and return a new
// value, so intermediate states can be kept for inspection.
type Record struct {
	Volume        string       `json:"volume"`
	Number        string       `json:"number,omitempty"`
	OriginalIndex int          `json:"originalIndex"`
	Type          CitationType `json:"type,omitempty"`
	RawText       string       `json:"rawText"`
	RemainingText string       `json:"remainingText,omitempty"`
	Keywords      []string     `json:"keywords,omitempty"`
	Amendments    []string     `json:"amendments,omitempty"`

	Title           string   `json:"title,omitempty"`
	Authors         string   `json:"authors,omitempty"`
	Editors         string   `json:"editors,omitempty"`
	Translators     string   `json:"translators,omitempty"`
	Date            string   `json:"date,omitempty"`
	Comment         string   `json:"comment,omitempty"`
	TAReferences    string   `json:"taReferences,omitempty"`
	PublishedIn     string   `json:"publishedIn,omitempty"`
	NumberOfPages   string   `json:"numberOfPages,omitempty"`
	NumberOfVolumes string   `json:"numberOfVolumes,omitempty"`
	Reviews         string   `json:"reviews,omitempty"`
	AbstractIn      string   `json:"abstractIn,omitempty"`
	Location        string   `json:"location,omitempty"`
	Material        []string `json:"material,omitempty"`
	DatePublished   string   `json:"datePublished,omitempty"`
	PageStart       string   `json:"pageStart,omitempty"`
	PageEnd         string   `json:"pageEnd,omitempty"`
	Series          string   `json:"series,omitempty"`

	FullyParsed bool `json:"fullyParsed"`
}

// Clone returns a copy of r that shares no slices with it.
func (r Record) Clone() Record {
	r.Keywords = slices.Clone(r.Keywords)
	r.Amendments = slices.Clone(r.Amendments)
	r.Material = slices.Clone(r.Material)
	return r
}

// Rejected is a paragraph that was assembled as a citation but could not
// be turned into one.
type Rejected struct {
	ID            string `json:"id,omitempty"`
	RunID         string `json:"runId,omitempty"`
	Volume        string `json:"volume"`
	OriginalIndex int    `json:"originalIndex"`
	Text          string `json:"text"`
	Reason        string `json:"reason"`
}
