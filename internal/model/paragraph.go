package model

// Role represents the classified role of an OCR paragraph.
type Role string

const (
	RoleNone                Role = ""
	RoleKeyword             Role = "keyword"
	RoleCitationStart       Role = "citation"
	RoleAmendment           Role = "amendment"
	RoleJournalSectionBegin Role = "journal-section-begin"
	RoleAuthorIndexBegin    Role = "author-index-begin"
)

// AllRoles returns every non-empty paragraph role.
func AllRoles() []Role {
	return []Role{
		RoleKeyword,
		RoleCitationStart,
		RoleAmendment,
		RoleJournalSectionBegin,
		RoleAuthorIndexBegin,
	}
}

// String returns the role name, or "none" for unclassified paragraphs.
func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Paragraph is one OCR text unit of a volume.
type Paragraph struct {
	OriginalIndex int    `json:"originalIndex"`
	MergedFrom    []int  `json:"mergedFrom,omitempty"`
	Volume        string `json:"volume"`
	Text          string `json:"text"`
	OriginalText  string `json:"originalText,omitempty"` // set when OCR post-processing rewrote Text
	Role          Role   `json:"type,omitempty"`
}

// KeywordName holds the German and English names of a keyword code.
type KeywordName struct {
	DE string `json:"de"`
	EN string `json:"en"`
}

// KeywordMapping maps keyword codes (e.g. "AC") to their names.
type KeywordMapping map[string]KeywordName
