package pattern

// Name grammars for authors, editors and translators as they are printed
// in the annual: "Last, Given" in author position, "Given Last" in editor
// and translator position.
const (
	// GivenNames matches up to four given names or initials ("Hans Georg",
	// "L.", "M.-L.") not followed by another initial.
	GivenNames = `(?:\w{1,2}\.(?:-\w{1,2}\.)?|[\w-]+)(?: (?:\w{1,2}\.(?:-\w{1,2}\.)?|[\w-]+)){0,3}(?! +\w\.)`

	// LastName matches a surname of up to three words, optionally starred.
	LastName = `\*?(?:\w+ ){0,2}[\w'-]+`

	LastNameGivenNames = `(?:` + LastName + `, +` + GivenNames + `)`
	GivenNamesLastName = `(?:` + GivenNames + ` +` + LastName + `)`
)

// Grammars shared by the cascade and field parsing.
const (
	// RomanMonth matches a month written as a Roman numeral.
	RomanMonth = `[IVX]{1,4}`

	// ConferenceDate matches "4.-5. XII. 1975", "12. IX. 1970" and ranges
	// spanning months or years.
	ConferenceDate = `(?:\d{1,2}\. *(?:` + RomanMonth + `\. *)?(?:\d{4})?[-—])?\d{1,2}\. *` + RomanMonth + `\. *\d{4}`

	// PageCount matches an OCR page count such as "228", "XV+557" or
	// "XVΠ+274" (Π is how the OCR reads a doubled I).
	PageCount = `[\d +DCLIVXΠ]+`
)
