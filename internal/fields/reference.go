package fields

import (
	"strconv"
	"strings"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

// Sub-grammars of a journal reference such as "POF 20-21.1970/71 (1974).213-221".
const (
	yearGrammar   = `(?:(?<year>\d{4})|(?<yearStart>\d{4})[-—/](?<yearEnd>\d{2}(?:\d{2})?))(?: *\((?<yearParentheses>\d{4})\))?`
	pagesGrammar  = `(?:S\. ?)?(?<pageStart>\d+)(?:[-—](?<pageEnd>\d+))?`
	issueGrammar  = `(?:(?<issue>\d{1,3})|(?<issueStart>\d{1,3})[-—](?<issueEnd>\d{1,3}))`
	volumeGrammar = `(?:(?<volume>\d{1,2})|(?<volumeStart>\d{1,2})[-—](?<volumeEnd>\d{1,2}))`
	journalPrefix = `^(?<journal>(?:\p{L}|[\- ])+?) *`
)

const (
	ReferenceTA      = "ta"
	ReferenceJournal = "journal"
)

type referenceLayout struct {
	kind string
	re   *pattern.Regex
}

var referenceLayouts = buildReferenceLayouts()

func buildReferenceLayouts() []referenceLayout {
	layouts := []referenceLayout{{
		kind: ReferenceTA,
		re:   pattern.MustCompile(`^TA *(?<volume>\d+)\. *(?<number>\d+)(?:\. *`+pagesGrammar+`)?$`, pattern.None),
	}}
	// Most specific layout first.
	for _, parts := range [][]string{
		{volumeGrammar, issueGrammar, yearGrammar, pagesGrammar},
		{volumeGrammar, issueGrammar, pagesGrammar},
		{yearGrammar, issueGrammar, pagesGrammar},
		{volumeGrammar, yearGrammar, pagesGrammar},
		{yearGrammar, pagesGrammar},
		{yearGrammar},
	} {
		layouts = append(layouts, referenceLayout{
			kind: ReferenceJournal,
			re:   pattern.MustCompile(journalPrefix+strings.Join(parts, `\. *`)+`$`, pattern.None),
		})
	}
	return layouts
}

// ParseReference parses a published-in string. References that fit no
// known layout keep only Raw.
func ParseReference(s string) *model.Reference {
	raw := strings.Trim(s, ". ")
	if raw == "" {
		return nil
	}
	for _, l := range referenceLayouts {
		m := l.re.Find(raw)
		if m == nil {
			continue
		}
		ref := &model.Reference{Type: l.kind, Raw: raw}
		ref.Journal = strings.TrimSpace(m.Group("journal").Text)
		ref.Number = groupInt(m, "number")
		ref.Volume = groupInt(m, "volume")
		ref.VolumeStart = groupInt(m, "volumeStart")
		ref.VolumeEnd = groupInt(m, "volumeEnd")
		ref.Issue = groupInt(m, "issue")
		ref.IssueStart = groupInt(m, "issueStart")
		ref.IssueEnd = groupInt(m, "issueEnd")
		ref.Year = groupInt(m, "year")
		ref.YearStart = groupInt(m, "yearStart")
		ref.YearParentheses = groupInt(m, "yearParentheses")
		ref.PageStart = groupInt(m, "pageStart")
		ref.PageEnd = groupInt(m, "pageEnd")

		if end := m.Group("yearEnd").Text; len(end) == 2 && ref.YearStart > 0 {
			// "1970/71": the century comes from the start year.
			ref.YearEnd = ref.YearStart/100*100 + atoi(end)
		} else {
			ref.YearEnd = atoi(end)
		}
		return ref
	}
	return &model.Reference{Raw: raw}
}

func groupInt(m *pattern.Match, name string) int {
	return atoi(m.Group(name).Text)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
