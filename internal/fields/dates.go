package fields

import (
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

var conferenceDateRe = pattern.MustCompile(
	`^(?:(?<dayStart>\d{1,2})\. *(?:(?<monthStart>`+pattern.RomanMonth+`)\. *)?(?<yearStart>\d{4})?[-—])?`+
		`(?<dayEnd>\d{1,2})\. *(?<monthEnd>`+pattern.RomanMonth+`)\. *(?<yearEnd>\d{4})`, pattern.None)

var romanMonths = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6,
	"vii": 7, "viii": 8, "ix": 9, "x": 10, "xi": 11, "xii": 12,
}

// ParseDatePublished returns the publication year when s is a plain year.
func ParseDatePublished(s string) *model.DatePublished {
	year, err := strconv.Atoi(s)
	if err != nil || year <= 0 || strings.TrimSpace(s) != s {
		return nil
	}
	return &model.DatePublished{Year: year}
}

// ParseConferenceDate parses "4.-5. XII. 1975", "30. VI.-2. VII. 1970" and
// similar spans. Start and end default to each other's month and year.
func ParseConferenceDate(s string) *model.ConferenceDate {
	if s == "" {
		return nil
	}
	out := &model.ConferenceDate{Raw: s}
	m := conferenceDateRe.Find(s)
	if m == nil {
		return out
	}

	dayEnd := atoi(m.Group("dayEnd").Text)
	monthEnd := romanMonths[strings.ToLower(m.Group("monthEnd").Text)]
	yearEnd := atoi(m.Group("yearEnd").Text)

	dayStart, monthStart, yearStart := dayEnd, monthEnd, yearEnd
	if g := m.Group("dayStart"); g.Matched {
		dayStart = atoi(g.Text)
	}
	if g := m.Group("monthStart"); g.Matched {
		monthStart = romanMonths[strings.ToLower(g.Text)]
	}
	if g := m.Group("yearStart"); g.Matched {
		yearStart = atoi(g.Text)
	}

	out.Start = isoDate(yearStart, monthStart, dayStart)
	out.End = isoDate(yearEnd, monthEnd, dayEnd)
	return out
}

// isoDate formats a calendar day, or returns "" if it does not exist.
func isoDate(year, month, day int) string {
	if month < 1 || month > 12 || day < 1 {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return ""
	}
	return t.Format(time.DateOnly)
}
