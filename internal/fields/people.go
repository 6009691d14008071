package fields

import (
	"strings"

	"github.com/polera/gonameparts"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

var (
	authorSeparator = pattern.MustCompile(`(?:—| +- +)`, pattern.None)
	peopleSeparator = pattern.MustCompile(`\s*(?:,| und )\s*`, pattern.None)
)

// ParseAuthors splits an author block ("Pollo, St. - Pulaha, S.") into
// people.
func ParseAuthors(s string) []model.Person {
	if s == "" {
		return nil
	}
	return parseAll(authorSeparator.Split(s))
}

// ParsePeople splits an editor or translator list ("Klaus Kreiser, Werner
// Diem und Hans Georg Majer") into people.
func ParsePeople(s string) []model.Person {
	if s == "" {
		return nil
	}
	return parseAll(peopleSeparator.Split(s))
}

func parseAll(names []string) []model.Person {
	out := make([]model.Person, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		out = append(out, ParseName(n))
	}
	return out
}

// ParseName splits a printed name into given, middle and last names. Names
// with a comma are read as "Last, First Middle". All others go through
// gonameparts, which also separates titles ("Dr.") and generational
// suffixes ("Jr."). Raw always keeps the input.
func ParseName(raw string) model.Person {
	p := model.Person{Raw: raw}
	name := strings.TrimSpace(raw)

	if last, given, ok := strings.Cut(name, ","); ok {
		p.Last = cleanLast(last)
		parts := strings.Fields(given)
		if len(parts) > 0 {
			p.First = parts[0]
			p.Middle = strings.Join(parts[1:], " ")
		}
		return p
	}

	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
	case 1:
		p.Last = cleanLast(parts[0])
	default:
		if np, ok := nameParts(parts); ok {
			p.Title = np.Salutation
			p.First = np.FirstName
			p.Middle = np.MiddleName
			p.Last = cleanLast(np.LastName)
			p.Suffix = strings.TrimSpace(np.Generation + " " + np.Suffix)
			return p
		}
		p.First = parts[0]
		p.Middle = strings.Join(parts[1:len(parts)-1], " ")
		p.Last = cleanLast(parts[len(parts)-1])
	}
	return p
}

// nameParts parses a "Given Last" name with gonameparts. The result is
// rejected when a word went missing, when a generation appears before the
// last word (initials such as "v." or "I." read as numerals), or when the
// name looked corporate and nothing was slotted.
func nameParts(words []string) (gonameparts.NameParts, bool) {
	np := gonameparts.Parse(strings.Join(words, " "))
	if np.FirstName == "" || np.LastName == "" {
		return np, false
	}
	if np.Generation != "" && np.Generation != words[len(words)-1] &&
		(np.Suffix == "" || np.Suffix != words[len(words)-1]) {
		return np, false
	}

	var got []string
	for _, part := range []string{np.Salutation, np.FirstName, np.MiddleName, np.LastName, np.Generation, np.Suffix} {
		got = append(got, strings.Fields(part)...)
	}
	if len(got) != len(words) {
		return np, false
	}
	seen := make(map[string]int, len(words))
	for _, w := range words {
		seen[w]++
	}
	for _, w := range got {
		if seen[w] == 0 {
			return np, false
		}
		seen[w]--
	}
	return np, true
}

// cleanLast drops the asterisk the annual uses to flag pseudonyms.
func cleanLast(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "*")
}
