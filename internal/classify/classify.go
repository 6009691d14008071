// Package classify assigns a role to every OCR paragraph of a volume.
//
// Classification is a single forward pass with a small amount of state:
// whether the journal section, the citation section and the author index
// have begun, the latest accepted citation number, and the role of the
// previous paragraph. Paragraph order matters, so a volume must never be
// classified concurrently.
package classify

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

// MaxCitationGap is how far a citation number may jump ahead of the latest
// accepted one and still be taken as the next citation.
const MaxCitationGap = 500

// KeywordMaxCost is the edit budget for fuzzy keyword headings.
const KeywordMaxCost = 2

// GapRange is an inclusive range of citation numbers lost to OCR.
type GapRange struct {
	Start int `yaml:"start" mapstructure:"start"`
	End   int `yaml:"end" mapstructure:"end"`
}

// DefaultKnownGaps lists the numbering gaps found in the scanned volumes.
var DefaultKnownGaps = map[string][]GapRange{
	"6": {{1823, 1831}, {1871, 1883}, {1894, 1902}},
	"8": {{607, 617}, {629, 638}},
}

var (
	journalSectionBegin = pattern.MustCompile(`ZEITSCHRIFTEN +UND`, pattern.None)
	citationStart       = pattern.MustCompile(`(?<number>\d+)\.\.?\s+.+`, pattern.Singleline)
	brokenBullet        = pattern.MustCompile(`^[φ#0Φ]`, pattern.None)
)

var authorIndexMarkers = map[string]bool{
	"Autoren, Herausgeber, Übersetzer, Rezensenten": true,
	"INDEX": true,
}

var amendmentPrefixes = []string{"•", "Rez.", "Bericht"}

// Classifier holds the read-only inputs of classification. It is safe to
// share one Classifier between goroutines classifying different volumes.
type Classifier struct {
	mapping  model.KeywordMapping
	headings []string
	exact    map[string]bool
	gaps     map[string][]GapRange
	maxGap   int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithKnownGaps replaces the default OCR numbering gaps.
func WithKnownGaps(gaps map[string][]GapRange) Option {
	return func(c *Classifier) {
		if gaps != nil {
			c.gaps = gaps
		}
	}
}

// WithMaxCitationGap overrides MaxCitationGap.
func WithMaxCitationGap(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxGap = n
		}
	}
}

// New creates a Classifier for the given keyword mapping.
func New(mapping model.KeywordMapping, opts ...Option) *Classifier {
	c := &Classifier{
		mapping: mapping,
		exact:   make(map[string]bool, len(mapping)),
		gaps:    DefaultKnownGaps,
		maxGap:  MaxCitationGap,
	}
	codes := make([]string, 0, len(mapping))
	for code := range mapping {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		h := strings.ToLower(code + ". " + mapping[code].DE)
		c.headings = append(c.headings, h)
		c.exact[h] = true
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type state struct {
	journalStarted   bool
	citationsStarted bool
	indexStarted     bool
	latestNumber     int
	previous         model.Role
}

// Classify returns a copy of paragraphs with Role set. Paragraphs that
// match no rule keep RoleNone.
func (c *Classifier) Classify(paragraphs []model.Paragraph) []model.Paragraph {
	out := make([]model.Paragraph, len(paragraphs))
	st := &state{}
	counts := make(map[model.Role]int)

	for i, p := range paragraphs {
		p.Role = c.next(st, p)
		out[i] = p
		counts[p.Role]++
		if !isPageFooter(p.Text) {
			st.previous = p.Role
		}
	}

	if len(paragraphs) > 0 {
		zap.L().Debug("classify: volume done",
			zap.String("volume", paragraphs[0].Volume),
			zap.Int("paragraphs", len(paragraphs)),
			zap.Int("keywords", counts[model.RoleKeyword]),
			zap.Int("citations", counts[model.RoleCitationStart]),
			zap.Int("amendments", counts[model.RoleAmendment]),
		)
	}
	return out
}

// next applies the transition rules in priority order.
func (c *Classifier) next(st *state, p model.Paragraph) model.Role {
	text := p.Text
	role := model.RoleNone

	if !st.journalStarted && journalSectionBegin.MatchString(text) {
		st.journalStarted = true
		role = model.RoleJournalSectionBegin
	}

	if st.journalStarted && !st.citationsStarted {
		if c.isFuzzyKeyword(text) {
			st.citationsStarted = true
			return model.RoleKeyword
		}
	}

	if !st.citationsStarted || st.indexStarted {
		return role
	}

	mayAmend := st.previous == model.RoleCitationStart || st.previous == model.RoleAmendment
	number, isCitation := citationNumber(text)

	switch {
	case c.isExactKeyword(text):
		return model.RoleKeyword
	case isCitation && (c.withinGap(st.latestNumber, number) || c.followsKnownGap(p.Volume, number)):
		st.latestNumber = number
		return model.RoleCitationStart
	case c.isFuzzyKeyword(text):
		return model.RoleKeyword
	case c.isKeywordCode(text):
		return model.RoleKeyword
	case mayAmend && hasAmendmentPrefix(text):
		return model.RoleAmendment
	case authorIndexMarkers[text]:
		st.indexStarted = true
		return model.RoleAuthorIndexBegin
	case mayAmend && brokenBullet.MatchString(text):
		return model.RoleAmendment
	case isCitation:
		zap.L().Debug("classify: citation number outside expected window",
			zap.String("volume", p.Volume),
			zap.Int("index", p.OriginalIndex),
			zap.Int("number", number),
			zap.Int("latest", st.latestNumber),
		)
		st.latestNumber = number
		return model.RoleCitationStart
	}
	return role
}

func citationNumber(text string) (int, bool) {
	m := citationStart.FullMatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m.Group("number").Text)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *Classifier) withinGap(latest, number int) bool {
	d := number - latest
	return d > 0 && d <= c.maxGap
}

// followsKnownGap reports whether number is the first citation after a
// documented OCR gap of the volume.
func (c *Classifier) followsKnownGap(volume string, number int) bool {
	for _, g := range c.gaps[volume] {
		if number == g.End+1 {
			return true
		}
	}
	return false
}

func (c *Classifier) isExactKeyword(text string) bool {
	return c.exact[strings.ToLower(text)]
}

// isFuzzyKeyword reports whether text is within KeywordMaxCost edits of a
// keyword heading ("<code>. <German name>"), ignoring case.
func (c *Classifier) isFuzzyKeyword(text string) bool {
	_, ok := c.MatchHeading(text)
	return ok
}

// MatchHeading returns the keyword heading closest to text within the edit
// budget. Ties go to the heading that sorts first by code.
func (c *Classifier) MatchHeading(text string) (string, bool) {
	lower := strings.ToLower(text)
	if c.exact[lower] {
		return lower, true
	}
	best, bestCost := "", KeywordMaxCost+1
	for cost := 1; cost <= KeywordMaxCost && best == ""; cost++ {
		for _, h := range c.headings {
			if withinDistance(lower, h, cost) {
				best, bestCost = h, cost
				break
			}
		}
	}
	return best, bestCost <= KeywordMaxCost
}

// isKeywordCode reports whether the text before the first period is a
// known keyword code.
func (c *Classifier) isKeywordCode(text string) bool {
	code, _, _ := strings.Cut(text, ".")
	_, ok := c.mapping[code]
	return ok
}

func hasAmendmentPrefix(text string) bool {
	for _, prefix := range amendmentPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}
