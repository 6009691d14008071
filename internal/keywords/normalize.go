package keywords

import (
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

// placeholderSuffix marks a heading that only exists as the parent of a
// more specific one.
const placeholderSuffix = "___"

// ocrFixes repairs letters the OCR reads as Greek or as lookalike glyphs.
var ocrFixes = strings.NewReplacer(
	"Α", "A",
	"Β", "B",
	"Ή", "H",
	"DΠ", "DII",
	"dľf.", "DIF.",
	`DJx\C.`, "DJAC.",
	"dha A.", "DH.",
	"Bí.", "BI",
)

var (
	codedHeading  = pattern.MustCompile(`(?<code>[A-Za-z]+)(?:\..+)?`, pattern.None)
	spacedCode    = pattern.MustCompile(`^(?<code>[A-Z ]+)\.`, pattern.None)
	missingPeriod = pattern.MustCompile(`(?<code>[A-Z]+) .+`, pattern.None)
)

// Normalizer maps raw headings to keywords. Headings repeat for every
// citation of a section, so results are memoized per raw heading.
// A Normalizer is safe for concurrent use.
type Normalizer struct {
	mapping model.KeywordMapping
	memo    *gocache.Cache
}

// NewNormalizer returns a Normalizer for the given code mapping.
func NewNormalizer(mapping model.KeywordMapping) *Normalizer {
	return &Normalizer{
		mapping: mapping,
		memo:    gocache.New(gocache.NoExpiration, 0),
	}
}

// Normalize turns one raw heading into a keyword. Headings without a
// recognisable code keep only their raw text.
func (n *Normalizer) Normalize(raw string) model.Keyword {
	raw = ocrFixes.Replace(strings.TrimSpace(raw))
	if v, ok := n.memo.Get(raw); ok {
		return v.(model.Keyword)
	}

	kw := n.normalize(raw)
	n.memo.SetDefault(raw, kw)
	return kw
}

func (n *Normalizer) normalize(raw string) model.Keyword {
	code, ok := extractCode(raw)
	if !ok {
		zap.L().Warn("keywords: no keyword code found", zap.String("raw", raw))
		return model.Keyword{Raw: raw}
	}

	kw := model.Keyword{Code: code, Raw: raw}
	if name, ok := n.mapping[strings.ToUpper(code)]; ok {
		kw.Code = strings.ToUpper(code)
		kw.NameDE = name.DE
		kw.NameEN = name.EN
	}
	if strings.HasSuffix(raw, placeholderSuffix) {
		kw.Raw = ""
	}
	kw.Super = n.super(strings.ToUpper(code))
	return kw
}

// super returns the keyword of the longest known proper prefix of code.
// Codes are hierarchical: "ABC" sits below "AB", which sits below "A".
func (n *Normalizer) super(code string) *model.Keyword {
	for i := len(code) - 1; i >= 1; i-- {
		name, ok := n.mapping[code[:i]]
		if !ok {
			continue
		}
		return &model.Keyword{
			Code:   code[:i],
			NameDE: name.DE,
			NameEN: name.EN,
			Super:  n.super(code[:i]),
		}
	}
	return nil
}

// Apply normalizes the keywords of c. Keywords that already carry a code
// are kept as they are.
func (n *Normalizer) Apply(c model.Citation) model.Citation {
	if len(c.Keywords) == 0 {
		return c
	}
	keywords := make([]model.Keyword, len(c.Keywords))
	for i, k := range c.Keywords {
		if k.Code != "" {
			keywords[i] = k
			continue
		}
		keywords[i] = n.Normalize(k.Raw)
	}
	c.Keywords = keywords
	return c
}

// extractCode finds the section code of a heading such as "AB. Sprache".
// OCR sometimes splits the code with spaces ("A B. Sprache") or loses the
// period ("AB Sprache").
func extractCode(raw string) (string, bool) {
	if m := codedHeading.FullMatch(raw); m != nil {
		return m.Group("code").Text, true
	}
	if m := spacedCode.Find(raw); m != nil {
		fixed := strings.ReplaceAll(m.Group("code").Text, " ", "") + raw[strings.Index(raw, "."):]
		if m := codedHeading.FullMatch(fixed); m != nil {
			return m.Group("code").Text, true
		}
	}
	if m := missingPeriod.FullMatch(raw); m != nil {
		return m.Group("code").Text, true
	}
	return "", false
}
