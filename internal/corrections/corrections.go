// Package corrections repairs paragraph-level OCR errors before
// classification: paragraphs split across page breaks are merged, stray
// ones dropped, garbled ones replaced or split, and broken bullets fixed.
package corrections

import (
	_ "embed"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

// Op is a correction operation.
type Op string

const (
	OpMerge   Op = "merge"   // join the paragraphs into the first one
	OpDrop    Op = "drop"    // remove the paragraphs
	OpReplace Op = "replace" // replace the text of a single paragraph
	OpSplit   Op = "split"   // split a single paragraph at Separator
)

// Correction is one repair, addressed by original paragraph indices.
type Correction struct {
	Volume    string `yaml:"volume" json:"volume"`
	Op        Op     `yaml:"op" json:"op"`
	Indices   []int  `yaml:"indices" json:"indices"`
	Text      string `yaml:"text,omitempty" json:"text,omitempty"`
	Separator string `yaml:"separator,omitempty" json:"separator,omitempty"`
}

func (c Correction) validate() error {
	if c.Volume == "" {
		return eris.New("corrections: missing volume")
	}
	if len(c.Indices) == 0 {
		return eris.Errorf("corrections: volume %s: %s without indices", c.Volume, c.Op)
	}
	switch c.Op {
	case OpMerge:
		if len(c.Indices) < 2 {
			return eris.Errorf("corrections: volume %s: merge needs at least two indices", c.Volume)
		}
	case OpDrop:
	case OpReplace:
		if len(c.Indices) != 1 {
			return eris.Errorf("corrections: volume %s: replace takes exactly one index", c.Volume)
		}
	case OpSplit:
		if len(c.Indices) != 1 || c.Separator == "" {
			return eris.Errorf("corrections: volume %s: split takes one index and a separator", c.Volume)
		}
	default:
		return eris.Errorf("corrections: volume %s: unknown op %q", c.Volume, c.Op)
	}
	return nil
}

//go:embed defaults.yaml
var defaultsYAML []byte

// Default returns the built-in corrections.
func Default() []Correction {
	cs, err := Parse(defaultsYAML)
	if err != nil {
		panic(err) // embedded file is part of the build
	}
	return cs
}

// Load reads corrections from a YAML file.
func Load(path string) ([]Correction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "corrections: read %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML list of corrections.
func Parse(data []byte) ([]Correction, error) {
	var cs []Correction
	if err := yaml.Unmarshal(data, &cs); err != nil {
		return nil, eris.Wrap(err, "corrections: parse yaml")
	}
	for _, c := range cs {
		if err := c.validate(); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// Apply runs the corrections that belong to volume over its paragraphs,
// in list order, and then fixes broken bullets. A correction that names
// an index the volume does not have is skipped with a warning. The input
// slice is not modified.
func Apply(volume string, paragraphs []model.Paragraph, cs []Correction) []model.Paragraph {
	out := slices.Clone(paragraphs)
	log := zap.L().With(zap.String("volume", volume))

	applied := 0
	for _, c := range cs {
		if c.Volume != volume {
			continue
		}
		positions, ok := locate(out, c.Indices)
		if !ok {
			log.Warn("corrections: index not found, skipping",
				zap.String("op", string(c.Op)),
				zap.Ints("indices", c.Indices),
			)
			continue
		}
		out = apply(out, c, positions)
		applied++
	}

	out = FixBullets(out)
	if applied > 0 {
		log.Debug("corrections: applied", zap.Int("corrections", applied), zap.Int("paragraphs", len(out)))
	}
	return out
}

// locate returns the slice positions of the paragraphs with the given
// original indices.
func locate(paragraphs []model.Paragraph, indices []int) ([]int, bool) {
	positions := make([]int, len(indices))
	for i, idx := range indices {
		pos := slices.IndexFunc(paragraphs, func(p model.Paragraph) bool {
			return p.OriginalIndex == idx && len(p.MergedFrom) == 0
		})
		if pos < 0 {
			return nil, false
		}
		positions[i] = pos
	}
	return positions, true
}

func apply(paragraphs []model.Paragraph, c Correction, positions []int) []model.Paragraph {
	switch c.Op {
	case OpMerge:
		first := positions[0]
		merged := paragraphs[first]
		texts := make([]string, len(positions))
		merged.MergedFrom = make([]int, len(positions))
		for i, pos := range positions {
			texts[i] = paragraphs[pos].Text
			merged.MergedFrom[i] = paragraphs[pos].OriginalIndex
		}
		merged.Text = strings.Join(texts, " ")
		merged.OriginalText = ""
		paragraphs[first] = merged
		return remove(paragraphs, positions[1:])

	case OpDrop:
		return remove(paragraphs, positions)

	case OpReplace:
		p := &paragraphs[positions[0]]
		if p.OriginalText == "" {
			p.OriginalText = p.Text
		}
		p.Text = c.Text

	case OpSplit:
		pos := positions[0]
		src := paragraphs[pos]
		parts := strings.Split(src.Text, c.Separator)
		split := make([]model.Paragraph, 0, len(parts))
		for _, part := range parts {
			p := src
			p.Text = strings.TrimSpace(part)
			p.OriginalText = src.Text
			split = append(split, p)
		}
		return slices.Concat(paragraphs[:pos], split, paragraphs[pos+1:])
	}
	return paragraphs
}

func remove(paragraphs []model.Paragraph, positions []int) []model.Paragraph {
	drop := make(map[int]bool, len(positions))
	for _, pos := range positions {
		drop[pos] = true
	}
	out := make([]model.Paragraph, 0, len(paragraphs)-len(drop))
	for i, p := range paragraphs {
		if !drop[i] {
			out = append(out, p)
		}
	}
	return out
}

var brokenBullet = pattern.MustCompile(`^[φ#0Φ]\s+`, pattern.None)

// FixBullets rewrites the OCR misreadings of the amendment bullet "•" as
// φ, #, 0 or Φ. The text before the rewrite is kept in OriginalText.
func FixBullets(paragraphs []model.Paragraph) []model.Paragraph {
	paragraphs = slices.Clone(paragraphs)
	for i, p := range paragraphs {
		if !brokenBullet.MatchString(p.Text) {
			continue
		}
		if p.OriginalText == "" {
			paragraphs[i].OriginalText = p.Text
		}
		_, size := utf8.DecodeRuneInString(p.Text)
		paragraphs[i].Text = "•" + p.Text[size:]
	}
	return paragraphs
}
