// Package authors is a second pass over parsed citations that finds author
// names the cascade's name grammar missed, by looking for names already
// confirmed elsewhere in the corpus.
package authors

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/turkology-cli/internal/cascade"
	"github.com/sells-group/turkology-cli/internal/fields"
	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

// Seed lists names the cascade reliably misses because of OCR damage.
var Seed = []string{
	"Condurachi, Em",
	"Kakük, Z",
	"Yoman, Yakut",
	"Kobeneva, T. A",
	"Djukanovic, Marija",
	"Zagorka Janc",
	"Sohbweide, Hanna",
	"Tübkay, Cevdet",
	"Eren, ismail",
	"Baysal,   Jale",
	"Spiridonakis, B. G",
	"Uçankuş, Hasan T",
	"Landau, Jacob M",
	"Özeğe, Seyfettin",
}

// Harvest returns the distinct raw author names of citations plus Seed,
// sorted.
func Harvest(citations []model.Citation) []string {
	seen := make(map[string]bool)
	for _, c := range citations {
		for _, a := range c.Authors {
			if a.Raw != "" {
				seen[a.Raw] = true
			}
		}
	}
	for _, s := range Seed {
		seen[s] = true
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Eligible reports whether c is a candidate for reinforcement: no authors
// were found and the citation is not fully parsed.
func Eligible(c model.Citation) bool {
	return len(c.Authors) == 0 && !c.FullyParsed
}

// Reinforcer matches known author names at the start of a citation's
// remaining text.
type Reinforcer struct {
	names []knownName
}

type knownName struct {
	raw   string
	lower []rune
}

// NewReinforcer prepares the known names. Duplicates and blanks are
// dropped; the remaining names are tried in sorted order.
func NewReinforcer(known []string) *Reinforcer {
	sorted := slices.Clone(known)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	r := &Reinforcer{}
	for _, k := range sorted {
		lower := strings.ToLower(strings.TrimSpace(k))
		if lower == "" {
			continue
		}
		r.names = append(r.names, knownName{raw: k, lower: []rune(lower)})
	}
	return r
}

// Reinforce returns a copy of citations where eligible citations that open
// with known names carry those authors. It reports how many citations
// changed. Citations are independent, so they are matched concurrently.
func Reinforce(ctx context.Context, citations []model.Citation, known []string, concurrency int) ([]model.Citation, int, error) {
	r := NewReinforcer(known)
	out := slices.Clone(citations)

	var changed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i := range out {
		if !Eligible(out[i]) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if c, ok := r.Apply(out[i]); ok {
				out[i] = c
				changed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	zap.L().Info("authors: reinforcement complete",
		zap.Int("known_names", len(r.names)),
		zap.Int64("citations_updated", changed.Load()),
	)
	return out, int(changed.Load()), nil
}

// Apply tries the multi-author form first, then the single-author form. On
// success the authors marker replaces the names and the title step runs
// again if no title was found yet.
func (r *Reinforcer) Apply(c model.Citation) (model.Citation, bool) {
	if !Eligible(c) {
		return c, false
	}

	names, rest, ok := r.matchMultiple(c.RemainingText)
	if !ok {
		names, rest, ok = r.matchSingle(c.RemainingText)
	}
	if !ok {
		return c, false
	}

	authors := make([]model.Person, 0, len(names))
	for _, n := range names {
		authors = append(authors, fields.ParseName(n))
	}
	c.Authors = authors

	rec := cascade.ExtractTitle(model.Record{
		Title:         c.Title,
		RemainingText: pattern.Marker(pattern.FieldAuthors) + " " + rest,
	})
	c.Title = rec.Title
	c.RemainingText = rec.RemainingText
	c.FullyParsed = cascade.FullyParsed(c.RemainingText)
	return c, true
}

var (
	nameSeparator = pattern.MustCompile(`^ +(?:—|-) +`, pattern.None)
	titleStart    = pattern.MustCompile(`^\.?\s+(?<word>\p{Lu}[^ .]+ )`, pattern.None)
)

// matchSingle matches one known name at the start of text, followed by a
// capitalised word.
func (r *Reinforcer) matchSingle(text string) ([]string, string, bool) {
	runes := []rune(text)
	lower := lowerRunes(runes)

	best := noMatch
	for _, k := range r.names {
		for _, end := range k.candidateEnds(len(lower)) {
			d, ok := k.distanceTo(lower[:end])
			if !ok || !best.beatenBy(d, end) {
				continue
			}
			if m := titleStart.Find(string(runes[end:])); m != nil {
				best = nameMatch{end: end, dist: d, word: end + m.Group("word").Start}
			}
		}
	}
	if best == noMatch {
		return nil, "", false
	}
	return []string{string(runes[:best.end])}, string(runes[best.word:]), true
}

// matchMultiple matches two or more known names joined by dashes.
func (r *Reinforcer) matchMultiple(text string) ([]string, string, bool) {
	runes := []rune(text)
	lower := lowerRunes(runes)

	end, ok := r.bestAt(lower, 0)
	if !ok {
		return nil, "", false
	}
	names := []string{string(runes[:end])}
	pos := end
	for {
		sep := nameSeparator.Find(string(runes[pos:]))
		if sep == nil {
			break
		}
		start := pos + sep.End
		end, ok := r.bestAt(lower, start)
		if !ok {
			break
		}
		names = append(names, string(runes[start:end]))
		pos = end
	}
	if len(names) < 2 {
		return nil, "", false
	}
	m := titleStart.Find(string(runes[pos:]))
	if m == nil {
		return nil, "", false
	}
	return names, string(runes[pos+m.Group("word").Start:]), true
}

// bestAt returns the end of the closest known name starting at pos.
func (r *Reinforcer) bestAt(lower []rune, pos int) (int, bool) {
	best := noMatch
	rest := lower[pos:]
	for _, k := range r.names {
		for _, end := range k.candidateEnds(len(rest)) {
			if d, ok := k.distanceTo(rest[:end]); ok && best.beatenBy(d, end) {
				best = nameMatch{end: end, dist: d}
			}
		}
	}
	if best == noMatch {
		return 0, false
	}
	return pos + best.end, true
}

type nameMatch struct {
	end  int
	dist int
	word int
}

var noMatch = nameMatch{end: -1, dist: maxCost + 1}

// beatenBy reports whether a candidate with distance d and length end beats
// m. Lower distance wins, then the longer span; earlier names win ties.
func (m nameMatch) beatenBy(d, end int) bool {
	if d != m.dist {
		return d < m.dist
	}
	return end > m.end
}
