// Package pattern holds the text patterns shared by paragraph
// classification and citation field extraction: the field marker syntax,
// the name grammars, and a thin wrapper around a backtracking regex engine.
//
// Offsets reported by this package are rune offsets, not byte offsets.
package pattern

import (
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single match attempt. OCR noise occasionally
// produces inputs that make the name grammars backtrack heavily.
const DefaultTimeout = 2 * time.Second

// Options re-exported for callers that do not import regexp2 directly.
const (
	None       = regexp2.None
	IgnoreCase = regexp2.IgnoreCase
	Singleline = regexp2.Singleline
	Multiline  = regexp2.Multiline
)

// Regex is a compiled pattern with rune-offset match helpers.
type Regex struct {
	expr string
	re   *regexp2.Regexp
	full *regexp2.Regexp
}

// MustCompile compiles expr with the given options and panics on error.
// Patterns are package-level values, so a bad pattern is a programming error.
func MustCompile(expr string, opts regexp2.RegexOptions) *Regex {
	re := regexp2.MustCompile(expr, opts)
	re.MatchTimeout = DefaultTimeout
	full := regexp2.MustCompile(`\A(?:`+expr+`)\z`, opts)
	full.MatchTimeout = DefaultTimeout
	return &Regex{expr: expr, re: re, full: full}
}

// String returns the source expression.
func (r *Regex) String() string {
	return r.expr
}

// Span is a matched region of the input.
type Span struct {
	Start   int
	End     int
	Text    string
	Matched bool
}

// Match is a successful match with access to its groups.
type Match struct {
	Span
	m *regexp2.Match
}

// Group returns the span of the named group. Groups that did not take part
// in the match return a zero Span.
func (m *Match) Group(name string) Span {
	return spanOf(m.m.GroupByName(name))
}

// GroupN returns the span of the numbered group.
func (m *Match) GroupN(n int) Span {
	return spanOf(m.m.GroupByNumber(n))
}

// Captures returns every capture of a repeated named group in input order.
func (m *Match) Captures(name string) []string {
	g := m.m.GroupByName(name)
	if g == nil {
		return nil
	}
	out := make([]string, 0, len(g.Captures))
	for _, c := range g.Captures {
		out = append(out, c.String())
	}
	return out
}

func spanOf(g *regexp2.Group) Span {
	if g == nil || len(g.Captures) == 0 {
		return Span{}
	}
	return Span{Start: g.Index, End: g.Index + g.Length, Text: g.String(), Matched: true}
}

func wrap(m *regexp2.Match) *Match {
	return &Match{
		Span: Span{Start: m.Index, End: m.Index + m.Length, Text: m.String(), Matched: true},
		m:    m,
	}
}

// Find returns the leftmost match in s, or nil.
func (r *Regex) Find(s string) *Match {
	m, err := r.re.FindStringMatch(s)
	if err != nil {
		zap.L().Warn("pattern: match aborted", zap.String("pattern", r.expr), zap.Error(err))
		return nil
	}
	if m == nil {
		return nil
	}
	return wrap(m)
}

// FindAll returns all non-overlapping matches in s, left to right.
func (r *Regex) FindAll(s string) []*Match {
	var out []*Match
	m, err := r.re.FindStringMatch(s)
	for m != nil && err == nil {
		out = append(out, wrap(m))
		m, err = r.re.FindNextMatch(m)
	}
	if err != nil {
		zap.L().Warn("pattern: match aborted", zap.String("pattern", r.expr), zap.Error(err))
	}
	return out
}

// FullMatch returns the match if the whole of s matches, or nil.
func (r *Regex) FullMatch(s string) *Match {
	m, err := r.full.FindStringMatch(s)
	if err != nil {
		zap.L().Warn("pattern: match aborted", zap.String("pattern", r.expr), zap.Error(err))
		return nil
	}
	if m == nil {
		return nil
	}
	return wrap(m)
}

// MatchString reports whether s contains a match.
func (r *Regex) MatchString(s string) bool {
	return r.Find(s) != nil
}

// Escape quotes regex metacharacters in s.
func Escape(s string) string {
	return regexp2.Escape(s)
}

// Slice returns the runes of s in [start, end) as a string. Out of range
// bounds are clamped.
func Slice(s string, start, end int) string {
	rs := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(rs) {
		end = len(rs)
	}
	if start >= end {
		return ""
	}
	return string(rs[start:end])
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Split slices s around every match, like strings.Split with a pattern
// separator.
func (r *Regex) Split(s string) []string {
	matches := r.FindAll(s)
	if len(matches) == 0 {
		return []string{s}
	}
	runes := []rune(s)
	out := make([]string, 0, len(matches)+1)
	prev := 0
	for _, m := range matches {
		out = append(out, string(runes[prev:m.Start]))
		prev = m.End
	}
	return append(out, string(runes[prev:]))
}

// ReplacePrefix removes a leading match of r from s. r should be anchored
// with ^.
func (r *Regex) ReplacePrefix(s, repl string) string {
	m := r.Find(s)
	if m == nil || m.Start != 0 {
		return s
	}
	return repl + Suffix(s, m.End)
}
