// Package ahocorasick provides multi-pattern matching using an Aho-Corasick
// automaton. It wraps the petar-dambovaliev/aho-corasick library for
// O(n + m + z) matching.
package ahocorasick

import (
	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/unitylens/internal/ports"
)

var _ ports.ContentFilter = (*Matcher)(nil)

// Matcher finds any of a fixed keyword set in one pass over the content.
// The asset index uses it to skip serialized files with no script or
// UnityEvent markers before the line parser runs. Safe for concurrent use
// once built.
type Matcher struct {
	automaton aho.AhoCorasick
	keywords  []string
}

// NewMatcher compiles an automaton for keywords.
func NewMatcher(keywords ...string) *Matcher {
	kw := make([]string, len(keywords))
	copy(kw, keywords)
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	return &Matcher{automaton: builder.Build(kw), keywords: kw}
}

// Relevant implements ports.ContentFilter: true when any keyword occurs.
// A matcher without keywords lets everything through.
func (m *Matcher) Relevant(content []byte) bool {
	if len(m.keywords) == 0 {
		return true
	}
	iter := m.automaton.IterOverlappingByte(content)
	return iter.Next() != nil
}

// Match returns the distinct keywords found in content, in the order they
// first occur.
func (m *Matcher) Match(content []byte) []string {
	if len(m.keywords) == 0 {
		return nil
	}
	iter := m.automaton.IterOverlappingByte(content)
	seen := make(map[int]bool)
	var result []string
	for next := iter.Next(); next != nil; next = iter.Next() {
		p := next.Pattern()
		if !seen[p] {
			seen[p] = true
			result = append(result, m.keywords[p])
		}
	}
	return result
}
