// Package acmatch adapts the Aho-Corasick Ken Steele automaton to the
// multi-pattern overlapping-match semantics used by the pattern matcher
// selector: given a set of patterns, report every (pattern index, start
// offset) occurrence in a text, left to right, including overlaps.
package acmatch

import (
	"errors"

	ahocorasick "github.com/yanlinLiu0424/ahocorasick"
)

// ErrNoPatterns is returned when New is called with no patterns.
var ErrNoPatterns = errors.New("acmatch: no patterns")

// Hit is a single occurrence reported by a Matcher: the index into the
// pattern list passed to New, and the zero-based byte offset in the text at
// which the pattern starts.
type Hit struct {
	PatternIndex int
	Start        int
}

// Matcher wraps an ACKS automaton built over a fixed pattern set, indexed by
// the order patterns were supplied to New.
type Matcher struct {
	ac       *ahocorasick.ACKS
	lengths  []int
	caseless bool
}

// New builds a Matcher over patterns. When caseless is true every pattern is
// matched without regard to ASCII case, using the automaton's own case
// folding; the pattern preparer does not fold case for case-insensitive
// matching. When caseless is false, patterns match only bytes of the same
// case.
func New(patterns [][]byte, caseless bool) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	ac := ahocorasick.NewACKS()
	lengths := make([]int, len(patterns))
	for i, p := range patterns {
		var flags ahocorasick.Flag
		if caseless {
			flags |= ahocorasick.Caseless
		}
		if err := ac.AddPattern(ahocorasick.Pattern{
			Content: p,
			ID:      uint(i),
			Flags:   flags,
		}); err != nil {
			return nil, err
		}
		lengths[i] = len(p)
	}
	ac.Build()
	return &Matcher{ac: ac, lengths: lengths, caseless: caseless}, nil
}

// FindMatch reports whether any pattern occurs anywhere in text.
func (m *Matcher) FindMatch(text []byte) bool {
	found := false
	m.scan(text, func(Hit) bool {
		found = true
		return true
	})
	return found
}

// FindAll returns every occurrence of any pattern in text, in left-to-right
// order of the end position at which the automaton reports it (ties broken
// by pattern index).
func (m *Matcher) FindAll(text []byte) []Hit {
	var out []Hit
	m.scan(text, func(h Hit) bool {
		out = append(out, h)
		return false
	})
	return out
}

var errStop = errors.New("acmatch: stop")

func (m *Matcher) scan(text []byte, onHit func(Hit) bool) {
	m.ac.Scan(text, func(id uint, _, to uint64) error {
		start := int(to) - m.lengths[id]
		if onHit(Hit{PatternIndex: int(id), Start: start}) {
			return errStop
		}
		return nil
	})
}
