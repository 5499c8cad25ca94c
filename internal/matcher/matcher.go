// Package matcher selects between the BNDMq and Aho-Corasick search
// strategies and presents both behind the single polymorphic capability the
// drivers depend on: decide whether any pattern matches a text, or
// enumerate every occurrence.
package matcher

import (
	"errors"
	"sort"

	"github.com/seqkatcher/seqkatcher/internal/acmatch"
	"github.com/seqkatcher/seqkatcher/internal/bndm"
)

// Algorithm identifies which search strategy a Set implements.
type Algorithm int

const (
	BNDMq Algorithm = iota
	AhoCorasick
)

// String renders the algorithm the way it appears in log headers and the
// JSON meta_information.search_algorithm field.
func (a Algorithm) String() string {
	if a == AhoCorasick {
		return "Aho-Corasick"
	}
	return "BNDMq"
}

// Hit is a single (pattern, start offset) occurrence inside a text.
type Hit struct {
	PatternIndex int
	Start        int
}

// Set is the capability the extract and tag drivers depend on: decide
// whether any pattern occurs in text, or enumerate every occurrence.
// Concrete variants are a collection of BNDMq matchers (one per pattern)
// driven by an outer loop, and a single Aho-Corasick automaton.
type Set interface {
	Algorithm() Algorithm
	NumPatterns() int
	FindAny(text []byte) bool
	FindOver(text []byte) []Hit
	// FindAllForPattern returns every occurrence of the pattern at index i
	// in text. Used by the extract driver's logging-active BNDMq path,
	// which must enumerate every position per pattern rather than stop at
	// the first hit.
	FindAllForPattern(i int, text []byte) []int
}

// SelectionInput carries the user-facing flags and prepared pattern list
// that feed the C5 algorithm selection policy.
type SelectionInput struct {
	Patterns         [][]byte
	CaseInsensitive  bool
	PinnedQ          int // 0 means not pinned
	ForceAhoCorasick bool
}

// maxPatternCountForBNDMq and maxPatternLenForBNDMq are the thresholds past
// which the selector recommends Aho-Corasick over per-pattern BNDMq.
const (
	maxPatternCountForBNDMq = 13
	maxPatternLenForBNDMq   = 64
)

// Select implements the C5 algorithm selection policy: case-insensitive
// runs always go to Aho-Corasick since BNDMq cannot fold case; a pinned q or
// an explicit request for Aho-Corasick is honored; otherwise the choice
// follows pattern count and length.
func Select(in SelectionInput) Algorithm {
	if in.CaseInsensitive {
		return AhoCorasick
	}
	if in.ForceAhoCorasick {
		return AhoCorasick
	}
	if in.PinnedQ > 0 {
		return BNDMq
	}
	if len(in.Patterns) > maxPatternCountForBNDMq {
		return AhoCorasick
	}
	for _, p := range in.Patterns {
		if len(p) > maxPatternLenForBNDMq {
			return AhoCorasick
		}
	}
	return BNDMq
}

// Build constructs the matcher Set for algorithm over patterns. pinnedQ,
// when non-zero, overrides the tuned q used for every pattern under BNDMq.
func Build(algorithm Algorithm, patterns [][]byte, caseInsensitive bool, pinnedQ int) (Set, error) {
	switch algorithm {
	case AhoCorasick:
		ac, err := acmatch.New(patterns, caseInsensitive)
		if err != nil {
			return nil, err
		}
		return &acSet{ac: ac, n: len(patterns)}, nil
	case BNDMq:
		matchers := make([]*bndm.BNDMq, len(patterns))
		for i, p := range patterns {
			q := pinnedQ
			if q == 0 {
				var err error
				q, err = bndm.TuneQValue(len(p))
				if err != nil {
					return nil, err
				}
			}
			m, err := bndm.NewBNDMq(p, q)
			if err != nil {
				return nil, err
			}
			matchers[i] = m
		}
		return &bndmqSet{matchers: matchers}, nil
	default:
		return nil, errors.New("matcher: unknown algorithm")
	}
}

type acSet struct {
	ac *acmatch.Matcher
	n  int
}

func (s *acSet) Algorithm() Algorithm { return AhoCorasick }
func (s *acSet) NumPatterns() int     { return s.n }
func (s *acSet) FindAny(text []byte) bool {
	return s.ac.FindMatch(text)
}

func (s *acSet) FindAllForPattern(i int, text []byte) []int {
	var out []int
	for _, h := range s.FindOver(text) {
		if h.PatternIndex == i {
			out = append(out, h.Start)
		}
	}
	return out
}

// FindOver reports every occurrence left-to-right by start offset, ties
// broken by increasing pattern index, per §4.3's ordering contract.
func (s *acSet) FindOver(text []byte) []Hit {
	raw := s.ac.FindAll(text)
	out := make([]Hit, len(raw))
	for i, h := range raw {
		out[i] = Hit{PatternIndex: h.PatternIndex, Start: h.Start}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].PatternIndex < out[j].PatternIndex
	})
	return out
}

// bndmqSet drives one BNDMq matcher per pattern; the driver-level outer
// loop the design notes describe lives here.
type bndmqSet struct {
	matchers []*bndm.BNDMq
}

func (s *bndmqSet) Algorithm() Algorithm { return BNDMq }
func (s *bndmqSet) NumPatterns() int     { return len(s.matchers) }

func (s *bndmqSet) FindAny(text []byte) bool {
	for _, m := range s.matchers {
		if m.FindMatch(text) {
			return true
		}
	}
	return false
}

// FindOver emits by pattern order first, then by position within each
// pattern's occurrences, per §5's ordering guarantee for BNDMq extraction.
func (s *bndmqSet) FindOver(text []byte) []Hit {
	var out []Hit
	for i, m := range s.matchers {
		for _, pos := range m.FindAll(text) {
			out = append(out, Hit{PatternIndex: i, Start: pos})
		}
	}
	return out
}

func (s *bndmqSet) FindAllForPattern(i int, text []byte) []int {
	return s.matchers[i].FindAll(text)
}

// FindPattern reports whether the pattern at index i occurs in text. For a
// BNDMq Set it stops at the first occurrence without building the hit list;
// any other Set is answered through FindAllForPattern. Used by the extract
// driver's hot path to stop at the first matching pattern.
func FindPattern(s Set, i int, text []byte) bool {
	bq, ok := s.(*bndmqSet)
	if !ok {
		return len(s.FindAllForPattern(i, text)) > 0
	}
	return bq.matchers[i].FindMatch(text)
}
