// Package tag implements the C10 tag driver: it iterates a BAM/SAM reader,
// queries each record's sequence against the selected matcher, aggregates
// the matching patterns into the record's configured two-letter tag,
// applies filter/invert gating, writes surviving records, and drives the
// text and JSON match loggers.
package tag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/biogo/hts/sam"

	"github.com/seqkatcher/seqkatcher/internal/matcher"
	"github.com/seqkatcher/seqkatcher/internal/seqerr"
	"github.com/seqkatcher/seqkatcher/internal/seqlog"
)

// Reader is the capability the driver needs from a BAM or SAM reader: both
// *bam.Reader and *sam.Reader from github.com/biogo/hts satisfy it.
type Reader interface {
	Read() (*sam.Record, error)
}

// Writer is the capability the driver needs from a BAM or SAM writer: both
// *bam.Writer and *sam.Writer satisfy it.
type Writer interface {
	Write(*sam.Record) error
}

// Config carries everything the record loop needs beyond the matcher
// itself.
type Config struct {
	Reader    Reader
	Writer    Writer // not written to when SuppressOutput is set
	FileLabel string

	Patterns       [][]byte
	Set            matcher.Set
	TagID          sam.Tag
	FilterMatching bool
	InvertMatch    bool
	SuppressOutput bool
	LoggingActive  bool
	TextLogger     *seqlog.TextLogger
	JSONLogger     *seqlog.JSONLogger
}

// Result carries the run counters accumulated over the record loop.
type Result struct {
	RecordsScanned int
	BasesScanned   int
	TotalHits      int
	RecordsWithHit int
	RecordsWritten int
	PatternHits    []int // parallel to Config.Patterns
}

// Run drives the record loop per §4.10 and returns the accumulated
// counters. The caller is responsible for emitting the summary to the
// loggers afterward.
func Run(cfg Config) (Result, error) {
	res := Result{PatternHits: make([]int, len(cfg.Patterns))}

	for {
		rec, err := cfg.Reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("tag: %w: %v", seqerr.ErrDecoderError, err)
		}

		if err := processRecord(cfg, rec, &res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func processRecord(cfg Config, rec *sam.Record, res *Result) error {
	text := rec.Seq.Expand()
	res.RecordsScanned++
	res.BasesScanned += len(text)

	hits := cfg.Set.FindOver(text)
	matchedIdx := make(map[int]bool, len(hits))
	for _, h := range hits {
		matchedIdx[h.PatternIndex] = true
		if cfg.LoggingActive {
			emit(cfg, rec.Name, string(cfg.Patterns[h.PatternIndex]), h.Start)
			res.PatternHits[h.PatternIndex]++
		}
	}
	matched := len(matchedIdx) > 0
	if matched {
		res.RecordsWithHit++
		res.TotalHits += len(hits)
	}

	names := make([]string, 0, len(matchedIdx))
	for idx := range matchedIdx {
		names = append(names, string(cfg.Patterns[idx]))
	}
	sort.Strings(names)

	if existing, ok := rec.Tag(cfg.TagID[:]); ok {
		v, isStr := existing.Value().(string)
		if !isStr {
			return fmt.Errorf("tag: %w", seqerr.ErrInvalidTagValue)
		}
		names = unionSorted(names, splitNonEmpty(v))
	}

	var keep bool
	switch {
	case cfg.FilterMatching:
		keep = matched
	case cfg.InvertMatch:
		keep = !matched
	default:
		keep = true
	}

	if keep && !cfg.SuppressOutput && cfg.Writer != nil {
		if len(names) > 0 {
			aux, err := sam.NewAux(cfg.TagID, strings.Join(names, ","))
			if err != nil {
				return fmt.Errorf("tag: %w", err)
			}
			setAux(rec, cfg.TagID, aux)
		}
		if err := cfg.Writer.Write(rec); err != nil {
			return fmt.Errorf("tag: %w", err)
		}
		res.RecordsWritten++
	}
	return nil
}

// splitNonEmpty splits s on commas, returning nil for an empty string.
func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// unionSorted returns the sorted, deduplicated union of a and b.
func unionSorted(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		set[s] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// setAux replaces the existing aux field matching id, or appends a new one.
func setAux(rec *sam.Record, id sam.Tag, aux sam.Aux) {
	for i, a := range rec.AuxFields {
		if a.Tag() == id {
			rec.AuxFields[i] = aux
			return
		}
	}
	rec.AuxFields = append(rec.AuxFields, aux)
}

func emit(cfg Config, recordID, pattern string, offset int) {
	if cfg.TextLogger != nil {
		cfg.TextLogger.LogFields(cfg.FileLabel, recordID, pattern, offset)
	}
	if cfg.JSONLogger != nil {
		cfg.JSONLogger.Emit(seqlog.Match{File: cfg.FileLabel, RecordID: recordID, Pattern: pattern, Offset: offset})
	}
}

// ParseTagID validates that tag is exactly two bytes and returns it as a
// sam.Tag. It fails with ErrInvalidTag otherwise.
func ParseTagID(tag string) (sam.Tag, error) {
	if len(tag) != 2 {
		return sam.Tag{}, fmt.Errorf("tag: %w: %q", seqerr.ErrInvalidTag, tag)
	}
	return sam.Tag{tag[0], tag[1]}, nil
}

// BuildProgramLine constructs the @PG line appended to the writer's header,
// reproducing the original implementation's exact field layout:
// @PG\tID:<name>\tPN:<name>\tCL:<cmdline>\tVN:<version>.
func BuildProgramLine(name, commandLine, version string) *sam.Program {
	return &sam.Program{
		UID:     name,
		Name:    name,
		Command: commandLine,
		Version: version,
	}
}
