// Package extract implements the C9 extract driver: it iterates a FASTA/Q
// decoder (single or paired), queries each record against the selected
// matcher, applies match/invert gating, writes surviving records to the
// output sink(s), and drives the text and JSON match loggers.
package extract

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"

	"github.com/seqkatcher/seqkatcher/internal/matcher"
	"github.com/seqkatcher/seqkatcher/internal/seqerr"
	"github.com/seqkatcher/seqkatcher/internal/seqlog"
)

// Format identifies the record container the driver reads and writes.
type Format int

const (
	FASTA Format = iota
	FASTQ
)

// Sink pairs an output writer with the file label reported to the loggers.
type Sink struct {
	Label  string
	Writer io.Writer
}

// Config carries everything the record loop needs beyond the matcher
// itself: the input decoders, output sinks, gating flags, and the already
// prepared pattern list (for per-pattern hit counting and log fields).
type Config struct {
	Format Format

	Input  io.Reader
	Input2 io.Reader // nil unless paired

	Sink  *Sink // nil when suppressing output
	Sink2 *Sink // nil unless paired and not suppressed

	Patterns       [][]byte
	Set            matcher.Set
	InvertMatch    bool
	SuppressOutput bool
	LoggingActive  bool
	TextLogger     *seqlog.TextLogger
	JSONLogger     *seqlog.JSONLogger
}

// Result carries the run counters accumulated over the record loop, used
// to populate the summary emitted to the loggers.
type Result struct {
	RecordsScanned  int
	BasesScanned    int
	TotalHits       int
	RecordsWithHit  int
	RecordsWritten  int
	RecordsScanned2 int
	BasesScanned2   int
	TotalHits2      int
	RecordsWithHit2 int
	PatternHits     []int // parallel to Config.Patterns
}

func newReader(format Format, r io.Reader) seqio.Reader {
	switch format {
	case FASTQ:
		return fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger))
	default:
		return fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant))
	}
}

func newWriter(format Format, w io.Writer) recordWriter {
	switch format {
	case FASTQ:
		return fastq.NewWriter(w)
	default:
		return fasta.NewWriter(w, 60)
	}
}

// recordWriter is the common shape of fasta.Writer and fastq.Writer.
type recordWriter interface {
	Write(seq.Sequence) (int, error)
}

// sequenceBytes extracts the raw sequence letters from a record returned by
// either the FASTA or FASTQ reader.
func sequenceBytes(s seq.Sequence) []byte {
	switch v := s.(type) {
	case *linear.Seq:
		out := make([]byte, len(v.Seq))
		for i, l := range v.Seq {
			out[i] = byte(l)
		}
		return out
	case *linear.QSeq:
		out := make([]byte, len(v.Seq))
		for i, l := range v.Seq {
			out[i] = byte(l.L)
		}
		return out
	default:
		return nil
	}
}

// recordID returns the record identifier used in match events and output.
func recordID(s seq.Sequence) string {
	return s.Name()
}

// Run drives the record loop per §4.9 and returns the accumulated counters.
// The caller is responsible for emitting the summary to the loggers
// afterward. Paired inputs of different lengths make Run return an error
// wrapping seqerr.ErrPairLengthMismatch.
func Run(cfg Config) (Result, error) {
	res := Result{PatternHits: make([]int, len(cfg.Patterns))}

	scanner := seqio.NewScanner(newReader(cfg.Format, cfg.Input))
	var scanner2 seqio.Scanner
	paired := cfg.Input2 != nil
	if paired {
		scanner2 = seqio.NewScanner(newReader(cfg.Format, cfg.Input2))
	}

	var writer, writer2 recordWriter
	if !cfg.SuppressOutput {
		if cfg.Sink != nil {
			writer = newWriter(cfg.Format, cfg.Sink.Writer)
		}
		if paired && cfg.Sink2 != nil {
			writer2 = newWriter(cfg.Format, cfg.Sink2.Writer)
		}
	}

	for scanner.Next() {
		rec := scanner.Seq()
		_, hitCount, err := processRecord(cfg, rec, cfg.Sink, writer, &res, false)
		if err != nil {
			return res, err
		}
		res.RecordsScanned++
		res.BasesScanned += rec.Len()
		if hitCount > 0 {
			res.RecordsWithHit++
		}

		if paired {
			if !scanner2.Next() {
				if err := scanner2.Error(); err != nil && err != io.EOF {
					return res, fmt.Errorf("extract: %w: %v", seqerr.ErrDecoderError, err)
				}
				return res, fmt.Errorf("extract: %w", seqerr.ErrPairLengthMismatch)
			}
			rec2 := scanner2.Seq()
			_, hitCount2, err := processRecord(cfg, rec2, cfg.Sink2, writer2, &res, true)
			if err != nil {
				return res, err
			}
			res.RecordsScanned2++
			res.BasesScanned2 += rec2.Len()
			if hitCount2 > 0 {
				res.RecordsWithHit2++
			}
		}
	}
	if err := scanner.Error(); err != nil && err != io.EOF {
		return res, fmt.Errorf("extract: %w: %v", seqerr.ErrDecoderError, err)
	}
	if paired && scanner2.Next() {
		return res, fmt.Errorf("extract: %w", seqerr.ErrPairLengthMismatch)
	}

	return res, nil
}

// processRecord runs the matcher against one record, emits match events
// when logging is active, tracks counters, applies the match/invert gate,
// and writes the record to sink when kept and output is not suppressed.
func processRecord(cfg Config, rec seq.Sequence, sink *Sink, w recordWriter, res *Result, isFile2 bool) (kept bool, hitCount int, err error) {
	text := sequenceBytes(rec)
	id := recordID(rec)
	label := ""
	if sink != nil {
		label = sink.Label
	}

	switch cfg.Set.Algorithm() {
	case matcher.AhoCorasick:
		hits := cfg.Set.FindOver(text)
		hitCount = len(hits)
		if hitCount > 0 {
			if isFile2 {
				res.TotalHits2 += hitCount
			} else {
				res.TotalHits += hitCount
			}
		}
		seen := make(map[int]bool)
		for _, h := range hits {
			if cfg.LoggingActive {
				emit(cfg, label, id, string(cfg.Patterns[h.PatternIndex]), h.Start)
			}
			if !seen[h.PatternIndex] {
				seen[h.PatternIndex] = true
				res.PatternHits[h.PatternIndex]++
			}
		}
	default: // BNDMq
		if cfg.LoggingActive {
			for i, p := range cfg.Patterns {
				positions := cfg.Set.FindAllForPattern(i, text)
				if len(positions) > 0 {
					res.PatternHits[i]++
					hitCount += len(positions)
					if isFile2 {
						res.TotalHits2 += len(positions)
					} else {
						res.TotalHits += len(positions)
					}
				}
				for _, pos := range positions {
					emit(cfg, label, id, string(p), pos)
				}
			}
		} else {
			for i := range cfg.Patterns {
				if matcher.FindPattern(cfg.Set, i, text) {
					hitCount = 1
					if isFile2 {
						res.TotalHits2++
					} else {
						res.TotalHits++
					}
					break
				}
			}
		}
	}

	matched := hitCount > 0
	kept = matched != cfg.InvertMatch
	if kept && !cfg.SuppressOutput && w != nil {
		if _, err := w.Write(rec); err != nil {
			return kept, hitCount, fmt.Errorf("extract: %w", err)
		}
		res.RecordsWritten++
	}
	return kept, hitCount, nil
}

func emit(cfg Config, file, recordID, pattern string, offset int) {
	if cfg.TextLogger != nil {
		cfg.TextLogger.LogFields(file, recordID, pattern, offset)
	}
	if cfg.JSONLogger != nil {
		cfg.JSONLogger.Emit(seqlog.Match{File: file, RecordID: recordID, Pattern: pattern, Offset: offset})
	}
}
