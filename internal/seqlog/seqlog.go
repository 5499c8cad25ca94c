// Package seqlog implements the two structured match loggers the drivers
// write to during the record loop: a buffered plain-text logger (C7) and a
// streaming JSON logger (C8). Both loggers receive the same match events in
// the same order and are finalized with the same summary data once, after
// the record loop completes.
package seqlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Match is a single event reported to both loggers: the input file label,
// the record identifier, the matched pattern, and the zero-based start
// offset of the match inside the record sequence.
type Match struct {
	File     string
	RecordID string
	Pattern  string
	Offset   int
}

// InputFiles mirrors the meta_information.input_files object shape carried
// over from the original implementation's extract/tag commands.
type InputFiles struct {
	KmerFile    string
	RecordFile1 string
	RecordFile2 string
}

// Meta carries the run metadata written to both the text header and the
// JSON meta_information object.
type Meta struct {
	Program         string
	Version         string
	Timestamp       time.Time
	Subcommand      string // "extract" or "tag"
	CommandLine     []string
	SearchAlgorithm string // "Aho-Corasick" or "BNDMq"
	Inverted        bool
	CaseInsensitive bool
	PatternCount    int
	InputFiles      InputFiles
	Tag             string // tag subcommand only
}

func (m Meta) timestampString() string {
	return m.Timestamp.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// PatternCount is one row of the per-pattern hit table.
type PatternCount struct {
	Pattern string
	Count   int
}

// Summary carries the run counters emitted after the record loop, in both
// loggers' summary sections.
type Summary struct {
	PatternCounts    []PatternCount
	PatternsFound    int
	PatternsTotal    int
	RecordsScanned   int
	BasesScanned     int
	TotalHits        int
	RecordsWithHit   int
	RecordsWritten   int
	Paired           bool
	RecordsScanned2  int
	BasesScanned2    int
	TotalHits2       int
	RecordsWithHit2  int
	RecordsExtracted int
}

func patternsFoundPercent(s Summary) float64 {
	if s.PatternsTotal == 0 {
		return 0
	}
	return floats.Round(100*float64(s.PatternsFound)/float64(s.PatternsTotal), 2)
}

// TextLogger is the C7 buffered plain-text match logger.
type TextLogger struct {
	sink      io.Writer
	buf       bytes.Buffer
	lines     []string
	threshold int
}

// DefaultFlushThreshold is the buffer size, in bytes, at which LogFields
// flushes to the sink.
const DefaultFlushThreshold = 8 * 1024

// NewTextLogger returns a TextLogger writing to sink with the default flush
// threshold.
func NewTextLogger(sink io.Writer) *TextLogger {
	return &TextLogger{sink: sink, threshold: DefaultFlushThreshold}
}

// WriteHeader bypasses the buffer and writes s immediately to the sink.
func (l *TextLogger) WriteHeader(s string) {
	io.WriteString(l.sink, s)
}

// WriteRunHeader writes the full header block: banner, timestamp, program
// name/version, command line, pattern count, inverted-matching notice when
// applicable, and the column header row.
func (l *TextLogger) WriteRunHeader(meta Meta) {
	var b strings.Builder
	fmt.Fprintf(&b, "# seqkatcher pattern match log\n")
	fmt.Fprintf(&b, "# %s\n", meta.timestampString())
	fmt.Fprintf(&b, "# %s %s\n", meta.Program, meta.Version)
	fmt.Fprintf(&b, "# %s\n", strings.Join(meta.CommandLine, " "))
	fmt.Fprintf(&b, "# patterns: %d\n", meta.PatternCount)
	if meta.Inverted {
		fmt.Fprintf(&b, "# inverted matching\n")
	}
	fmt.Fprintf(&b, "#File\tRecord\tPattern\tPosition (zero-based)\n")
	l.WriteHeader(b.String())
}

// LogFields appends the formatted match line to both the internal
// formatted-line list and the byte buffer, flushing to the sink once the
// buffer reaches the flush threshold.
func (l *TextLogger) LogFields(file, recordID, pattern string, offset int) {
	line := fmt.Sprintf("%s\t%s\t%s\t%d\n", file, recordID, pattern, offset)
	l.lines = append(l.lines, line)
	l.buf.WriteString(line)
	if l.buf.Len() >= l.threshold {
		l.Flush()
	}
}

// Lines returns the formatted match lines logged so far, for testability.
func (l *TextLogger) Lines() []string {
	return l.lines
}

// Flush writes the buffer to the sink and clears it.
func (l *TextLogger) Flush() {
	if l.buf.Len() == 0 {
		return
	}
	l.sink.Write(l.buf.Bytes())
	l.buf.Reset()
}

// WriteSummary writes the summary block: the "patterns found" line, the
// per-pattern hit table, the run totals, and (in paired mode) the per-file
// breakdown and records-extracted total.
func (l *TextLogger) WriteSummary(s Summary) {
	var b strings.Builder
	fmt.Fprintf(&b, "# patterns found %d/%d (%.2f %%)\n", s.PatternsFound, s.PatternsTotal, patternsFoundPercent(s))
	for _, pc := range s.PatternCounts {
		fmt.Fprintf(&b, "#%s\t%d\n", pc.Pattern, pc.Count)
	}
	fmt.Fprintf(&b, "# records scanned: %d\n", s.RecordsScanned)
	fmt.Fprintf(&b, "# bases scanned: %d\n", s.BasesScanned)
	fmt.Fprintf(&b, "# total hits: %d\n", s.TotalHits)
	fmt.Fprintf(&b, "# records with hits: %d\n", s.RecordsWithHit)
	fmt.Fprintf(&b, "# records written: %d\n", s.RecordsWritten)
	if s.Paired {
		fmt.Fprintf(&b, "# file 2 records scanned: %d\n", s.RecordsScanned2)
		fmt.Fprintf(&b, "# file 2 bases scanned: %d\n", s.BasesScanned2)
		fmt.Fprintf(&b, "# file 2 total hits: %d\n", s.TotalHits2)
		fmt.Fprintf(&b, "# file 2 records with hits: %d\n", s.RecordsWithHit2)
		fmt.Fprintf(&b, "# records extracted: %d\n", s.RecordsExtracted)
	}
	l.WriteHeader(b.String())
	l.Flush()
}

// JSONLogger is the C8 streaming JSON match logger.
type JSONLogger struct {
	sink  io.Writer
	first bool
}

// NewJSONLogger returns a JSONLogger writing to sink.
func NewJSONLogger(sink io.Writer) *JSONLogger {
	return &JSONLogger{sink: sink, first: true}
}

// Open writes the opening of the document and the matching_records array.
func (l *JSONLogger) Open() {
	io.WriteString(l.sink, "{\n  \"matching_records\": [\n")
}

// Emit writes one match object, preceded by a comma-newline separator when
// it is not the first element.
func (l *JSONLogger) Emit(m Match) {
	if !l.first {
		io.WriteString(l.sink, ",\n")
	}
	l.first = false
	obj := struct {
		File     string `json:"file"`
		RecordID string `json:"record_id"`
		Pattern  string `json:"pattern"`
		Position string `json:"position"`
	}{
		File:     m.File,
		RecordID: m.RecordID,
		Pattern:  m.Pattern,
		Position: strconv.Itoa(m.Offset),
	}
	b, _ := json.MarshalIndent(obj, "    ", "  ")
	io.WriteString(l.sink, "    ")
	l.sink.Write(b)
}

// jsonInputFiles mirrors the original's input_files object shape.
type jsonInputFiles struct {
	KmerFile    string `json:"kmer_file"`
	RecordFile1 string `json:"record_file_1"`
	RecordFile2 string `json:"record_file_2,omitempty"`
}

type jsonMeta struct {
	Program         string         `json:"program"`
	Version         string         `json:"version"`
	Timestamp       string         `json:"timestamp"`
	Subcommand      string         `json:"subcommand"`
	CommandLine     []string       `json:"command_line"`
	SearchAlgorithm string         `json:"search_algorithm"`
	InvertedMatch   bool           `json:"inverted_matching"`
	CaseInsensitive bool           `json:"case_insensitive"`
	InputFiles      jsonInputFiles `json:"input_files"`
	Tag             string         `json:"tag,omitempty"`
}

type jsonPairedStats struct {
	RecordsScanned2 int `json:"records_scanned_file_2"`
	BasesScanned2   int `json:"bases_scanned_file_2"`
	TotalHits2      int `json:"total_hits_file_2"`
	RecordsWithHit2 int `json:"records_with_hit_file_2"`
}

type jsonSummary struct {
	PatternsFound    int     `json:"patterns_found"`
	PatternsTotal    int     `json:"patterns_total"`
	PatternsFoundPct float64 `json:"patterns_found_percent"`
	RecordsScanned   int     `json:"records_scanned"`
	BasesScanned     int     `json:"bases_scanned"`
	TotalHits        int     `json:"total_hits"`
	RecordsWithHit   int     `json:"records_with_hit"`
	RecordsWritten   int     `json:"records_written"`
	RecordsExtracted int     `json:"records_extracted,omitempty"`
}

// Finalize closes the matching_records array and appends, in order,
// meta_information, (if paired) paired_end_reads_statistics,
// pattern_hit_counts, and summary_statistics, then closes the document.
func (l *JSONLogger) Finalize(meta Meta, summary Summary) {
	io.WriteString(l.sink, "\n  ],\n")

	jm := jsonMeta{
		Program:         meta.Program,
		Version:         meta.Version,
		Timestamp:       meta.timestampString(),
		Subcommand:      meta.Subcommand,
		CommandLine:     meta.CommandLine,
		SearchAlgorithm: meta.SearchAlgorithm,
		InvertedMatch:   meta.Inverted,
		CaseInsensitive: meta.CaseInsensitive,
		InputFiles: jsonInputFiles{
			KmerFile:    meta.InputFiles.KmerFile,
			RecordFile1: meta.InputFiles.RecordFile1,
			RecordFile2: meta.InputFiles.RecordFile2,
		},
		Tag: meta.Tag,
	}
	l.writeField("meta_information", jm)

	if summary.Paired {
		io.WriteString(l.sink, ",\n")
		ps := jsonPairedStats{
			RecordsScanned2: summary.RecordsScanned2,
			BasesScanned2:   summary.BasesScanned2,
			TotalHits2:      summary.TotalHits2,
			RecordsWithHit2: summary.RecordsWithHit2,
		}
		l.writeField("paired_end_reads_statistics", ps)
	}

	io.WriteString(l.sink, ",\n")
	counts := make(map[string]int, len(summary.PatternCounts))
	for _, pc := range summary.PatternCounts {
		counts[pc.Pattern] = pc.Count
	}
	l.writeField("pattern_hit_counts", counts)

	io.WriteString(l.sink, ",\n")
	js := jsonSummary{
		PatternsFound:    summary.PatternsFound,
		PatternsTotal:    summary.PatternsTotal,
		PatternsFoundPct: patternsFoundPercent(summary),
		RecordsScanned:   summary.RecordsScanned,
		BasesScanned:     summary.BasesScanned,
		TotalHits:        summary.TotalHits,
		RecordsWithHit:   summary.RecordsWithHit,
		RecordsWritten:   summary.RecordsWritten,
		RecordsExtracted: summary.RecordsExtracted,
	}
	l.writeField("summary_statistics", js)

	io.WriteString(l.sink, "\n}\n")
}

func (l *JSONLogger) writeField(name string, v interface{}) {
	b, _ := json.MarshalIndent(v, "  ", "  ")
	fmt.Fprintf(l.sink, "  %q: %s", name, b)
}
