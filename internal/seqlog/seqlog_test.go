package seqlog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTextLoggerLogFieldsFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.LogFields("reads.fasta", "read1", "ACGT", 3)
	l.Flush()
	want := "reads.fasta\tread1\tACGT\t3\n"
	if buf.String() != want {
		t.Errorf("LogFields wrote %q, want %q", buf.String(), want)
	}
	if len(l.Lines()) != 1 || l.Lines()[0] != want {
		t.Errorf("Lines() = %v, want [%q]", l.Lines(), want)
	}
}

func TestTextLoggerFlushesAtThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.threshold = 10
	l.LogFields("f", "r", "ACGTACGTACGTACGT", 0)
	if buf.Len() == 0 {
		t.Error("expected buffer flushed to sink once threshold reached")
	}
}

func TestTextLoggerWriteHeaderBypassesBuffer(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.WriteHeader("# hello\n")
	if buf.String() != "# hello\n" {
		t.Errorf("WriteHeader wrote %q, want %q", buf.String(), "# hello\n")
	}
}

func TestTextLoggerRunHeaderContainsColumnRow(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.WriteRunHeader(Meta{
		Program:      "seqkatcher",
		Version:      "1.0.0",
		Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		CommandLine:  []string{"seqkatcher", "extract", "-i", "reads.fasta"},
		PatternCount: 2,
		Inverted:     true,
	})
	out := buf.String()
	if !strings.Contains(out, "#File\tRecord\tPattern\tPosition (zero-based)\n") {
		t.Errorf("header missing column row: %q", out)
	}
	if !strings.Contains(out, "2026-01-02T03:04:05Z") {
		t.Errorf("header missing timestamp: %q", out)
	}
	if !strings.Contains(out, "inverted matching") {
		t.Errorf("header missing inverted-matching notice: %q", out)
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if !strings.HasPrefix(line, "#") {
			t.Errorf("header line not prefixed with '#': %q", line)
		}
	}
}

func TestTextLoggerSummaryContainsPatternTable(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.WriteSummary(Summary{
		PatternCounts:  []PatternCount{{Pattern: "ACGT", Count: 3}},
		PatternsFound:  1,
		PatternsTotal:  2,
		RecordsScanned: 10,
	})
	out := buf.String()
	if !strings.Contains(out, "patterns found 1/2 (50.00 %)") {
		t.Errorf("summary missing percent line: %q", out)
	}
	if !strings.Contains(out, "#ACGT\t3\n") {
		t.Errorf("summary missing per-pattern row: %q", out)
	}
}

func TestJSONLoggerEmitCommaPlacement(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf)
	l.Open()
	l.Emit(Match{File: "f", RecordID: "r1", Pattern: "ACGT", Offset: 0})
	l.Emit(Match{File: "f", RecordID: "r2", Pattern: "ACGT", Offset: 5})
	out := buf.String()
	if strings.Count(out, "},\n") != 1 {
		t.Errorf("expected exactly one comma separator between two matches, got: %q", out)
	}
	if !strings.Contains(out, `"position": "5"`) {
		t.Errorf("position not emitted as string: %q", out)
	}
}

func TestJSONLoggerFinalizeFieldOrderNonPaired(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf)
	l.Open()
	l.Finalize(Meta{Program: "seqkatcher", Subcommand: "extract"}, Summary{PatternsTotal: 1})
	out := buf.String()

	metaIdx := strings.Index(out, `"meta_information"`)
	pairedIdx := strings.Index(out, `"paired_end_reads_statistics"`)
	countsIdx := strings.Index(out, `"pattern_hit_counts"`)
	summaryIdx := strings.Index(out, `"summary_statistics"`)

	if metaIdx < 0 || countsIdx < 0 || summaryIdx < 0 {
		t.Fatalf("missing expected top-level keys in: %q", out)
	}
	if pairedIdx >= 0 {
		t.Errorf("non-paired run must not emit paired_end_reads_statistics: %q", out)
	}
	if !(metaIdx < countsIdx && countsIdx < summaryIdx) {
		t.Errorf("field order wrong: meta=%d counts=%d summary=%d", metaIdx, countsIdx, summaryIdx)
	}
	if !strings.HasPrefix(out, "{\n  \"matching_records\": [\n") {
		t.Errorf("missing open lifecycle prefix: %q", out)
	}
	if !strings.HasSuffix(out, "\n}\n") {
		t.Errorf("missing closing brace: %q", out)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("Finalize produced invalid JSON: %v\n%s", err, out)
	}
}

func TestJSONLoggerFinalizeFieldOrderPaired(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf)
	l.Open()
	l.Finalize(Meta{Program: "seqkatcher"}, Summary{Paired: true, PatternsTotal: 1})
	out := buf.String()

	metaIdx := strings.Index(out, `"meta_information"`)
	pairedIdx := strings.Index(out, `"paired_end_reads_statistics"`)
	countsIdx := strings.Index(out, `"pattern_hit_counts"`)
	summaryIdx := strings.Index(out, `"summary_statistics"`)

	if metaIdx < 0 || pairedIdx < 0 || countsIdx < 0 || summaryIdx < 0 {
		t.Fatalf("missing expected top-level keys in paired run: %q", out)
	}
	if !(metaIdx < pairedIdx && pairedIdx < countsIdx && countsIdx < summaryIdx) {
		t.Errorf("paired field order wrong: meta=%d paired=%d counts=%d summary=%d", metaIdx, pairedIdx, countsIdx, summaryIdx)
	}
}

func TestJSONLoggerPositionIsString(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf)
	l.Open()
	l.Emit(Match{File: "f", RecordID: "r", Pattern: "A", Offset: 42})
	l.Finalize(Meta{}, Summary{})

	var doc struct {
		MatchingRecords json.RawMessage `json:"matching_records"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(doc.MatchingRecords, &records); err != nil {
		t.Fatalf("invalid matching_records: %v", err)
	}
	pos, ok := records[0]["position"].(string)
	if !ok {
		t.Fatalf("position is not a JSON string: %#v", records[0]["position"])
	}
	if pos != "42" {
		t.Errorf("position = %q, want %q", pos, "42")
	}
}
