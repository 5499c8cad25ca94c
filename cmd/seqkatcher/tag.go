package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/seqkatcher/seqkatcher/internal/matcher"
	"github.com/seqkatcher/seqkatcher/internal/pathutil"
	"github.com/seqkatcher/seqkatcher/internal/seqerr"
	"github.com/seqkatcher/seqkatcher/internal/seqlog"
	"github.com/seqkatcher/seqkatcher/internal/tag"
)

func runTag(args []string) int {
	fs := flag.NewFlagSet("tag", flag.ExitOnError)

	input := fs.String("i", "", "input BAM/SAM path (required)")
	output := fs.String("o", "", "output path (default: stdout, as SAM)")
	patternList := fs.String("s", "", "inline comma-separated pattern list")
	patternFile := fs.String("f", "", "pattern file path")
	revComp := fs.Bool("r", false, "augment patterns with their reverse complement")
	canonical := fs.Bool("c", false, "canonicalize patterns to their lexicographically smaller strand")
	caseInsensitive := fs.Bool("I", false, "case-insensitive matching (forces Aho-Corasick)")
	lower := fs.Bool("L", false, "lowercase patterns before matching")
	upper := fs.Bool("U", false, "uppercase patterns before matching")
	pinnedQ := fs.Int("q", 0, "pin the BNDMq q-gram width")
	forceAC := fs.Bool("a", false, "force Aho-Corasick")
	var textLog, jsonLog optionalStringFlag
	fs.Var(&textLog, "l", "enable text match log (bare = stdout)")
	fs.Var(&jsonLog, "j", "enable JSON match log (bare = stdout)")
	suppress := fs.Bool("S", false, "suppress record output (requires logging)")
	invert := fs.Bool("v", false, "invert match sense")
	filterMatching := fs.Bool("m", false, "keep only matching records")
	tagFlag := fs.String("t", "", "two-character tag identifier (required)")
	threads := fs.Int("p", 1, "worker thread hint (>= 1)")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage of %s tag:\n", programName)
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if err := validateTagArgs(*input, *output, *patternList, *patternFile, *revComp, *canonical,
		*caseInsensitive, *lower, *upper, *pinnedQ, *forceAC, textLog, jsonLog, *suppress, *threads); err != nil {
		log.Println(err)
		return 2
	}
	tagID, err := tag.ParseTagID(*tagFlag)
	if err != nil {
		log.Println(err)
		return 2
	}

	patterns, err := preparePatterns(*patternList, *patternFile, *revComp, *canonical, *lower, *upper)
	if err != nil {
		log.Println(err)
		return 1
	}

	algo := matcher.Select(matcher.SelectionInput{
		Patterns:         patterns,
		CaseInsensitive:  *caseInsensitive,
		PinnedQ:          *pinnedQ,
		ForceAhoCorasick: *forceAC,
	})
	set, err := matcher.Build(algo, patterns, *caseInsensitive, *pinnedQ)
	if err != nil {
		log.Println(err)
		return 1
	}

	reader, inFile, srcHeader, err := openTagReader(*input, *threads)
	if err != nil {
		log.Println(err)
		return 1
	}
	defer inFile.Close()

	header := srcHeader
	if *suppress {
		header, err = sam.NewHeader(nil, nil)
		if err != nil {
			log.Println(err)
			return 1
		}
	} else {
		header = srcHeader.Clone()
		pg := tag.BuildProgramLine(programName, strings.Join(commandLine("tag", args), " "), version)
		if err := header.AddProgram(pg); err != nil {
			log.Println(err)
			return 1
		}
	}

	writer, outCloser, err := openTagWriter(*output, header, *threads)
	if err != nil {
		log.Println(err)
		return 1
	}
	defer outCloser.Close()

	cfg := tag.Config{
		Reader:         reader,
		Writer:         writer,
		FileLabel:      *input,
		Patterns:       patterns,
		Set:            set,
		TagID:          tagID,
		FilterMatching: *filterMatching,
		InvertMatch:    *invert,
		SuppressOutput: *suppress,
		LoggingActive:  textLog.set || jsonLog.set,
	}

	meta := seqlog.Meta{
		Program:         programName,
		Version:         version,
		Timestamp:       time.Now(),
		Subcommand:      "tag",
		CommandLine:     commandLine("tag", args),
		SearchAlgorithm: algo.String(),
		Inverted:        *invert,
		CaseInsensitive: *caseInsensitive,
		PatternCount:    len(patterns),
		InputFiles: seqlog.InputFiles{
			KmerFile:    *patternFile,
			RecordFile1: *input,
		},
		Tag: *tagFlag,
	}

	if textLog.set {
		sink, err := openSink(textLog.value)
		if err != nil {
			log.Println(err)
			return 1
		}
		defer sink.Close()
		cfg.TextLogger = seqlog.NewTextLogger(sink)
		cfg.TextLogger.WriteRunHeader(meta)
	}
	if jsonLog.set {
		sink, err := openSink(jsonLog.value)
		if err != nil {
			log.Println(err)
			return 1
		}
		defer sink.Close()
		cfg.JSONLogger = seqlog.NewJSONLogger(sink)
		cfg.JSONLogger.Open()
	}

	res, err := tag.Run(cfg)
	if err != nil {
		log.Println(err)
		return 1
	}

	summary := buildTagSummary(patterns, res)
	if cfg.TextLogger != nil {
		cfg.TextLogger.WriteSummary(summary)
	}
	if cfg.JSONLogger != nil {
		cfg.JSONLogger.Finalize(meta, summary)
	}

	return 0
}

func buildTagSummary(patterns [][]byte, res tag.Result) seqlog.Summary {
	found := 0
	counts := make([]seqlog.PatternCount, len(patterns))
	for i, p := range patterns {
		counts[i] = seqlog.PatternCount{Pattern: string(p), Count: res.PatternHits[i]}
		if res.PatternHits[i] > 0 {
			found++
		}
	}
	return seqlog.Summary{
		PatternCounts:  counts,
		PatternsFound:  found,
		PatternsTotal:  len(patterns),
		RecordsScanned: res.RecordsScanned,
		BasesScanned:   res.BasesScanned,
		TotalHits:      res.TotalHits,
		RecordsWithHit: res.RecordsWithHit,
		RecordsWritten: res.RecordsWritten,
	}
}

// bamMagic is the gzip/BGZF magic that distinguishes a BAM input from a
// plain-text SAM one.
var bamMagic = [2]byte{0x1f, 0x8b}

// openTagReader opens path as a BAM or SAM reader, detected from the
// leading gzip/BGZF magic bytes, and returns the reader, the underlying
// file (for closing), and the source header.
func openTagReader(path string, threads int) (tag.Reader, io.Closer, *sam.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", seqerr.ErrDecoderError, err)
	}
	br := bufio.NewReader(f)
	peek, _ := br.Peek(2)
	if len(peek) == 2 && peek[0] == bamMagic[0] && peek[1] == bamMagic[1] {
		r, err := bam.NewReader(br, threads-1)
		if err != nil {
			f.Close()
			return nil, nil, nil, fmt.Errorf("%w: %v", seqerr.ErrDecoderError, err)
		}
		return r, f, r.Header(), nil
	}
	r, err := sam.NewReader(br)
	if err != nil {
		f.Close()
		return nil, nil, nil, fmt.Errorf("%w: %v", seqerr.ErrDecoderError, err)
	}
	return r, f, r.Header(), nil
}

// openTagWriter opens path as a BAM or SAM writer based on its extension;
// an empty path (stdout) and a "sam" extension both write plain SAM text.
// threads-1 additional workers are handed to the BAM codec, per §4.10.
func openTagWriter(path string, header *sam.Header, threads int) (tag.Writer, io.Closer, error) {
	var sink io.WriteCloser
	var label string
	if path == "" {
		sink = nopCloser{os.Stdout}
		label = ""
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", seqerr.ErrSinkCreateError, err)
		}
		sink = f
		label = path
	}

	if pathutil.IdentifyUncompressedType(label) == "bam" {
		w, err := bam.NewWriter(sink, header, threads-1)
		if err != nil {
			sink.Close()
			return nil, nil, fmt.Errorf("%w: %v", seqerr.ErrSinkCreateError, err)
		}
		return w, writerCloser{w, sink}, nil
	}
	w, err := sam.NewWriter(sink, header, 0)
	if err != nil {
		sink.Close()
		return nil, nil, fmt.Errorf("%w: %v", seqerr.ErrSinkCreateError, err)
	}
	return w, sink, nil
}

// writerCloser closes a bam.Writer (to flush the BGZF footer) and then the
// underlying sink.
type writerCloser struct {
	w    *bam.Writer
	sink io.WriteCloser
}

func (c writerCloser) Close() error {
	if err := c.w.Close(); err != nil {
		c.sink.Close()
		return err
	}
	return c.sink.Close()
}

func validateTagArgs(input, output, patternList, patternFile string, revComp, canonical,
	caseInsensitive, lower, upper bool, pinnedQ int, forceAC bool, textLog, jsonLog optionalStringFlag, suppress bool, threads int) error {
	if input == "" {
		return fmt.Errorf("%w: -i is required", seqerr.ErrInvalidArgs)
	}
	if isDirectoryPath(input) {
		return fmt.Errorf("%w: %s", seqerr.ErrPathIsDirectory, input)
	}
	if (patternList == "") == (patternFile == "") {
		return fmt.Errorf("%w: exactly one of -s or -f is required", seqerr.ErrInvalidArgs)
	}
	if err := checkExclusive(map[string]bool{"-r": revComp, "-c": canonical}); err != nil {
		return err
	}
	if err := checkExclusive(map[string]bool{"-I": caseInsensitive, "-L": lower, "-U": upper}); err != nil {
		return err
	}
	if err := checkExclusive(map[string]bool{"-q": pinnedQ != 0, "-a": forceAC}); err != nil {
		return err
	}
	if suppress && output != "" {
		return fmt.Errorf("%w: -S conflicts with -o", seqerr.ErrInvalidArgs)
	}
	if suppress && !textLog.set && !jsonLog.set {
		return fmt.Errorf("%w: -S requires -l or -j", seqerr.ErrInvalidArgs)
	}
	if textLog.set && jsonLog.set && textLog.value == stdoutSentinel && jsonLog.value == stdoutSentinel {
		return fmt.Errorf("%w: -l and -j cannot both write to stdout", seqerr.ErrInvalidArgs)
	}
	recordsToStdout := output == "" && !suppress
	if recordsToStdout && ((textLog.set && textLog.value == stdoutSentinel) || (jsonLog.set && jsonLog.value == stdoutSentinel)) {
		return fmt.Errorf("%w: a stdout log cannot be combined with record output to stdout", seqerr.ErrInvalidArgs)
	}
	if threads < 1 {
		return fmt.Errorf("%w", seqerr.ErrInvalidThreadCount)
	}
	return nil
}
