package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/seqkatcher/seqkatcher/internal/extract"
	"github.com/seqkatcher/seqkatcher/internal/matcher"
	"github.com/seqkatcher/seqkatcher/internal/pathutil"
	"github.com/seqkatcher/seqkatcher/internal/pattern"
	"github.com/seqkatcher/seqkatcher/internal/seqerr"
	"github.com/seqkatcher/seqkatcher/internal/seqlog"
)

func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)

	input := fs.String("i", "", "input FASTA/FASTQ path (required)")
	input2 := fs.String("2", "", "second input path for paired FASTQ")
	output := fs.String("o", "", "output path (default: stdout)")
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

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage of %s extract:\n", programName)
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if err := validateExtractArgs(*input, *output, *patternList, *patternFile, *revComp, *canonical,
		*caseInsensitive, *lower, *upper, *pinnedQ, *forceAC, textLog, jsonLog, *suppress); err != nil {
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

	format := extract.FASTA
	ext := pathutil.IdentifyUncompressedType(*input)
	if ext == "fastq" || ext == "fq" {
		format = extract.FASTQ
	}

	in, err := openInput(*input)
	if err != nil {
		log.Println(err)
		return 1
	}
	defer in.Close()

	cfg := extract.Config{
		Format:         format,
		Input:          in,
		Patterns:       patterns,
		Set:            set,
		InvertMatch:    *invert,
		SuppressOutput: *suppress,
		LoggingActive:  textLog.set || jsonLog.set,
	}

	paired := *input2 != ""
	if paired {
		in2, err := openInput(*input2)
		if err != nil {
			log.Println(err)
			return 1
		}
		defer in2.Close()
		cfg.Input2 = in2
	}

	if !*suppress {
		outPath := *output
		if outPath == "" {
			outPath = stdoutSentinel
		}
		if paired {
			p1 := pathutil.AddSuffixToFilePrefix(outPath, "_1")
			p2 := pathutil.AddSuffixToFilePrefix(outPath, "_2")
			w1, err := openSink(p1)
			if err != nil {
				log.Println(err)
				return 1
			}
			defer w1.Close()
			w2, err := openSink(p2)
			if err != nil {
				log.Println(err)
				return 1
			}
			defer w2.Close()
			cfg.Sink = &extract.Sink{Label: p1, Writer: w1}
			cfg.Sink2 = &extract.Sink{Label: p2, Writer: w2}
		} else {
			w, err := openSink(outPath)
			if err != nil {
				log.Println(err)
				return 1
			}
			defer w.Close()
			cfg.Sink = &extract.Sink{Label: outPath, Writer: w}
		}
	}

	meta := seqlog.Meta{
		Program:         programName,
		Version:         version,
		Timestamp:       time.Now(),
		Subcommand:      "extract",
		CommandLine:     commandLine("extract", args),
		SearchAlgorithm: algo.String(),
		Inverted:        *invert,
		CaseInsensitive: *caseInsensitive,
		PatternCount:    len(patterns),
		InputFiles: seqlog.InputFiles{
			KmerFile:    *patternFile,
			RecordFile1: *input,
			RecordFile2: *input2,
		},
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

	res, err := extract.Run(cfg)
	if err != nil {
		log.Println(err)
		return 1
	}

	summary := buildExtractSummary(patterns, res, paired)
	if cfg.TextLogger != nil {
		cfg.TextLogger.WriteSummary(summary)
	}
	if cfg.JSONLogger != nil {
		cfg.JSONLogger.Finalize(meta, summary)
	}

	return 0
}

func buildExtractSummary(patterns [][]byte, res extract.Result, paired bool) seqlog.Summary {
	found := 0
	counts := make([]seqlog.PatternCount, len(patterns))
	for i, p := range patterns {
		counts[i] = seqlog.PatternCount{Pattern: string(p), Count: res.PatternHits[i]}
		if res.PatternHits[i] > 0 {
			found++
		}
	}
	s := seqlog.Summary{
		PatternCounts:   counts,
		PatternsFound:   found,
		PatternsTotal:   len(patterns),
		RecordsScanned:  res.RecordsScanned,
		BasesScanned:    res.BasesScanned,
		TotalHits:       res.TotalHits,
		RecordsWithHit:  res.RecordsWithHit,
		RecordsWritten:  res.RecordsWritten,
		Paired:          paired,
		RecordsScanned2: res.RecordsScanned2,
		BasesScanned2:   res.BasesScanned2,
		TotalHits2:      res.TotalHits2,
		RecordsWithHit2: res.RecordsWithHit2,
	}
	if paired {
		s.RecordsExtracted = res.RecordsWritten
	}
	return s
}

// preparePatterns loads patterns from either the inline list or a pattern
// file and runs them through the C6 preparation pipeline.
func preparePatterns(inline, file string, revComp, canonical, lower, upper bool) ([][]byte, error) {
	var raw [][]byte
	if file != "" {
		var err error
		raw, err = pattern.LoadFile(file)
		if err != nil {
			return nil, err
		}
	} else {
		for _, p := range strings.Split(inline, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				raw = append(raw, []byte(p))
			}
		}
	}
	return pattern.Prepare(raw, pattern.Options{
		Lowercase:         lower,
		Uppercase:         upper,
		ReverseComplement: revComp,
		Canonicalize:      canonical,
	})
}

func validateExtractArgs(input, output, patternList, patternFile string, revComp, canonical,
	caseInsensitive, lower, upper bool, pinnedQ int, forceAC bool, textLog, jsonLog optionalStringFlag, suppress bool) error {
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
	return nil
}
