// Package pattern implements the pattern-preparation pipeline: loading
// patterns from a file or an in-memory list, optional case folding and
// IUPAC reverse complementation, canonicalization, and the final
// dedupe-and-sort pass that produces the pattern list the matcher stack
// consumes.
package pattern

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"

	"github.com/seqkatcher/seqkatcher/internal/pathutil"
)

var (
	// ErrEmptyPatternSet is returned when preparation yields no patterns.
	ErrEmptyPatternSet = errors.New("pattern: prepared pattern set is empty")
	// ErrPathIsDirectory is returned when the pattern file path names a directory.
	ErrPathIsDirectory = errors.New("pattern: path is a directory")
)

// Options configures the preparation pipeline. Fold and (ReverseComplement,
// Canonicalize) are each mutually exclusive; the caller (the flag-parsing
// layer) is responsible for enforcing that before calling Prepare.
type Options struct {
	Lowercase         bool
	Uppercase         bool
	ReverseComplement bool
	Canonicalize      bool
}

// LoadFile reads one pattern per line from path. Lines starting with '#' or
// '>' are comments; blank lines are skipped; each remaining line is
// trimmed of ASCII whitespace.
func LoadFile(path string) ([][]byte, error) {
	if isDir, err := pathutil.IsDirectory(path); err != nil {
		return nil, fmt.Errorf("pattern: stat %s: %w", path, err)
	} else if isDir {
		return nil, fmt.Errorf("%w: %s", ErrPathIsDirectory, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pattern: open %s: %w", path, err)
	}
	defer f.Close()

	var out [][]byte
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] == '#' || line[0] == '>' {
			continue
		}
		out = append(out, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pattern: read %s: %w", path, err)
	}
	return out, nil
}

// Prepare runs the preparation pipeline over patterns in the order §4.6
// specifies: case fold, reverse-complement augmentation, canonicalization,
// then drop-empty/sort/dedupe. It fails with ErrEmptyPatternSet if the
// result is empty.
func Prepare(patterns [][]byte, opts Options) ([][]byte, error) {
	work := make([][]byte, len(patterns))
	for i, p := range patterns {
		work[i] = append([]byte(nil), p...)
	}

	if opts.Lowercase {
		for i, p := range work {
			work[i] = bytes.ToLower(p)
		}
	} else if opts.Uppercase {
		for i, p := range work {
			work[i] = bytes.ToUpper(p)
		}
	}

	if opts.ReverseComplement {
		augmented := make([][]byte, 0, len(work)*2)
		for _, p := range work {
			rc, err := ReverseComplement(p)
			if err != nil {
				return nil, err
			}
			augmented = append(augmented, p, rc)
		}
		work = augmented
	}

	if opts.Canonicalize {
		for i, p := range work {
			rc, err := ReverseComplement(p)
			if err != nil {
				return nil, err
			}
			if bytes.Compare(rc, p) < 0 {
				work[i] = rc
			}
		}
	}

	var cleaned [][]byte
	for _, p := range work {
		if len(p) > 0 {
			cleaned = append(cleaned, p)
		}
	}
	sort.Slice(cleaned, func(i, j int) bool { return bytes.Compare(cleaned[i], cleaned[j]) < 0 })

	var deduped [][]byte
	for _, p := range cleaned {
		if len(deduped) > 0 && bytes.Equal(deduped[len(deduped)-1], p) {
			continue
		}
		deduped = append(deduped, p)
	}

	if len(deduped) == 0 {
		return nil, ErrEmptyPatternSet
	}
	return deduped, nil
}

// ReverseComplement returns the IUPAC reverse complement of pattern,
// delegating the actual complement table to biogo's nucleic alphabet.
func ReverseComplement(pattern []byte) ([]byte, error) {
	s := linear.NewSeq("", alphabet.BytesToLetters(pattern), alphabet.DNAredundant)
	rc, err := s.RevComp()
	if err != nil {
		return nil, fmt.Errorf("pattern: reverse complement: %w", err)
	}
	out := make([]byte, rc.Len())
	for i, l := range rc.Seq {
		out[i] = byte(l)
	}
	return out, nil
}
