package main

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seqkatcher/seqkatcher/internal/seqerr"
)

// stdoutSentinel is the value an optionalStringFlag takes when -l/-j is
// given with no path argument, per §6: "absent argument means stdout".
const stdoutSentinel = "STDOUT"

// optionalStringFlag implements flag.Value and the (unexported by the flag
// package, but honored) IsBoolFlag() convention so that -l and -j may be
// given either bare (enabling logging to stdout) or with an explicit path
// via -l=path. The standard flag package only special-cases this shape for
// values whose IsBoolFlag method returns true.
type optionalStringFlag struct {
	set   bool
	value string
}

func (f *optionalStringFlag) String() string {
	if f == nil {
		return ""
	}
	return f.value
}

func (f *optionalStringFlag) Set(v string) error {
	f.set = true
	if v == "" || v == "true" {
		f.value = stdoutSentinel
	} else {
		f.value = v
	}
	return nil
}

func (f *optionalStringFlag) IsBoolFlag() bool { return true }

// commandLine renders the invocation the way the text and JSON loggers
// record it: the program name, the subcommand, then its arguments, one
// element each.
func commandLine(subcommand string, args []string) []string {
	out := make([]string, 0, len(args)+2)
	out = append(out, programName, subcommand)
	out = append(out, args...)
	return out
}

// openSink opens path for writing, or returns os.Stdout when path is the
// stdout sentinel. It fails with ErrSinkCreateError on any other error.
func openSink(path string) (io.WriteCloser, error) {
	if path == stdoutSentinel {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", seqerr.ErrSinkCreateError, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openInput opens path for reading, peeling at most one layer of gzip or
// bzip2 compression based on the file extension. xz and multi-layer
// compression are not supported: no library in the dependency pack
// decompresses xz, and nothing in this codebase needs it beyond the
// compression-extension bookkeeping in internal/pathutil.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", seqerr.ErrDecoderError, err)
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", seqerr.ErrDecoderError, err)
		}
		return readCloser{gz, f}, nil
	case strings.HasSuffix(path, ".bz2"), strings.HasSuffix(path, ".bz"):
		return readCloser{io.NopCloser(bzip2.NewReader(f)), f}, nil
	default:
		return f, nil
	}
}

// readCloser pairs a decompressing reader with the underlying file so both
// get closed.
type readCloser struct {
	io.Reader
	file *os.File
}

func (r readCloser) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		c.Close()
	}
	return r.file.Close()
}

// checkExclusive reports ErrInvalidArgs when more than one of the named,
// set flags is true.
func checkExclusive(flags map[string]bool) error {
	var on []string
	for name, set := range flags {
		if set {
			on = append(on, name)
		}
	}
	if len(on) > 1 {
		return fmt.Errorf("%w: %s are mutually exclusive", seqerr.ErrInvalidArgs, strings.Join(on, ", "))
	}
	return nil
}

// isDirectoryPath reports whether path names an existing directory.
func isDirectoryPath(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
