// Package pathutil implements the small set of file-name manipulations the
// extract and tag drivers need: inserting a paired-output suffix before the
// first dot in a file name, and peeling exactly one compression extension to
// find the underlying record format.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// compressionExts are the single-layer compression suffixes the drivers
// recognize and peel before inspecting the underlying format extension.
var compressionExts = map[string]bool{
	"gz":  true,
	"bz":  true,
	"bz2": true,
	"xz":  true,
}

// AddSuffixToFilePrefix inserts suffix immediately before the first dot in
// the base name of path, leaving the directory and the rest of the name
// (including any further dotted extensions) untouched. A name with no dot
// has suffix appended at the end.
func AddSuffixToFilePrefix(path, suffix string) string {
	dir, base := filepath.Split(path)
	i := strings.IndexByte(base, '.')
	if i < 0 {
		return dir + base + suffix
	}
	return dir + base[:i] + suffix + base[i:]
}

// IdentifyUncompressedType returns the file extension that describes the
// record format in path, peeling exactly one trailing compression extension
// (gz, bz, bz2, xz) if present. For "sample.fasta.gz" it returns "fasta";
// for "sample.fasta" it returns "fasta"; for "sample" it returns "".
func IdentifyUncompressedType(path string) string {
	base := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if compressionExts[ext] {
		base = strings.TrimSuffix(base, "."+ext)
		ext = strings.TrimPrefix(filepath.Ext(base), ".")
	}
	return ext
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
