// Package seqerr defines the fatal error kinds shared by the extract and
// tag drivers and the command-line layer. Identity is by sentinel value
// (via errors.Is), not by the human-readable string each one carries.
package seqerr

import "errors"

var (
	ErrInvalidArgs           = errors.New("invalid arguments")
	ErrPathIsDirectory       = errors.New("path is a directory")
	ErrPatternFileUnreadable = errors.New("pattern file unreadable")
	ErrDecoderError          = errors.New("decoder error")
	ErrPairLengthMismatch    = errors.New("paired input length mismatch")
	ErrSinkCreateError       = errors.New("could not create output sink")
	ErrInvalidTag            = errors.New("tag identifier must be exactly two bytes")
	ErrInvalidTagValue       = errors.New("existing tag value is not a string")
	ErrInvalidThreadCount    = errors.New("thread count must be >= 1")
	ErrInternalMatcherError  = errors.New("internal matcher error: pattern index out of range")
)
