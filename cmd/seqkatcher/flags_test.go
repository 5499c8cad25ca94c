package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/seqkatcher/seqkatcher/internal/seqerr"
)

func TestValidateExtractArgs(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name     string
		input    string
		output   string
		list     string
		file     string
		revComp  bool
		canon    bool
		ci       bool
		lower    bool
		upper    bool
		q        int
		forceAC  bool
		textLog  optionalStringFlag
		jsonLog  optionalStringFlag
		suppress bool
		wantErr  error
	}{
		{
			name:    "missing input",
			list:    "ACG",
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:    "input is a directory",
			input:   dir,
			list:    "ACG",
			wantErr: seqerr.ErrPathIsDirectory,
		},
		{
			name:    "no pattern source",
			input:   "reads.fasta",
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:    "both pattern sources",
			input:   "reads.fasta",
			list:    "ACG",
			file:    "patterns.txt",
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:    "revcomp and canonical exclusive",
			input:   "reads.fasta",
			list:    "ACG",
			revComp: true,
			canon:   true,
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:    "case flags exclusive",
			input:   "reads.fasta",
			list:    "ACG",
			ci:      true,
			lower:   true,
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:    "pinned q and force AC exclusive",
			input:   "reads.fasta",
			list:    "ACG",
			q:       3,
			forceAC: true,
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:     "suppress conflicts with output",
			input:    "reads.fasta",
			list:     "ACG",
			output:   "out.fasta",
			suppress: true,
			wantErr:  seqerr.ErrInvalidArgs,
		},
		{
			name:     "suppress requires a log",
			input:    "reads.fasta",
			list:     "ACG",
			suppress: true,
			wantErr:  seqerr.ErrInvalidArgs,
		},
		{
			name:    "both logs to stdout",
			input:   "reads.fasta",
			list:    "ACG",
			textLog: optionalStringFlag{set: true, value: stdoutSentinel},
			jsonLog: optionalStringFlag{set: true, value: stdoutSentinel},
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:    "stdout log collides with stdout records",
			input:   "reads.fasta",
			list:    "ACG",
			textLog: optionalStringFlag{set: true, value: stdoutSentinel},
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:   "valid minimal extract",
			input:  "reads.fasta",
			list:   "ACG",
			output: "out.fasta",
		},
		{
			name:     "valid suppressed with file log",
			input:    "reads.fasta",
			list:     "ACG",
			suppress: true,
			textLog:  optionalStringFlag{set: true, value: filepath.Join(dir, "log.txt")},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := validateExtractArgs(c.input, c.output, c.list, c.file, c.revComp, c.canon,
				c.ci, c.lower, c.upper, c.q, c.forceAC, c.textLog, c.jsonLog, c.suppress)
			if c.wantErr == nil {
				if err != nil {
					t.Errorf("validateExtractArgs() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, c.wantErr) {
				t.Errorf("validateExtractArgs() = %v, want wrapping %v", err, c.wantErr)
			}
		})
	}
}

func TestValidateTagArgs(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name     string
		input    string
		output   string
		list     string
		file     string
		suppress bool
		threads  int
		textLog  optionalStringFlag
		wantErr  error
	}{
		{
			name:    "missing input",
			list:    "ACG",
			threads: 1,
			wantErr: seqerr.ErrInvalidArgs,
		},
		{
			name:    "input is a directory",
			input:   dir,
			list:    "ACG",
			threads: 1,
			wantErr: seqerr.ErrPathIsDirectory,
		},
		{
			name:    "zero threads",
			input:   "reads.bam",
			list:    "ACG",
			threads: 0,
			wantErr: seqerr.ErrInvalidThreadCount,
		},
		{
			name:     "suppress conflicts with output",
			input:    "reads.bam",
			list:     "ACG",
			output:   "out.bam",
			suppress: true,
			threads:  1,
			wantErr:  seqerr.ErrInvalidArgs,
		},
		{
			name:    "valid minimal tag",
			input:   "reads.bam",
			list:    "ACG",
			output:  "out.bam",
			threads: 1,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := validateTagArgs(c.input, c.output, c.list, c.file, false, false,
				false, false, false, 0, false, c.textLog, optionalStringFlag{}, c.suppress, c.threads)
			if c.wantErr == nil {
				if err != nil {
					t.Errorf("validateTagArgs() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, c.wantErr) {
				t.Errorf("validateTagArgs() = %v, want wrapping %v", err, c.wantErr)
			}
		})
	}
}
