// seqkatcher searches biological sequence records for a set of short query
// patterns and either extracts whole records containing a match or
// annotates alignment records with the patterns found inside them.
package main

import (
	"fmt"
	"os"
)

// programName and version are reported in log headers, the JSON
// meta_information object, and the BAM/SAM @PG line.
const (
	programName = "seqkatcher"
	version     = "0.1.0"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  %[1]s extract -i <records> [-2 <records>] -o <out> (-s <patterns> | -f <file>) [options]
  %[1]s tag -i <records> -o <out> (-s <patterns> | -f <file>) -t <XY> [options]

Run '%[1]s extract -h' or '%[1]s tag -h' for subcommand options.
`, programName)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var code int
	switch os.Args[1] {
	case "extract":
		code = runExtract(os.Args[2:])
	case "tag":
		code = runTag(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown subcommand %q\n\n", programName, os.Args[1])
		usage()
		os.Exit(2)
	}
	os.Exit(code)
}
