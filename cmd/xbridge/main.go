// Command xbridge converts EBA XBRL-XML instance documents to XBRL-CSV
// report packages and validates them against structural and EBA
// business rules.
package main

import (
	"fmt"
	"os"
)

const (
	exitOK   = 0
	exitFail = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return exitFail
	}

	// "validate" dispatches to the validate subcommand; anything else is
	// treated as the input path for the default convert command.
	if os.Args[1] == "validate" {
		return runValidate(os.Args[2:])
	}
	return runConvert(os.Args[1:])
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: xbridge <input.xbrl|.xml> [options]
       xbridge validate <input.xbrl|.xml|.zip> [options]

Commands:
  (default)   Convert an XBRL-XML instance into an XBRL-CSV report package
  validate    Validate an instance or report package against the rule catalog

Use "xbridge validate --help" for validate's options, or run convert with
--help for conversion options.
`)
}
