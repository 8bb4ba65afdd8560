package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/speedata/xbridge"
)

func runConvert(args []string) int {
	fs := flag.NewFlagSet("xbridge", flag.ExitOnError)
	var (
		outputPath    string
		moduleDir     string
		headersAsData bool
		strict        bool
		noStrict      bool
	)
	fs.StringVar(&outputPath, "output-path", ".", "Directory the output ZIP package is written into")
	fs.StringVar(&moduleDir, "module-dir", "", "Taxonomy module catalog directory")
	fs.BoolVar(&headersAsData, "headers-as-datapoints", false, "Accepted for compatibility; the writer already emits one row per resolved cell for both table architectures")
	fs.BoolVar(&strict, "strict-validation", false, "Fail the conversion on any orphaned filing-indicator fact instead of warning")
	fs.BoolVar(&noStrict, "no-strict-validation", false, "Explicitly request permissive filing-indicator handling (the default)")
	fs.Usage = convertUsage
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		convertUsage()
		return exitFail
	}
	_ = headersAsData // see flag description above

	inputPath := fs.Arg(0)

	opts := xbridge.ConvertOptions{
		ModuleDir:              moduleDir,
		OutputDir:              outputPath,
		StrictFilingIndicators: strict && !noStrict,
	}

	result, err := xbridge.Convert(context.Background(), inputPath, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFail
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	fmt.Println(result.OutputPath)
	return exitOK
}

func convertUsage() {
	fmt.Fprintf(os.Stderr, `Usage: xbridge <input.xbrl|.xml> [options]

Converts an XBRL-XML instance document into an XBRL-CSV report package.

Options:
  --output-path string          Directory the output ZIP package is written into (default ".")
  --module-dir string           Taxonomy module catalog directory
  --headers-as-datapoints       Accepted for compatibility; has no effect on output shape
  --strict-validation           Fail on any orphaned filing-indicator fact
  --no-strict-validation        Report orphaned facts as warnings (default)

Exit codes:
  0  Conversion succeeded; the output ZIP path was printed to stdout
  1  Conversion failed

Example:
  xbridge report.xbrl --output-path ./out --module-dir ./modules
`)
}
