package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/speedata/xbridge/validation"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("xbridge validate", flag.ExitOnError)
	var (
		eba            bool
		postConversion bool
		asJSON         bool
		moduleDir      string
	)
	fs.BoolVar(&eba, "eba", false, "Include EBA business rules in addition to structural XML rules")
	fs.BoolVar(&postConversion, "post-conversion", false, "Restrict CSV rules to those marked post-conversion")
	fs.BoolVar(&asJSON, "json", false, "Print findings as a JSON array instead of human-readable lines")
	fs.StringVar(&moduleDir, "module-dir", "", "Taxonomy module catalog directory")
	fs.Usage = validateUsage
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		validateUsage()
		return exitFail
	}

	findings, err := validation.RunValidation(context.Background(), fs.Arg(0), validation.RunOptions{
		EBA:            eba,
		PostConversion: postConversion,
		ModuleDir:      moduleDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFail
	}

	if asJSON {
		outputJSON(findings)
	} else {
		outputText(findings)
	}

	for _, f := range findings {
		if f.Severity == validation.SeverityError {
			return exitFail
		}
	}
	return exitOK
}

func outputText(findings []validation.Finding) {
	var errors, warnings, infos int
	for _, f := range findings {
		fmt.Printf("[%s] %s: %s at %s\n", f.Severity, f.RuleCode, f.Message, f.Location)
		switch f.Severity {
		case validation.SeverityError:
			errors++
		case validation.SeverityWarning:
			warnings++
		case validation.SeverityInfo:
			infos++
		}
	}
	fmt.Printf("%d error(s), %d warning(s), %d info\n", errors, warnings, infos)
}

func outputJSON(findings []validation.Finding) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
	}
}

func validateUsage() {
	fmt.Fprintf(os.Stderr, `Usage: xbridge validate [options] <input.xbrl|.xml|.zip>

Validates an XBRL-XML instance or XBRL-CSV report package against the
structural rule catalog, and optionally the EBA business rule families.

Options:
  --eba                Include EBA business rules (EBA-* codes)
  --post-conversion     Restrict CSV rules to those flagged post-conversion
  --json                Print findings as a JSON array
  --module-dir string   Taxonomy module catalog directory

Exit codes:
  0  No ERROR-severity finding was reported
  1  At least one ERROR-severity finding, or an I/O failure

Examples:
  xbridge validate report.xbrl
  xbridge validate --eba --json report.xbrl
  xbridge validate --eba --post-conversion report.zip
`)
}
