package xbridge

import "fmt"

// FilingIndicatorReport is the outcome of checking the reported facts
// against the declared filing indicators.
type FilingIndicatorReport struct {
	// Orphaned lists every fact that would be placed by some
	// non-reported table and by no reported table.
	Orphaned []*Fact

	// PerNonReportedTable, keyed by table code, counts how many of a
	// non-reported table's expected facts are orphaned, and how many are
	// shared with a reported table.
	PerNonReportedTable map[string]NonReportedTableStats
}

type NonReportedTableStats struct {
	Orphaned int
	Shared   int
}

// CheckFilingIndicators validates that every fact the resolver matched
// is consistent with the instance's declared filing indicators. strict selects whether orphaned facts fail the conversion
// (returning a *ConversionError) or are merely reported as warnings.
// Only a table with an explicit filed="false" indicator counts as
// non-reported; a table with no filing indicator at all is neither
// reported nor non-reported, and facts placed only by it are not
// classified as orphaned.
func CheckFilingIndicators(inst *Instance, res *ResolveResult, strict bool) (*FilingIndicatorReport, error) {
	reported := map[string]bool{}    // table code -> filed true
	nonReported := map[string]bool{} // table code -> filed false

	for _, fi := range inst.FilingIndicators {
		if fi.Filed {
			reported[fi.TableCode] = true
		} else {
			nonReported[fi.TableCode] = true
		}
	}

	report := &FilingIndicatorReport{PerNonReportedTable: map[string]NonReportedTableStats{}}

	for factOrder, tables := range res.FactTables {
		inReported := false
		inNonReported := []string{}
		for _, tc := range tables {
			if reported[tc] {
				inReported = true
			}
			if nonReported[tc] {
				inNonReported = append(inNonReported, tc)
			}
		}
		if len(inNonReported) == 0 {
			continue
		}
		var fact *Fact
		for i := range inst.Facts {
			if inst.Facts[i].Order == factOrder {
				fact = &inst.Facts[i]
				break
			}
		}
		if inReported {
			for _, tc := range inNonReported {
				stats := report.PerNonReportedTable[tc]
				stats.Shared++
				report.PerNonReportedTable[tc] = stats
			}
			continue
		}

		report.Orphaned = append(report.Orphaned, fact)
		for _, tc := range inNonReported {
			stats := report.PerNonReportedTable[tc]
			stats.Orphaned++
			report.PerNonReportedTable[tc] = stats
		}
	}

	if strict && len(report.Orphaned) > 0 {
		return report, &ConversionError{Detail: formatOrphanAggregate(report)}
	}

	for range report.Orphaned {
		inst.Warnings = append(inst.Warnings, RecoverableWarning{
			Code:    "orphaned-fact",
			Message: "fact placed only by a non-reported table",
		})
	}

	return report, nil
}

func formatOrphanAggregate(report *FilingIndicatorReport) string {
	msg := fmt.Sprintf("%d orphaned fact(s) across non-reported tables:", len(report.Orphaned))
	for tc, stats := range report.PerNonReportedTable {
		msg += fmt.Sprintf(" %s(orphaned=%d,shared=%d)", tc, stats.Orphaned, stats.Shared)
	}
	return msg
}
