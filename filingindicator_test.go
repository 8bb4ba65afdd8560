package xbridge

import "testing"

func newTestInstance() *Instance {
	return &Instance{
		Facts: []Fact{
			{Order: 0},
			{Order: 1},
			{Order: 2},
		},
	}
}

func TestCheckFilingIndicators_OrphanedFact(t *testing.T) {
	inst := newTestInstance()
	inst.FilingIndicators = []FilingIndicator{
		{TableCode: "F 01.01", Filed: false},
	}
	res := &ResolveResult{FactTables: map[int][]string{
		0: {"F 01.01"},
	}}

	report, err := CheckFilingIndicators(inst, res, false)
	if err != nil {
		t.Fatalf("CheckFilingIndicators (permissive): %v", err)
	}
	if len(report.Orphaned) != 1 || report.Orphaned[0].Order != 0 {
		t.Errorf("orphaned = %+v", report.Orphaned)
	}
	if stats := report.PerNonReportedTable["F 01.01"]; stats.Orphaned != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(inst.Warnings) != 1 {
		t.Errorf("expected one warning in permissive mode, got %d", len(inst.Warnings))
	}
}

func TestCheckFilingIndicators_StrictModeFails(t *testing.T) {
	inst := newTestInstance()
	inst.FilingIndicators = []FilingIndicator{
		{TableCode: "F 01.01", Filed: false},
	}
	res := &ResolveResult{FactTables: map[int][]string{
		0: {"F 01.01"},
	}}

	_, err := CheckFilingIndicators(inst, res, true)
	if err == nil {
		t.Fatal("expected a fatal error in strict mode with an orphaned fact")
	}
}

func TestCheckFilingIndicators_SharedFactIsNotOrphaned(t *testing.T) {
	inst := newTestInstance()
	inst.FilingIndicators = []FilingIndicator{
		{TableCode: "F 01.01", Filed: true},
		{TableCode: "F 09.01", Filed: false},
	}
	res := &ResolveResult{FactTables: map[int][]string{
		0: {"F 01.01", "F 09.01"},
	}}

	report, err := CheckFilingIndicators(inst, res, true)
	if err != nil {
		t.Fatalf("CheckFilingIndicators: %v", err)
	}
	if len(report.Orphaned) != 0 {
		t.Errorf("expected no orphaned facts, got %+v", report.Orphaned)
	}
	if stats := report.PerNonReportedTable["F 09.01"]; stats.Shared != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
