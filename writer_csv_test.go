package xbridge

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func newTestPackageInputs() (*Instance, *ResolveResult, *DecimalsAggregator) {
	inst := &Instance{
		EntityIdentifier: EntityIdentifier{Scheme: "http://standards.iso.org/iso/17442", Value: "529900T8BM49AURSDO55"},
		ReferencePeriod:  "2024-12-31",
		FilingIndicators: []FilingIndicator{
			{TableCode: "F 01.01", Filed: true},
			{TableCode: "F 09.01", Filed: false},
		},
	}
	fact := &Fact{Value: "1000000", HasDecimals: true, Decimals: IntDecimals(-4), Order: 0}
	unit := NewSimpleUnit([]QName{{Space: nsISO4217, Local: "EUR"}})
	res := &ResolveResult{
		Cells: []ResolvedCell{
			{
				TableCode:   "F 01.01",
				DatapointID: "mi10",
				OpenKeys:    map[string]string{},
				Fact:        fact,
				Unit:        &unit,
				Value:       fact.Value,
				Datatype:    DatatypeMonetary,
			},
		},
	}
	agg := NewDecimalsAggregator()
	agg.AddAll(res.Cells)
	return inst, res, agg
}

func TestWritePackage_Structure(t *testing.T) {
	inst, res, agg := newTestPackageInputs()
	dir := t.TempDir()

	path, err := WritePackage(context.Background(), inst, res, agg, dir, "report")
	if err != nil {
		t.Fatalf("WritePackage: %v", err)
	}
	if filepath.Dir(path) != dir || filepath.Base(path) != "report.zip" {
		t.Errorf("path = %q", path)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening package: %v", err)
	}
	defer zr.Close()

	names := map[string]*zip.File{}
	for _, f := range zr.File {
		names[f.Name] = f
	}

	want := []string{
		"report/META-INF/reportPackage.json",
		"report/reports/report.json",
		"report/reports/parameters.csv",
		"report/reports/FilingIndicators.csv",
		"report/reports/F 01.01.csv",
	}
	for _, n := range want {
		if _, ok := names[n]; !ok {
			t.Errorf("missing entry %q; got %v", n, zipEntryNames(zr))
		}
	}

	tableCSV := readZipCSV(t, names["report/reports/F 01.01.csv"])
	if len(tableCSV) != 2 {
		t.Fatalf("got %d rows in F 01.01.csv, want 2 (header + 1 data row)", len(tableCSV))
	}
	header := tableCSV[0]
	if header[len(header)-4] != "datapoint" || header[len(header)-3] != "value" {
		t.Errorf("unexpected tail columns in header %v", header)
	}
	if !contains(header, "unit") || !contains(header, "decimals") {
		t.Errorf("expected unit and decimals columns, got %v", header)
	}
	row := tableCSV[1]
	if row[indexOf(header, "datapoint")] != "mi10" {
		t.Errorf("row = %v", row)
	}
	if row[indexOf(header, "unit")] != (QName{Space: nsISO4217, Local: "EUR"}).String() {
		t.Errorf("unit cell = %q", row[indexOf(header, "unit")])
	}
	if row[indexOf(header, "decimals")] != "-4" {
		t.Errorf("decimals cell = %q", row[indexOf(header, "decimals")])
	}

	fi := readZipCSV(t, names["report/reports/FilingIndicators.csv"])
	if len(fi) != 2 || fi[1][0] != "F 01.01" {
		t.Errorf("FilingIndicators.csv = %v; only Filed=true rows should be emitted", fi)
	}

	params := readZipCSV(t, names["report/reports/parameters.csv"])
	var gotEntity bool
	for _, r := range params[1:] {
		if r[0] == "entityID" && r[1] == "529900T8BM49AURSDO55" {
			gotEntity = true
		}
		if r[0] == "decimalsMonetary" && r[1] != "-4" {
			t.Errorf("decimalsMonetary parameter = %q, want -4", r[1])
		}
	}
	if !gotEntity {
		t.Errorf("parameters.csv missing entityID row: %v", params)
	}
	for _, r := range params[1:] {
		if r[0] == "baseCurrency" {
			t.Errorf("parameters.csv has a baseCurrency row but no cell declared $baseCurrency: %v", r)
		}
	}
}

// TestWritePackage_BaseCurrencyRow mirrors the two
// test_parameters_base_currency.py cases: the row is present when a cell
// bound a $baseCurrency unit dimension, and absent otherwise (covered by
// TestWritePackage_Structure above).
func TestWritePackage_BaseCurrencyRow(t *testing.T) {
	inst, res, agg := newTestPackageInputs()
	eur := NewSimpleUnit([]QName{{Space: nsISO4217, Local: "EUR"}})
	res.BaseCurrency = &eur
	dir := t.TempDir()

	path, err := WritePackage(context.Background(), inst, res, agg, dir, "report")
	if err != nil {
		t.Fatalf("WritePackage: %v", err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening package: %v", err)
	}
	defer zr.Close()

	names := map[string]*zip.File{}
	for _, f := range zr.File {
		names[f.Name] = f
	}

	params := readZipCSV(t, names["report/reports/parameters.csv"])
	var got string
	for _, r := range params[1:] {
		if r[0] == "baseCurrency" {
			got = r[1]
		}
	}
	if want := (QName{Space: nsISO4217, Local: "EUR"}).String(); got != want {
		t.Errorf("baseCurrency parameter = %q, want %q", got, want)
	}
}

func TestWritePackage_NoPartialFileOnEmptyOutputDirCreation(t *testing.T) {
	inst, res, agg := newTestPackageInputs()
	nested := filepath.Join(t.TempDir(), "a", "b", "c")

	path, err := WritePackage(context.Background(), inst, res, agg, nested, "out")
	if err != nil {
		t.Fatalf("WritePackage: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected output file to exist at %q: %v", path, err)
	}
	entries, err := os.ReadDir(nested)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in the output directory (no leftover temp file), got %v", entries)
	}
}

func zipEntryNames(zr *zip.ReadCloser) []string {
	out := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		out = append(out, f.Name)
	}
	return out
}

func readZipCSV(t *testing.T, f *zip.File) [][]string {
	t.Helper()
	if f == nil {
		t.Fatal("nil zip entry")
	}
	rc, err := f.Open()
	if err != nil {
		t.Fatalf("opening %q: %v", f.Name, err)
	}
	defer rc.Close()
	rows, err := csv.NewReader(rc).ReadAll()
	if err != nil {
		t.Fatalf("reading csv %q: %v", f.Name, err)
	}
	return rows
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func indexOf(ss []string, s string) int {
	for i, x := range ss {
		if x == s {
			return i
		}
	}
	return -1
}
