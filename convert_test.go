package xbridge

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestConvert_EndToEnd(t *testing.T) {
	moduleDir := writeCatalog(t)
	inputDir := t.TempDir()
	inputPath := filepath.Join(inputDir, "instance.xbrl")
	if err := os.WriteFile(inputPath, []byte(sampleInstance), 0o644); err != nil {
		t.Fatal(err)
	}
	outputDir := t.TempDir()

	result, err := Convert(context.Background(), inputPath, ConvertOptions{
		ModuleDir: moduleDir,
		OutputDir: outputDir,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if result.Module == nil {
		t.Fatal("expected the module catalog entry to be loaded")
	}
	if len(result.Resolved.Cells) != 1 {
		t.Fatalf("got %d resolved cells, want 1: unmatched=%+v", len(result.Resolved.Cells), result.Resolved.Unmatched)
	}
	if result.Resolved.Cells[0].TableCode != "F 01.01" {
		t.Errorf("cell = %+v", result.Resolved.Cells[0])
	}
	if result.FilingIndicators == nil {
		t.Fatal("expected a filing-indicator report")
	}
	if filepath.Dir(result.OutputPath) != outputDir {
		t.Errorf("OutputPath = %q, want a file under %q", result.OutputPath, outputDir)
	}

	zr, err := zip.OpenReader(result.OutputPath)
	if err != nil {
		t.Fatalf("opening output package: %v", err)
	}
	defer zr.Close()
	var foundTable bool
	for _, f := range zr.File {
		if f.Name == "instance/reports/F 01.01.csv" {
			foundTable = true
		}
	}
	if !foundTable {
		names := zipEntryNames(zr)
		t.Errorf("expected a F 01.01.csv entry in the package, got %v", names)
	}
}

func TestConvert_NoModuleDirLeavesEveryFactUnmatched(t *testing.T) {
	inputDir := t.TempDir()
	inputPath := filepath.Join(inputDir, "instance.xbrl")
	if err := os.WriteFile(inputPath, []byte(sampleInstance), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Convert(context.Background(), inputPath, ConvertOptions{
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Module != nil {
		t.Errorf("expected no module without a ModuleDir, got %+v", result.Module)
	}
	if len(result.Resolved.Unmatched) != 1 {
		t.Errorf("expected every fact to be unmatched, got %+v", result.Resolved.Unmatched)
	}
}

func TestConvert_MissingInputFile(t *testing.T) {
	_, err := Convert(context.Background(), filepath.Join(t.TempDir(), "nope.xbrl"), ConvertOptions{
		OutputDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}
