package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path string
		want RuleSet
		ok   bool
	}{
		{"report.xbrl", RuleSetXML, true},
		{"report.XBRL", RuleSetXML, true},
		{"instance.xml", RuleSetXML, true},
		{"package.zip", RuleSetCSV, true},
		{"notes.txt", "", false},
	}
	for _, c := range cases {
		got, err := DetectFormat(c.path)
		if c.ok && err != nil {
			t.Errorf("DetectFormat(%q): unexpected error %v", c.path, err)
		}
		if !c.ok && err == nil {
			t.Errorf("DetectFormat(%q): expected an error", c.path)
		}
		if got != c.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestSelectRules(t *testing.T) {
	registry := []*RuleDefinition{
		{Code: "XML-001", XML: true},
		{Code: "CSV-001", CSV: true},
		{Code: "BOTH-001", XML: true, CSV: true},
		{Code: "EBA-001", XML: true, EBA: true},
		{Code: "POST-001", CSV: true, PostConversion: true},
	}

	xmlRules := SelectRules(registry, RuleSetXML, false, false)
	var xmlCodes []string
	for _, r := range xmlRules {
		xmlCodes = append(xmlCodes, r.Code)
	}
	if got, want := xmlCodes, []string{"XML-001", "BOTH-001"}; !equalStrings(got, want) {
		t.Errorf("xml rules (eba=false) = %v, want %v", got, want)
	}

	xmlWithEBA := SelectRules(registry, RuleSetXML, true, false)
	var xmlEBACodes []string
	for _, r := range xmlWithEBA {
		xmlEBACodes = append(xmlEBACodes, r.Code)
	}
	if got, want := xmlEBACodes, []string{"XML-001", "BOTH-001", "EBA-001"}; !equalStrings(got, want) {
		t.Errorf("xml rules (eba=true) = %v, want %v", got, want)
	}

	csvRules := SelectRules(registry, RuleSetCSV, false, false)
	var csvCodes []string
	for _, r := range csvRules {
		csvCodes = append(csvCodes, r.Code)
	}
	if got, want := csvCodes, []string{"CSV-001", "BOTH-001", "POST-001"}; !equalStrings(got, want) {
		t.Errorf("csv rules (postConversion=false) = %v, want %v", got, want)
	}

	csvPostOnly := SelectRules(registry, RuleSetCSV, false, true)
	var csvPostCodes []string
	for _, r := range csvPostOnly {
		csvPostCodes = append(csvPostCodes, r.Code)
	}
	if got, want := csvPostCodes, []string{"POST-001"}; !equalStrings(got, want) {
		t.Errorf("csv rules (postConversion=true) = %v, want %v", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

const validTestInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
            xmlns:link="http://www.xbrl.org/2003/linkbase"
            xmlns:xlink="http://www.w3.org/1999/xlink"
            xmlns:xbrldi="http://xbrl.org/2006/xbrldi"
            xmlns:find="http://www.eurofiling.info/xbrl/ext/filing-indicators"
            xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
            xmlns:eba_met="http://www.eba.europa.eu/xbrl/crr/dict/met">
  <link:schemaRef xlink:type="simple" xlink:href="http://example.org/mod.xsd"/>
  <xbrli:context id="c1">
    <xbrli:entity>
      <xbrli:identifier scheme="http://standards.iso.org/iso/17442">529900T8BM49AURSDO55</xbrli:identifier>
    </xbrli:entity>
    <xbrli:period><xbrli:instant>2024-12-31</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:unit id="u1"><xbrli:measure>iso4217:EUR</xbrli:measure></xbrli:unit>
  <find:fIndicators>
    <find:filingIndicator contextRef="c1">FP01</find:filingIndicator>
  </find:fIndicators>
  <eba_met:mi10 contextRef="c1" unitRef="u1" decimals="-4">1000000</eba_met:mi10>
</xbrli:xbrl>`

func TestRunValidation_CleanInstanceHasNoSchemaRefFinding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instance.xbrl")
	if err := os.WriteFile(path, []byte(validTestInstance), 0o644); err != nil {
		t.Fatal(err)
	}

	findings, err := RunValidation(context.Background(), path, RunOptions{EBA: true})
	if err != nil {
		t.Fatalf("RunValidation: %v", err)
	}
	for _, f := range findings {
		if f.RuleCode == "XML-010" {
			t.Errorf("unexpected XML-010 finding against a well-formed schemaRef: %+v", f)
		}
	}
}

func TestRunValidation_MissingSchemaRefIsFlagged(t *testing.T) {
	doc := `<?xml version="1.0"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance">
</xbrli:xbrl>`
	path := filepath.Join(t.TempDir(), "instance.xbrl")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	findings, err := RunValidation(context.Background(), path, RunOptions{})
	if err != nil {
		t.Fatalf("RunValidation: %v", err)
	}

	var found bool
	for _, f := range findings {
		if f.RuleCode == "XML-010" {
			found = true
			if f.Severity != SeverityError {
				t.Errorf("XML-010 severity = %q, want ERROR", f.Severity)
			}
		}
	}
	if !found {
		t.Error("expected an XML-010 finding for a document with no link:schemaRef")
	}
}

func TestRunValidation_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instance.txt")
	if err := os.WriteFile(path, []byte("irrelevant"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := RunValidation(context.Background(), path, RunOptions{}); err == nil {
		t.Fatal("expected an error for an unsupported file extension")
	}
}
