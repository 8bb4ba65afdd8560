package xbridge

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
            xmlns:link="http://www.xbrl.org/2003/linkbase"
            xmlns:xlink="http://www.w3.org/1999/xlink"
            xmlns:xbrldi="http://xbrl.org/2006/xbrldi"
            xmlns:find="http://www.eurofiling.info/xbrl/ext/filing-indicators"
            xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
            xmlns:eba_met="http://www.eba.europa.eu/xbrl/crr/dict/met"
            xmlns:eba_CA="http://www.eba.europa.eu/xbrl/crr/dict/dom/CA">
  <link:schemaRef xlink:type="simple" xlink:href="http://example.org/mod.xsd"/>
  <xbrli:context id="c1">
    <xbrli:entity>
      <xbrli:identifier scheme="http://standards.iso.org/iso/17442">529900T8BM49AURSDO55</xbrli:identifier>
    </xbrli:entity>
    <xbrli:period><xbrli:instant>2024-12-31</xbrli:instant></xbrli:period>
    <xbrli:scenario>
      <xbrldi:explicitMember dimension="eba_CA:CA">eba_CA:x1</xbrldi:explicitMember>
    </xbrli:scenario>
  </xbrli:context>
  <xbrli:unit id="u1"><xbrli:measure>iso4217:EUR</xbrli:measure></xbrli:unit>
  <find:fIndicators>
    <find:filingIndicator contextRef="c1">FP01</find:filingIndicator>
  </find:fIndicators>
  <eba_met:mi10 contextRef="c1" unitRef="u1" decimals="-4">1000000</eba_met:mi10>
</xbrli:xbrl>`

func TestParseInstance_Basic(t *testing.T) {
	inst, err := ParseInstance([]byte(sampleInstance))
	if err != nil {
		t.Fatalf("ParseInstance: %v", err)
	}

	if inst.SchemaRef != "http://example.org/mod.xsd" {
		t.Errorf("SchemaRef = %q", inst.SchemaRef)
	}
	if len(inst.Contexts) != 1 {
		t.Fatalf("got %d contexts, want 1", len(inst.Contexts))
	}
	ctx := inst.Contexts["c1"]
	if ctx.Entity.Value != "529900T8BM49AURSDO55" {
		t.Errorf("entity value = %q", ctx.Entity.Value)
	}
	if ctx.Instant != "2024-12-31" {
		t.Errorf("instant = %q", ctx.Instant)
	}
	dim := QName{Space: "http://www.eba.europa.eu/xbrl/crr/dict/dom/CA", Local: "CA"}
	member, ok := ctx.Scenario.Explicit[dim]
	if !ok {
		t.Fatalf("explicit member for dimension CA not found")
	}
	if member.Local != "x1" {
		t.Errorf("member local = %q, want x1", member.Local)
	}

	if len(inst.Facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(inst.Facts))
	}
	f := inst.Facts[0]
	if f.Value != "1000000" || f.UnitID != "u1" || !f.HasDecimals {
		t.Errorf("fact = %+v", f)
	}
	if f.Decimals != IntDecimals(-4) {
		t.Errorf("decimals = %v, want -4", f.Decimals)
	}

	if len(inst.FilingIndicators) != 1 || inst.FilingIndicators[0].TableCode != "FP01" {
		t.Errorf("filing indicators = %+v", inst.FilingIndicators)
	}
}

// TestParseInstance_Deterministic parses the same document twice and
// compares the results with go-cmp, the way einvoice_test.go compares a
// round-tripped invoice against the original: any nondeterminism in map
// iteration or token handling would otherwise only show up as a flaky
// assertion on some unrelated field.
func TestParseInstance_Deterministic(t *testing.T) {
	first, err := ParseInstance([]byte(sampleInstance))
	if err != nil {
		t.Fatalf("ParseInstance (first): %v", err)
	}
	second, err := ParseInstance([]byte(sampleInstance))
	if err != nil {
		t.Fatalf("ParseInstance (second): %v", err)
	}

	opts := []cmp.Option{
		cmp.Comparer(func(a, b DecimalsParam) bool { return a == b }),
	}
	if diff := cmp.Diff(first, second, opts...); diff != "" {
		t.Errorf("ParseInstance is not deterministic (-first +second):\n%s", diff)
	}
}

func TestParseInstance_WrongRootElement(t *testing.T) {
	_, err := ParseInstance([]byte(`<?xml version="1.0"?><notxbrl/>`))
	if err == nil {
		t.Fatal("expected an error for a non-xbrli:xbrl root")
	}
	var syn *XmlSyntaxError
	if !errors.As(err, &syn) {
		t.Errorf("got error %v (%T), want *XmlSyntaxError", err, err)
	}
}

func TestParseInstance_DurationPeriodRejected(t *testing.T) {
	doc := strings.Replace(sampleInstance,
		"<xbrli:period><xbrli:instant>2024-12-31</xbrli:instant></xbrli:period>",
		"<xbrli:period><xbrli:startDate>2024-01-01</xbrli:startDate><xbrli:endDate>2024-12-31</xbrli:endDate></xbrli:period>",
		1)
	_, err := ParseInstance([]byte(doc))
	if err == nil {
		t.Fatal("expected an error for a duration period")
	}
}

func TestParseInstance_DuplicateContextID(t *testing.T) {
	extra := `<xbrli:context id="c1"><xbrli:entity><xbrli:identifier scheme="s">v</xbrli:identifier></xbrli:entity><xbrli:period><xbrli:instant>2024-12-31</xbrli:instant></xbrli:period></xbrli:context>`
	doc := strings.Replace(sampleInstance, "<xbrli:unit", extra+"\n  <xbrli:unit", 1)
	_, err := ParseInstance([]byte(doc))
	if err == nil {
		t.Fatal("expected a duplicate context id error")
	}
}
