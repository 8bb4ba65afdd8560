package validation

import (
	"testing"

	"github.com/beevik/etree"

	"github.com/speedata/xbridge"
)

func parseTestDoc(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parsing test document: %v", err)
	}
	return doc.Root()
}

func newRuleContext(root *etree.Element, rule *RuleDefinition, mod *xbridge.Module) *Context {
	return &Context{
		RuleSet: RuleSetXML,
		Rule:    rule,
		XMLRoot: root,
		Module:  mod,
		Scans:   buildScans(root),
	}
}

const docWithoutSchemaRef = `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance">
</xbrli:xbrl>`

const docWithSchemaRef = `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
            xmlns:link="http://www.xbrl.org/2003/linkbase"
            xmlns:xlink="http://www.w3.org/1999/xlink">
  <link:schemaRef xlink:type="simple" xlink:href="http://example.org/mod.xsd"/>
</xbrli:xbrl>`

func TestCheckSingleSchemaRef(t *testing.T) {
	rule := &RuleDefinition{Code: "XML-010", Message: "{detail}", Severity: SeverityError}

	ctx := newRuleContext(parseTestDoc(t, docWithoutSchemaRef), rule, nil)
	checkSingleSchemaRef(ctx)
	if len(ctx.Findings()) != 1 {
		t.Fatalf("got %d findings for a missing schemaRef, want 1", len(ctx.Findings()))
	}

	ctx = newRuleContext(parseTestDoc(t, docWithSchemaRef), rule, nil)
	checkSingleSchemaRef(ctx)
	if len(ctx.Findings()) != 0 {
		t.Errorf("expected no findings for exactly one schemaRef, got %+v", ctx.Findings())
	}
}

func TestCheckRootElement(t *testing.T) {
	rule := &RuleDefinition{Code: "XML-003", Message: "{detail}", Severity: SeverityError}

	ctx := newRuleContext(parseTestDoc(t, docWithSchemaRef), rule, nil)
	checkRootElement(ctx)
	if len(ctx.Findings()) != 0 {
		t.Errorf("expected no finding for a correct xbrli:xbrl root, got %+v", ctx.Findings())
	}

	ctx = newRuleContext(parseTestDoc(t, `<notxbrl/>`), rule, nil)
	checkRootElement(ctx)
	if len(ctx.Findings()) != 1 {
		t.Fatalf("got %d findings for a wrong root element, want 1", len(ctx.Findings()))
	}
}

func TestCheckUTF8Encoding(t *testing.T) {
	rule := &RuleDefinition{Code: "XML-002", Message: "{detail}", Severity: SeverityError}

	ctx := &Context{RuleSet: RuleSetXML, Rule: rule, RawBytes: []byte(`<?xml version="1.0" encoding="UTF-8"?><x/>`)}
	checkUTF8Encoding(ctx)
	if len(ctx.Findings()) != 0 {
		t.Errorf("expected no finding for a declared utf-8 encoding, got %+v", ctx.Findings())
	}

	ctx = &Context{RuleSet: RuleSetXML, Rule: rule, RawBytes: []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><x/>`)}
	checkUTF8Encoding(ctx)
	if len(ctx.Findings()) != 1 {
		t.Fatalf("got %d findings for a non-utf-8 encoding, want 1", len(ctx.Findings()))
	}

	ctx = &Context{RuleSet: RuleSetXML, Rule: rule, RawBytes: []byte(`<x/>`)}
	checkUTF8Encoding(ctx)
	if len(ctx.Findings()) != 0 {
		t.Errorf("expected no finding when there is no encoding declaration at all, got %+v", ctx.Findings())
	}
}

func monetaryModule() *xbridge.Module {
	return &xbridge.Module{
		URL: "http://example.org/corep/mod.xsd",
		Tables: []*xbridge.Table{
			{
				Architecture: xbridge.ArchitectureDatapoints,
				Variables: []*xbridge.Cell{
					{
						DatapointID: "mi10",
						Dimensions:  map[string]string{"concept": "{http://www.eba.europa.eu/xbrl/crr/dict/met}mi10"},
						Datatype:    xbridge.DatatypeMonetary,
					},
				},
			},
		},
	}
}

func docWithMonetaryFact(decimals string) string {
	return `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
            xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
            xmlns:eba_met="http://www.eba.europa.eu/xbrl/crr/dict/met">
  <xbrli:unit id="u1"><xbrli:measure>iso4217:EUR</xbrli:measure></xbrli:unit>
  <eba_met:mi10 contextRef="c1" unitRef="u1" decimals="` + decimals + `">1000000</eba_met:mi10>
</xbrli:xbrl>`
}

func TestCheckMonetaryDecimals_BelowThreshold(t *testing.T) {
	rule := &RuleDefinition{Code: "EBA-DEC-001", Message: "{detail}", Severity: SeverityError}
	ctx := newRuleContext(parseTestDoc(t, docWithMonetaryFact("-6")), rule, monetaryModule())

	checkMonetaryDecimals(ctx)
	if len(ctx.Findings()) != 1 {
		t.Fatalf("got %d findings for @decimals=-6 against the default -4 threshold, want 1", len(ctx.Findings()))
	}
}

func TestCheckMonetaryDecimals_AtThresholdPasses(t *testing.T) {
	rule := &RuleDefinition{Code: "EBA-DEC-001", Message: "{detail}", Severity: SeverityError}
	ctx := newRuleContext(parseTestDoc(t, docWithMonetaryFact("-4")), rule, monetaryModule())

	checkMonetaryDecimals(ctx)
	if len(ctx.Findings()) != 0 {
		t.Errorf("expected no finding at exactly the default threshold, got %+v", ctx.Findings())
	}
}

func TestCheckRealisticDecimals(t *testing.T) {
	rule := &RuleDefinition{Code: "EBA-DEC-004", Message: "{detail}", Severity: SeverityWarning}

	ctx := newRuleContext(parseTestDoc(t, docWithMonetaryFact("INF")), rule, nil)
	checkRealisticDecimals(ctx)
	if len(ctx.Findings()) != 1 {
		t.Fatalf("got %d findings for @decimals=INF, want 1", len(ctx.Findings()))
	}

	ctx = newRuleContext(parseTestDoc(t, docWithMonetaryFact("-2")), rule, nil)
	checkRealisticDecimals(ctx)
	if len(ctx.Findings()) != 0 {
		t.Errorf("expected no finding for a realistic @decimals value, got %+v", ctx.Findings())
	}
}
