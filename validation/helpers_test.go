package validation

import (
	"testing"

	"github.com/beevik/etree"
)

func TestIsMonetary(t *testing.T) {
	cases := map[string]bool{
		"iso4217:EUR": true,
		"ISO4217:USD": true,
		"xbrli:pure":  false,
		"eba_met:mi10": false,
	}
	for in, want := range cases {
		if got := isMonetary(in); got != want {
			t.Errorf("isMonetary(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsPure(t *testing.T) {
	if !isPure("xbrli:pure") || !isPure("pure") {
		t.Error("expected both xbrli:pure and pure to be recognised")
	}
	if isPure("iso4217:EUR") {
		t.Error("EUR measure should not be pure")
	}
}

func TestChildrenNamedIgnoresPrefix(t *testing.T) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(`<root xmlns:a="urn:a" xmlns:b="urn:b"><a:item/><b:item/><other/></root>`); err != nil {
		t.Fatal(err)
	}
	items := childrenNamed(doc.Root(), "item")
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
}

func TestChildNamedReturnsFirstMatch(t *testing.T) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(`<root><item id="1"/><item id="2"/></root>`); err != nil {
		t.Fatal(err)
	}
	item := childNamed(doc.Root(), "item")
	if item == nil || item.SelectAttrValue("id", "") != "1" {
		t.Errorf("childNamed returned %+v, want the first item", item)
	}
	if childNamed(doc.Root(), "missing") != nil {
		t.Error("expected nil for a non-existent child name")
	}
}

func TestDefaultFormatString(t *testing.T) {
	cases := []struct {
		template string
		values   map[string]string
		want     string
	}{
		{"{detail}", map[string]string{"detail": "boom"}, "boom"},
		{"no placeholders", map[string]string{"detail": "boom"}, "no placeholders"},
		{"{missing} stays", map[string]string{"detail": "boom"}, "{missing} stays"},
		{"{detail}", nil, "{detail}"},
		{"{a} and {b}", map[string]string{"a": "1", "b": "2"}, "1 and 2"},
	}
	for _, c := range cases {
		if got := defaultFormatString(c.template, c.values); got != c.want {
			t.Errorf("defaultFormatString(%q, %v) = %q, want %q", c.template, c.values, got, c.want)
		}
	}
}

func TestContext_AddFinding(t *testing.T) {
	rule := &RuleDefinition{Code: "XML-999", Message: "bad thing: {detail}", Severity: SeverityError}
	ctx := &Context{RuleSet: RuleSetXML, Rule: rule}

	ctx.AddFinding("loc-1", map[string]string{"detail": "oops"})
	if len(ctx.Findings()) != 1 {
		t.Fatalf("got %d findings, want 1", len(ctx.Findings()))
	}
	f := ctx.Findings()[0]
	if f.RuleCode != "XML-999" || f.Message != "bad thing: oops" || f.Severity != SeverityError || f.Location != "loc-1" {
		t.Errorf("finding = %+v", f)
	}

	ctx.AddFinding("loc-2", map[string]string{"detail": "again"}, "XML-999-SUB")
	if got := ctx.Findings()[1].RuleCode; got != "XML-999-SUB" {
		t.Errorf("sub-rule code = %q, want override", got)
	}
}

func TestRuleDefinition_EffectiveSeverityAndMessage(t *testing.T) {
	rule := &RuleDefinition{
		Code:        "XML-100",
		Message:     "xml message",
		Severity:    SeverityError,
		CSVMessage:  "csv message",
		CSVSeverity: SeverityWarning,
	}
	if got := rule.EffectiveMessage(RuleSetXML); got != "xml message" {
		t.Errorf("xml message = %q", got)
	}
	if got := rule.EffectiveSeverity(RuleSetXML); got != SeverityError {
		t.Errorf("xml severity = %q", got)
	}
	if got := rule.EffectiveMessage(RuleSetCSV); got != "csv message" {
		t.Errorf("csv message = %q", got)
	}
	if got := rule.EffectiveSeverity(RuleSetCSV); got != SeverityWarning {
		t.Errorf("csv severity = %q", got)
	}

	plain := &RuleDefinition{Code: "XML-101", Message: "m", Severity: SeverityWarning}
	if got := plain.EffectiveMessage(RuleSetCSV); got != "m" {
		t.Errorf("message without override = %q, want fallback to base", got)
	}
	if got := plain.EffectiveSeverity(RuleSetCSV); got != SeverityWarning {
		t.Errorf("severity without override = %q, want fallback to base", got)
	}
}
