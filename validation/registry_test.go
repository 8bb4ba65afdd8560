package validation

import "testing"

func TestLoadRegistry(t *testing.T) {
	defs, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(defs) == 0 {
		t.Fatal("expected a non-empty rule catalog")
	}

	seen := map[string]bool{}
	for _, d := range defs {
		if d.Code == "" {
			t.Error("rule definition with empty code")
		}
		if seen[d.Code] {
			t.Errorf("duplicate rule code %q in the catalog", d.Code)
		}
		seen[d.Code] = true
		if d.Severity != SeverityError && d.Severity != SeverityWarning {
			t.Errorf("rule %s: unexpected severity %q", d.Code, d.Severity)
		}
		if !d.XML && !d.CSV {
			t.Errorf("rule %s: applies to neither rule set", d.Code)
		}
	}
}

func TestRegisterAndLookupImpl(t *testing.T) {
	const code = "TEST-REGISTRY-001"
	generic := func(ctx *Context) {}
	Register(code, "", generic)

	impl, ok := lookupImpl(code, RuleSetXML)
	if !ok {
		t.Fatal("expected the generic implementation to resolve for RuleSetXML")
	}
	_ = impl

	specific := func(ctx *Context) {}
	Register(code, RuleSetCSV, specific)

	got, ok := lookupImpl(code, RuleSetCSV)
	if !ok {
		t.Fatal("expected a format-specific implementation to resolve")
	}
	_ = got

	if _, ok := lookupImpl("TEST-REGISTRY-DOES-NOT-EXIST", RuleSetXML); ok {
		t.Error("expected no implementation for an unregistered code")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	const code = "TEST-REGISTRY-002"
	Register(code, RuleSetXML, func(ctx *Context) {})

	defer func() {
		if recover() == nil {
			t.Error("expected Register to panic on a duplicate (code, format) pair")
		}
	}()
	Register(code, RuleSetXML, func(ctx *Context) {})
}
