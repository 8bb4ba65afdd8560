package xbridge

import "testing"

func TestUnitExpr_MeasureVsKey(t *testing.T) {
	eur := QName{Space: nsISO4217, Local: "EUR"}
	shares := QName{Space: "http://www.xbrl.org/2003/instance", Local: "shares"}

	simple := NewSimpleUnit([]QName{eur})
	if got, want := simple.Measure(), eur.String(); got != want {
		t.Errorf("simple unit Measure() = %q, want %q", got, want)
	}
	if got := simple.Key(); got == simple.Measure() {
		t.Errorf("Key() must not collide with Measure(): both are %q", got)
	}

	divide := NewDivideUnit([]QName{eur}, []QName{shares})
	if got, want := divide.Measure(), eur.String()+"/"+shares.String(); got != want {
		t.Errorf("divide unit Measure() = %q, want %q", got, want)
	}
	if got, want := divide.Key(), "divide("+eur.String()+";"+shares.String()+")"; got != want {
		t.Errorf("divide unit Key() = %q, want %q", got, want)
	}
}

func TestUnitExpr_KeyIgnoresOrder(t *testing.T) {
	a := NewSimpleUnit([]QName{{Space: nsISO4217, Local: "EUR"}, {Space: nsISO4217, Local: "USD"}})
	b := NewSimpleUnit([]QName{{Space: nsISO4217, Local: "USD"}, {Space: nsISO4217, Local: "EUR"}})
	if a.Key() != b.Key() {
		t.Errorf("Key() should be order-independent: %q vs %q", a.Key(), b.Key())
	}
}
