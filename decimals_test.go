package xbridge

import "testing"

func TestDecimalsParam_Merge(t *testing.T) {
	cases := []struct {
		name string
		a, b DecimalsParam
		want DecimalsParam
	}{
		{"unset absorbs concrete", NoDecimals, IntDecimals(-4), IntDecimals(-4)},
		{"concrete beats later unset", IntDecimals(2), NoDecimals, IntDecimals(2)},
		{"smaller (less precise) wins", IntDecimals(-2), IntDecimals(-4), IntDecimals(-4)},
		{"larger loses to existing smaller", IntDecimals(-4), IntDecimals(-2), IntDecimals(-4)},
		{"INF never sticky against concrete", InfDecimals, IntDecimals(2), IntDecimals(2)},
		{"concrete resists a later INF", IntDecimals(2), InfDecimals, IntDecimals(2)},
		{"INF wins only against unset", NoDecimals, InfDecimals, InfDecimals},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.merge(c.b); got != c.want {
				t.Errorf("merge(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestDecimalsAggregator_AddAll(t *testing.T) {
	agg := NewDecimalsAggregator()
	cells := []ResolvedCell{
		{Datatype: DatatypeMonetary, Fact: &Fact{HasDecimals: true, Decimals: IntDecimals(-2)}},
		{Datatype: DatatypeMonetary, Fact: &Fact{HasDecimals: true, Decimals: IntDecimals(-4)}},
		{Datatype: DatatypePercentage, Fact: &Fact{HasDecimals: true, Decimals: IntDecimals(4)}},
		{Datatype: DatatypeInteger, Fact: &Fact{HasDecimals: false}},
	}
	agg.AddAll(cells)

	if got := agg.Bucket(DatatypeMonetary); got != IntDecimals(-4) {
		t.Errorf("monetary bucket = %v, want -4", got)
	}
	if got := agg.Bucket(DatatypePercentage); got != IntDecimals(4) {
		t.Errorf("percentage bucket = %v, want 4", got)
	}
	if got := agg.Bucket(DatatypeInteger); got.IsSet() {
		t.Errorf("integer bucket should be unset, got %v", got)
	}
}

func TestDecimalsAggregator_Parameters_Order(t *testing.T) {
	agg := NewDecimalsAggregator()
	params := agg.Parameters()
	want := []string{"decimalsMonetary", "decimalsPercentage", "decimalsInteger", "decimalsDecimal"}
	if len(params) != len(want) {
		t.Fatalf("got %d parameters, want %d", len(params), len(want))
	}
	for i, p := range params {
		if p.Name != want[i] {
			t.Errorf("parameter %d = %q, want %q", i, p.Name, want[i])
		}
		if p.Value.IsSet() {
			t.Errorf("parameter %q should start unset", p.Name)
		}
	}
}
