package xbridge

// DecimalsAggregator accumulates the per-datatype decimals parameters
// across every resolved cell of a conversion job.
type DecimalsAggregator struct {
	buckets map[DatatypeMarker]DecimalsParam
}

// NewDecimalsAggregator returns an aggregator with all four buckets
// unset.
func NewDecimalsAggregator() *DecimalsAggregator {
	return &DecimalsAggregator{buckets: map[DatatypeMarker]DecimalsParam{
		DatatypeMonetary:   NoDecimals,
		DatatypePercentage: NoDecimals,
		DatatypeInteger:    NoDecimals,
		DatatypeDecimal:    NoDecimals,
	}}
}

// Add folds one resolved cell's fact decimals value into its datatype's
// bucket, applying the merge precedence in DecimalsParam.merge.
func (a *DecimalsAggregator) Add(cell ResolvedCell) {
	if cell.Datatype == "" || !cell.Fact.HasDecimals {
		return
	}
	a.buckets[cell.Datatype] = a.buckets[cell.Datatype].merge(cell.Fact.Decimals)
}

// AddAll folds every cell in cells into the aggregator, in order.
func (a *DecimalsAggregator) AddAll(cells []ResolvedCell) {
	for _, c := range cells {
		a.Add(c)
	}
}

// Bucket returns the current aggregated value for one datatype marker.
func (a *DecimalsAggregator) Bucket(marker DatatypeMarker) DecimalsParam {
	return a.buckets[marker]
}

// Parameters returns the four buckets as (name, DecimalsParam) pairs in
// the fixed order the parameters.csv writer expects.
func (a *DecimalsAggregator) Parameters() []struct {
	Name  string
	Value DecimalsParam
} {
	return []struct {
		Name  string
		Value DecimalsParam
	}{
		{"decimalsMonetary", a.buckets[DatatypeMonetary]},
		{"decimalsPercentage", a.buckets[DatatypePercentage]},
		{"decimalsInteger", a.buckets[DatatypeInteger]},
		{"decimalsDecimal", a.buckets[DatatypeDecimal]},
	}
}
