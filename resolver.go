package xbridge

import "sort"

// dimSignature is a fact's dimensional fingerprint, built from its
// context's scenario. Keys are dimension local-names, since serialised
// modules drop prefixes; explicit members keep their resolved QName,
// typed members keep their raw text.
type dimSignature struct {
	explicit map[string]QName
	typed    map[string]string
}

func buildSignature(ctx *Context) dimSignature {
	sig := dimSignature{explicit: map[string]QName{}, typed: map[string]string{}}
	for dim, member := range ctx.Scenario.Explicit {
		sig.explicit[dim.Local] = member
	}
	for dim, text := range ctx.Scenario.Typed {
		sig.typed[dim.Local] = text
	}
	return sig
}

// dims returns the full set of dimension local-names present in the
// signature, explicit and typed combined.
func (s dimSignature) dims() map[string]bool {
	out := make(map[string]bool, len(s.explicit)+len(s.typed))
	for d := range s.explicit {
		out[d] = true
	}
	for d := range s.typed {
		out[d] = true
	}
	return out
}

// rawValue renders the dimension's member as the open-key column string
// value: a QName's Clark/display form for explicit members, or the raw
// text for typed members.
func (s dimSignature) rawValue(dim string) (string, bool) {
	if q, ok := s.explicit[dim]; ok {
		return q.String(), true
	}
	if t, ok := s.typed[dim]; ok {
		return t, true
	}
	return "", false
}

// ResolvedCell is one emitted row×column value: a fact bound to a
// table/datapoint, with its open-key values and (possibly cleared) unit.
type ResolvedCell struct {
	TableCode   string
	DatapointID string
	OpenKeys    map[string]string // open-key dimension local-name -> value
	Fact        *Fact
	Unit        *UnitExpr // nil if this cell has no unit dimension
	Value       string    // after allowed-value normalisation, if applicable
	Datatype    DatatypeMarker
}

// ResolveResult is the output of the datapoint resolver: every matched
// cell, plus the set of facts that matched no table at all (orphans are
// computed downstream against filing indicators).
type ResolveResult struct {
	Cells       []ResolvedCell
	Unmatched   []*Fact
	// FactTables records, for every fact (by Order), the set of table
	// codes it was bound into — needed by the filing-indicator
	// validator to compute "facts a table would contain".
	FactTables map[int][]string
	// BaseCurrency is the unit bound to the first matched cell whose
	// unit dimension is declared "$baseCurrency" rather than plain
	// "$unit", or nil if no table in this module declares one.
	BaseCurrency *UnitExpr
}

// Resolve joins every fact in inst against mod's datapoint catalog,
// producing (table, datapoint_id) bindings and normalising enumerated
// values. A fact may bind into more than one table.
func Resolve(inst *Instance, mod *Module) (*ResolveResult, error) {
	res := &ResolveResult{FactTables: map[int][]string{}}

	for i := range inst.Facts {
		f := &inst.Facts[i]
		ctx, ok := inst.Contexts[f.ContextID]
		if !ok {
			return nil, &ConversionError{Detail: "fact " + f.Element.String() + " references unknown context " + f.ContextID}
		}
		sig := buildSignature(ctx)

		matched := false
		for _, t := range mod.Tables {
			for _, cell := range t.cells() {
				rc, ok, err := matchCell(inst, f, sig, t, cell)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				matched = true
				res.Cells = append(res.Cells, rc)
				res.FactTables[f.Order] = append(res.FactTables[f.Order], t.Code)
				if cell.IsBaseCurrencyDim && rc.Unit != nil && res.BaseCurrency == nil {
					res.BaseCurrency = rc.Unit
				}
			}
		}
		if !matched {
			res.Unmatched = append(res.Unmatched, f)
		}
	}

	return res, nil
}

// matchCell attempts to bind fact f (with dimensional signature sig)
// against one table/cell pair.
func matchCell(inst *Instance, f *Fact, sig dimSignature, t *Table, cell *Cell) (ResolvedCell, bool, error) {
	fixed := cell.fixedDimensions(t.OpenKeys)

	// "concept" is not a scenario dimension: it binds against the fact's
	// own element name, not an explicitMember.
	if want, ok := fixed["concept"]; ok {
		if f.Element != ParseClarkName(want) {
			return ResolvedCell{}, false, nil
		}
	}

	// Every other fixed dimension must be present with an equal member.
	for dim, want := range fixed {
		if dim == "concept" {
			continue
		}
		wantQ := ParseClarkName(want)
		got, ok := sig.explicit[dim]
		if !ok || got != wantQ {
			return ResolvedCell{}, false, nil
		}
	}

	// Every open-key dimension the table declares must be present in the
	// signature; no value validation is applied to it.
	openVals := map[string]string{}
	for dim := range t.OpenKeys {
		v, ok := sig.rawValue(dim)
		if !ok {
			return ResolvedCell{}, false, nil
		}
		openVals[dim] = v
	}

	// Any signature dimension not consumed by a fixed binding or an open
	// key disqualifies the match: the cell has no binding for it.
	for dim := range sig.dims() {
		if _, isFixed := fixed[dim]; isFixed {
			continue
		}
		if t.OpenKeys[dim] {
			continue
		}
		return ResolvedCell{}, false, nil
	}

	rc := ResolvedCell{
		TableCode:   t.Code,
		DatapointID: cell.DatapointID,
		OpenKeys:    openVals,
		Fact:        f,
		Value:       f.Value,
		Datatype:    cell.Datatype,
	}

	if cell.HasUnitDim {
		if f.UnitID != "" {
			if u, ok := inst.Units[f.UnitID]; ok {
				expr := u.Expr
				rc.Unit = &expr
			}
		}
	}
	// Conditional unit clearing: a row whose originating cell has no
	// unit dimension never carries a unit, even if the fact's own
	// context did.

	if cell.AllowedValues != nil {
		normalized, err := normalizeAllowedValue(f, cell)
		if err != nil {
			return ResolvedCell{}, false, err
		}
		rc.Value = normalized
	}

	return rc, true, nil
}

// normalizeAllowedValue performs allowed-value normalisation: an
// emitted enumerated value is resolved as a QName
// using the fact's own namespace snapshot; if it is not in the allowed
// set, try a local-name match against a differently-prefixed (different
// URI) member and rewrite to that canonical form; otherwise this is a
// fatal conversion error.
func normalizeAllowedValue(f *Fact, cell *Cell) (string, error) {
	scope := &nsScope{frames: []map[string]string{f.NSSnapshot}}
	got := resolvePrefixed(scope, f.Value)

	if cell.AllowedValues[got] {
		return got.String(), nil
	}

	for member := range cell.AllowedValues {
		if member.Local == got.Local && member.Space != got.Space {
			return member.String(), nil
		}
	}

	accepted := make([]string, 0, len(cell.AllowedValues))
	for m := range cell.AllowedValues {
		accepted = append(accepted, m.Local)
	}
	sort.Strings(accepted)

	return "", &ConversionError{Detail: "datapoint " + cell.DatapointID + ": value " + f.Value + " is not an accepted member; accepted local-names: " + joinStrings(accepted)}
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
