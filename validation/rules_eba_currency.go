package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

func init() {
	Register("EBA-CUR-001", RuleSetXML, checkSingleReportingCurrency)
	Register("EBA-CUR-002", RuleSetXML, checkDenominationCurrency)
	Register("EBA-CUR-003", RuleSetXML, checkCurrencyDimensionConsistency)
}

// Dimension values flagging "currency of denomination" — a fact
// expressed in its own denomination currency rather than the reporting
// currency.
const (
	ccaDenomination  = "eba_CA:x1"
	qAEADenomination = "eba_qCA:qx2000"
)

// currencyDims are the dimensions whose member value encodes a specific
// ISO 4217 code as its local-name suffix.
var currencyDims = []string{"CUS", "CUA"}

var isoCurrencyRE = regexp.MustCompile(`^[A-Z]{3}$`)

func isDenominationContext(dims map[string]string) bool {
	return dims["CCA"] == ccaDenomination || dims["qAEA"] == qAEADenomination
}

// extractDimCurrency extracts the ISO 4217 code from a CUS/CUA
// dimension value like "eba_CU:EUR", or "" if the member is a coded
// (non-currency) value.
func extractDimCurrency(dimValue string) string {
	colon := strings.LastIndexByte(dimValue, ':')
	if colon < 0 {
		return ""
	}
	member := dimValue[colon+1:]
	if isoCurrencyRE.MatchString(member) {
		return member
	}
	return ""
}

// monetaryFact is one monetary fact's context id, currency code, and
// dimension set, gathered by iterMonetaryFacts.
type monetaryFact struct {
	contextID string
	currency  string
	dims      map[string]string
}

func iterMonetaryFacts(ctx *Context) []monetaryFact {
	var out []monetaryFact
	for _, f := range ctx.Scans.Facts {
		if f.UnitRef == "" || f.ContextRef == "" {
			continue
		}
		measure := unitMeasure(ctx, f.UnitRef)
		if !isMonetary(measure) {
			continue
		}
		info, ok := ctx.Scans.Contexts[f.ContextRef]
		if !ok {
			continue
		}
		out = append(out, monetaryFact{
			contextID: f.ContextRef,
			currency:  measure[8:],
			dims:      info.Dimensions,
		})
	}
	return out
}

// checkSingleReportingCurrency reports EBA-CUR-001 when non-CCA/qAEA
// monetary facts use more than one currency.
func checkSingleReportingCurrency(ctx *Context) {
	monetary := iterMonetaryFacts(ctx)
	if len(monetary) == 0 {
		return
	}
	seen := map[string]bool{}
	for _, mf := range monetary {
		if !isDenominationContext(mf.dims) {
			seen[mf.currency] = true
		}
	}
	if len(seen) > 1 {
		var currencies []string
		for c := range seen {
			currencies = append(currencies, c)
		}
		sort.Strings(currencies)
		ctx.AddFinding("facts", map[string]string{
			"detail": fmt.Sprintf("found %d different currencies among non-CCA monetary facts: %s; expected a single reporting currency", len(seen), strings.Join(currencies, ", ")),
		})
	}
}

// checkDenominationCurrency reports EBA-CUR-002 when a fact flagged as
// currency-of-denomination is not expressed in a monetary unit.
func checkDenominationCurrency(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.ContextRef == "" {
			continue
		}
		info, ok := ctx.Scans.Contexts[f.ContextRef]
		if !ok || !isDenominationContext(info.Dimensions) {
			continue
		}
		measure := unitMeasure(ctx, f.UnitRef)
		if !isMonetary(measure) {
			unitDisplay := f.UnitRef
			if unitDisplay == "" {
				unitDisplay = "(none)"
			}
			ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", f.Label, f.ContextRef), map[string]string{
				"detail": fmt.Sprintf("fact '%s' in context '%s' has CCA/qAEA denomination flag but is not expressed in a monetary unit (unit='%s')", f.Label, f.ContextRef, unitDisplay),
			})
		}
	}
}

// checkCurrencyDimensionConsistency reports EBA-CUR-003 when a fact's
// unit currency does not match its CUS/CUA dimension's encoded
// currency.
func checkCurrencyDimensionConsistency(ctx *Context) {
	monetary := iterMonetaryFacts(ctx)
	if len(monetary) == 0 {
		return
	}
	for _, mf := range monetary {
		for _, dimName := range currencyDims {
			dimValue, ok := mf.dims[dimName]
			if !ok {
				continue
			}
			expected := extractDimCurrency(dimValue)
			if expected == "" {
				continue
			}
			if !strings.EqualFold(mf.currency, expected) {
				ctx.AddFinding(fmt.Sprintf("fact:context:%s", mf.contextID), map[string]string{
					"detail": fmt.Sprintf("context '%s' has %s='%s' (implies currency %s) but the fact's unit currency is '%s'", mf.contextID, dimName, dimValue, expected, mf.currency),
				})
			}
		}
	}
}
