package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	Register("EBA-UNIT-001", RuleSetXML, checkPureUnit)
	Register("EBA-UNIT-002", RuleSetXML, checkDecimalNotation)
}

// decimalNotationThreshold is the |value| above which a pure-unit fact
// looks like it was written in percentage notation (93.1) instead of
// decimal fraction notation (0.931). Parsed with shopspring/decimal
// rather than strconv.ParseFloat so the comparison is exact for the
// large, exact-decimal strings EBA facts are reported with.
var decimalNotationThreshold = decimal.NewFromInt(50)

// unitMeasure returns the first measure text of the simple (non-divide)
// xbrli:unit with the given id, or "" if not found.
func unitMeasure(ctx *Context, unitID string) string {
	if ctx.XMLRoot == nil || unitID == "" {
		return ""
	}
	for _, unit := range ctx.XMLRoot.ChildElements() {
		if unit.Tag != "unit" || unit.NamespaceURI() != nsXBRLI {
			continue
		}
		if unit.SelectAttrValue("id", "") != unitID {
			continue
		}
		measures := measureTexts(unit)
		if len(measures) > 0 {
			return measures[0]
		}
	}
	return ""
}

// checkPureUnit reports EBA-UNIT-001 for any non-monetary numeric fact
// whose unit measure is neither a currency nor xbrli:pure.
func checkPureUnit(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.UnitRef == "" {
			continue
		}
		measure := unitMeasure(ctx, f.UnitRef)
		if isMonetary(measure) || isPure(measure) {
			continue
		}
		ctx.AddFinding(fmt.Sprintf("fact:%s:unit:%s", f.Label, f.UnitRef), map[string]string{
			"detail": fmt.Sprintf("fact '%s' uses unit '%s' (measure '%s') instead of 'xbrli:pure'", f.Label, f.UnitRef, measure),
		})
	}
}

// checkDecimalNotation reports EBA-UNIT-002 for a pure-unit fact whose
// absolute value exceeds the decimal-notation threshold, suggesting it
// was written as a percentage rather than a fraction.
func checkDecimalNotation(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.UnitRef == "" {
			continue
		}
		if !isPure(unitMeasure(ctx, f.UnitRef)) {
			continue
		}
		raw := strings.TrimSpace(f.Text)
		if raw == "" {
			continue
		}
		num, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		num = num.Abs()
		if num.GreaterThan(decimalNotationThreshold) {
			ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", f.Label, f.ContextRef), map[string]string{
				"detail": fmt.Sprintf("fact '%s' has value '%s' with pure unit; values exceeding %s suggest percentage notation instead of decimal fractions (e.g. use 0.931 not 93.1)", f.Label, raw, decimalNotationThreshold.String()),
			})
		}
	}
}
