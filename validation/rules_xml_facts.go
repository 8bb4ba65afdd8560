package validation

import (
	"fmt"
	"strconv"
	"strings"
)

func init() {
	Register("XML-040", "", checkNoPrecision)
	Register("XML-041", "", checkDecimalsValue)
	Register("XML-042", "", checkNoXsiNil)
	Register("XML-043", "", checkNoEmptyStringFacts)
}

func isValidDecimalsText(value string) bool {
	if value == "INF" {
		return true
	}
	if strings.TrimSpace(value) != value {
		return false
	}
	_, err := strconv.Atoi(value)
	return err == nil
}

// checkNoPrecision reports XML-040 for any fact using @precision
// instead of @decimals.
func checkNoPrecision(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.HasPrecision {
			ctx.AddFinding(fmt.Sprintf("fact:%s", f.Label), map[string]string{
				"detail": fmt.Sprintf("fact '%s' uses @precision instead of @decimals", f.Label),
			})
		}
	}
}

// checkDecimalsValue reports XML-041 for any fact whose @decimals value
// is neither a valid integer nor "INF".
func checkDecimalsValue(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.Decimals == "" {
			continue
		}
		if !isValidDecimalsText(f.Decimals) {
			ctx.AddFinding(fmt.Sprintf("fact:%s", f.Label), map[string]string{
				"detail": fmt.Sprintf("fact '%s' has invalid @decimals value '%s' (expected integer or 'INF')", f.Label, f.Decimals),
			})
		}
	}
}

// checkNoXsiNil reports XML-042 for any fact carrying @xsi:nil.
func checkNoXsiNil(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.HasNil {
			ctx.AddFinding(fmt.Sprintf("fact:%s", f.Label), map[string]string{
				"detail": fmt.Sprintf("fact '%s' uses @xsi:nil", f.Label),
			})
		}
	}
}

// checkNoEmptyStringFacts reports XML-043 for any non-numeric
// (no unitRef) fact with empty text content.
func checkNoEmptyStringFacts(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.UnitRef != "" {
			continue
		}
		if strings.TrimSpace(f.Text) == "" {
			ctx.AddFinding(fmt.Sprintf("fact:%s", f.Label), map[string]string{
				"detail": fmt.Sprintf("string-type fact '%s' is empty", f.Label),
			})
		}
	}
}
