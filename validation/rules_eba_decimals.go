package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/speedata/xbridge"
)

func init() {
	Register("EBA-DEC-001", RuleSetXML, checkMonetaryDecimals)
	Register("EBA-DEC-002", RuleSetXML, checkPercentageDecimals)
	Register("EBA-DEC-003", RuleSetXML, checkIntegerDecimals)
	Register("EBA-DEC-004", RuleSetXML, checkRealisticDecimals)
}

const (
	defaultMonetaryThreshold  = -4
	relaxedMonetaryThreshold  = -6
	maxRealisticDecimals      = 20
)

// relaxedFrameworkSegments are Module URL path segments whose monetary
// facts accept a looser (more negative) @decimals threshold.
var relaxedFrameworkSegments = []string{"/fws/fp/", "/fws/esg/", "/fws/pillar3/", "/fws/rem/"}

// buildMetricTypeMap maps each datapoint concept to its datatype
// marker, drawn from the datapoints-architecture tables of the resolved
// module (headers-architecture tables carry no per-metric datatype).
func buildMetricTypeMap(mod *xbridge.Module) map[xbridge.QName]xbridge.DatatypeMarker {
	out := map[xbridge.QName]xbridge.DatatypeMarker{}
	if mod == nil {
		return out
	}
	for _, t := range mod.Tables {
		if t.Architecture != xbridge.ArchitectureDatapoints {
			continue
		}
		for _, cell := range t.Variables {
			concept, ok := cell.Dimensions["concept"]
			if !ok || cell.Datatype == "" {
				continue
			}
			out[xbridge.ParseClarkName(concept)] = cell.Datatype
		}
	}
	return out
}

// monetaryThreshold returns the minimum acceptable @decimals for
// monetary facts: -6 for FP/ESG/Pillar3/REM modules, -4 otherwise.
func monetaryThreshold(mod *xbridge.Module) int {
	if mod != nil {
		for _, seg := range relaxedFrameworkSegments {
			if strings.Contains(mod.URL, seg) {
				return relaxedMonetaryThreshold
			}
		}
	}
	return defaultMonetaryThreshold
}

// parseDecimals parses a @decimals value, returning (0, false) for a
// non-numeric or "INF" value (INF is handled separately via isInfDecimals).
func parseDecimals(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "INF") {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isInfDecimals(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "INF")
}

// inferTypeFromUnit is the fallback datatype guess used when the
// resolved module has no entry for a fact's concept: an ISO 4217
// measure implies monetary, xbrli:pure implies percentage.
func inferTypeFromUnit(measure string) xbridge.DatatypeMarker {
	if isMonetary(measure) {
		return xbridge.DatatypeMonetary
	}
	if isPure(measure) {
		return xbridge.DatatypePercentage
	}
	return ""
}

func factConceptType(ctx *Context, typeMap map[xbridge.QName]xbridge.DatatypeMarker, f *FactInfo) xbridge.DatatypeMarker {
	q := xbridge.QName{Space: f.Elem.NamespaceURI(), Local: f.Elem.Tag}
	if t, ok := typeMap[q]; ok {
		return t
	}
	return inferTypeFromUnit(unitMeasure(ctx, f.UnitRef))
}

// checkMonetaryDecimals reports EBA-DEC-001 when a monetary fact's
// @decimals falls below the applicable threshold.
func checkMonetaryDecimals(ctx *Context) {
	typeMap := buildMetricTypeMap(ctx.Module)
	threshold := monetaryThreshold(ctx.Module)

	for _, f := range ctx.Scans.Facts {
		if f.UnitRef == "" || f.Decimals == "" {
			continue
		}
		if factConceptType(ctx, typeMap, f) != xbridge.DatatypeMonetary {
			continue
		}
		dec, ok := parseDecimals(f.Decimals)
		if ok && dec < threshold {
			ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", f.Label, f.ContextRef), map[string]string{
				"detail": fmt.Sprintf("fact '%s' has @decimals=%s which is below the minimum threshold of %d", f.Label, f.Decimals, threshold),
			})
		}
	}
}

// checkPercentageDecimals reports EBA-DEC-002 when a percentage fact's
// @decimals is below 4.
func checkPercentageDecimals(ctx *Context) {
	typeMap := buildMetricTypeMap(ctx.Module)

	for _, f := range ctx.Scans.Facts {
		if f.UnitRef == "" || f.Decimals == "" {
			continue
		}
		if factConceptType(ctx, typeMap, f) != xbridge.DatatypePercentage {
			continue
		}
		dec, ok := parseDecimals(f.Decimals)
		if ok && dec < 4 {
			ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", f.Label, f.ContextRef), map[string]string{
				"detail": fmt.Sprintf("fact '%s' has @decimals=%s which is below the minimum of 4 for percentage facts", f.Label, f.Decimals),
			})
		}
	}
}

// checkIntegerDecimals reports EBA-DEC-003 when an integer fact's
// @decimals is not exactly 0.
func checkIntegerDecimals(ctx *Context) {
	typeMap := buildMetricTypeMap(ctx.Module)

	for _, f := range ctx.Scans.Facts {
		if f.UnitRef == "" || f.Decimals == "" {
			continue
		}
		if typeMap[xbridge.QName{Space: f.Elem.NamespaceURI(), Local: f.Elem.Tag}] != xbridge.DatatypeInteger {
			continue
		}
		if isInfDecimals(f.Decimals) {
			ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", f.Label, f.ContextRef), map[string]string{
				"detail": fmt.Sprintf("fact '%s' has @decimals=INF but integer facts MUST use @decimals=0", f.Label),
			})
			continue
		}
		dec, ok := parseDecimals(f.Decimals)
		if ok && dec != 0 {
			ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", f.Label, f.ContextRef), map[string]string{
				"detail": fmt.Sprintf("fact '%s' has @decimals=%s but integer facts MUST use @decimals=0", f.Label, f.Decimals),
			})
		}
	}
}

// checkRealisticDecimals reports EBA-DEC-004 for @decimals=INF or any
// value exceeding a realistic accuracy bound.
func checkRealisticDecimals(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.Decimals == "" {
			continue
		}
		if isInfDecimals(f.Decimals) {
			ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", f.Label, f.ContextRef), map[string]string{
				"detail": fmt.Sprintf("fact '%s' uses @decimals=INF which is not a realistic indication of accuracy", f.Label),
			})
			continue
		}
		dec, ok := parseDecimals(f.Decimals)
		if ok && dec > maxRealisticDecimals {
			ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", f.Label, f.ContextRef), map[string]string{
				"detail": fmt.Sprintf("fact '%s' has @decimals=%s which exceeds %d and is not a realistic indication of accuracy", f.Label, f.Decimals, maxRealisticDecimals),
			})
		}
	}
}
