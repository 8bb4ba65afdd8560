package validation

import (
	"fmt"
	"regexp"
	"sort"
)

func init() {
	Register("XML-030", "", checkPeriodDateFormat)
	Register("XML-031", "", checkPeriodsAreInstants)
	Register("XML-032", "", checkSingleReferenceDate)
	Register("XML-033", "", checkIdenticalIdentifiers)
	Register("XML-034", "", checkNoSegments)
	Register("XML-035", "", checkScenarioDimensionOnly)
}

var xsDateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func sortedContextIDs(ctx *Context) []string {
	ids := make([]string, 0, len(ctx.Scans.Contexts))
	for id := range ctx.Scans.Contexts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// checkPeriodDateFormat reports XML-030 when a period date element
// (instant, startDate, endDate) is not xs:date (YYYY-MM-DD), with no
// time-of-day or timezone component.
func checkPeriodDateFormat(ctx *Context) {
	for _, id := range sortedContextIDs(ctx) {
		info := ctx.Scans.Contexts[id]
		period := childNamed(info.Elem, "period")
		if period == nil {
			continue
		}
		for _, tag := range []string{"instant", "startDate", "endDate"} {
			child := childNamed(period, tag)
			if child == nil {
				continue
			}
			text := child.Text()
			if !xsDateRE.MatchString(text) {
				ctx.AddFinding(fmt.Sprintf("context[@id='%s']/period/%s", id, tag), map[string]string{
					"detail": fmt.Sprintf("'%s' in context '%s' is not a valid xs:date", text, id),
				})
			}
		}
	}
}

// checkPeriodsAreInstants reports XML-031 when a context's period uses
// startDate/endDate instead of instant.
func checkPeriodsAreInstants(ctx *Context) {
	for _, id := range sortedContextIDs(ctx) {
		info := ctx.Scans.Contexts[id]
		if info.HasStart || info.HasEnd {
			ctx.AddFinding(fmt.Sprintf("context[@id='%s']/period", id), map[string]string{
				"detail": fmt.Sprintf("context '%s' uses a duration period (startDate/endDate) instead of instant", id),
			})
		}
	}
}

// checkSingleReferenceDate reports XML-032 when more than one distinct
// instant date is used across all contexts.
func checkSingleReferenceDate(ctx *Context) {
	dates := map[string]bool{}
	for _, info := range ctx.Scans.Contexts {
		if info.Instant != "" {
			dates[info.Instant] = true
		}
	}
	if len(dates) > 1 {
		ctx.AddFinding(ctx.FilePath, map[string]string{
			"detail": "multiple reference dates found: " + joinSortedSet(dates),
		})
	}
}

// checkIdenticalIdentifiers reports XML-033 when more than one distinct
// (scheme, value) entity identifier pair is used across all contexts.
func checkIdenticalIdentifiers(ctx *Context) {
	seen := map[string]bool{}
	var pairs []string
	for _, info := range ctx.Scans.Contexts {
		key := fmt.Sprintf("scheme='%s' value='%s'", info.EntityScheme, info.EntityValue)
		if !seen[key] {
			seen[key] = true
			pairs = append(pairs, key)
		}
	}
	if len(pairs) > 1 {
		sort.Strings(pairs)
		ctx.AddFinding(ctx.FilePath, map[string]string{
			"detail": "multiple identifiers found: " + joinStringsWith(pairs, "; "),
		})
	}
}

// checkNoSegments reports XML-034 for any context carrying an
// xbrli:segment element under its entity.
func checkNoSegments(ctx *Context) {
	for _, id := range sortedContextIDs(ctx) {
		info := ctx.Scans.Contexts[id]
		if info.HasSegment {
			ctx.AddFinding(fmt.Sprintf("context[@id='%s']/entity/segment", id), map[string]string{
				"detail": fmt.Sprintf("context '%s' contains xbrli:segment", id),
			})
		}
	}
}

// checkScenarioDimensionOnly reports XML-035 when a context's scenario
// carries a child other than xbrldi:explicitMember/typedMember.
func checkScenarioDimensionOnly(ctx *Context) {
	for _, id := range sortedContextIDs(ctx) {
		info := ctx.Scans.Contexts[id]
		if !info.HasScenario {
			continue
		}
		for _, child := range info.ScenarioChildren {
			if child.Tag == "explicitMember" || child.Tag == "typedMember" {
				continue
			}
			ctx.AddFinding(fmt.Sprintf("context[@id='%s']/scenario", id), map[string]string{
				"detail": fmt.Sprintf("context '%s' scenario contains non-dimension element '%s'", id, child.Tag),
			})
			break
		}
	}
}

func joinSortedSet(set map[string]bool) string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return joinStringsWith(out, ", ")
}

func joinStringsWith(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
