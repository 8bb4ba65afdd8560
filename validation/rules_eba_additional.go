package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

func init() {
	Register("EBA-2.5", RuleSetXML, checkNoComments)
	Register("EBA-2.16.1", RuleSetXML, checkNoMultiUnitFacts)
	Register("EBA-2.24", RuleSetXML, checkBasicISO4217)
	Register("EBA-2.25", RuleSetXML, checkNoFootnoteLinks)
}

var iso4217CodeRE = regexp.MustCompile(`^[A-Z]{3}$`)

// checkNoComments reports EBA-2.5 when the document contains XML
// comments, which are ignored by processors and should hold no data.
func checkNoComments(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	if n := ctx.Scans.Document.Comments; n > 0 {
		ctx.AddFinding("document", map[string]string{
			"detail": fmt.Sprintf("found %d XML comment(s); comments are ignored by processors and data should only appear in contexts, units, and facts", n),
		})
	}
}

// checkNoMultiUnitFacts reports EBA-2.16.1 when the same concept in the
// same context is reported with more than one unit.
func checkNoMultiUnitFacts(ctx *Context) {
	type key struct{ metric, contextID string }
	groups := map[key]map[string]bool{}
	var order []key

	for _, f := range ctx.Scans.Facts {
		if f.ContextRef == "" || f.UnitRef == "" {
			continue
		}
		k := key{f.Label, f.ContextRef}
		if groups[k] == nil {
			groups[k] = map[string]bool{}
			order = append(order, k)
		}
		groups[k][f.UnitRef] = true
	}

	for _, k := range order {
		unitSet := groups[k]
		if len(unitSet) <= 1 {
			continue
		}
		var units []string
		for u := range unitSet {
			units = append(units, u)
		}
		sort.Strings(units)
		ctx.AddFinding(fmt.Sprintf("fact:%s:context:%s", k.metric, k.contextID), map[string]string{
			"detail": fmt.Sprintf("fact '%s' in context '%s' is reported with %d different units: %s", k.metric, k.contextID, len(unitSet), strings.Join(units, ", ")),
		})
	}
}

// checkBasicISO4217 reports EBA-2.24 when a monetary unit is either a
// divide (implying scaling) or has a currency code that is not a plain
// 3-letter ISO 4217 code.
func checkBasicISO4217(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	for _, unit := range ctx.XMLRoot.ChildElements() {
		if unit.Tag != "unit" || unit.NamespaceURI() != nsXBRLI {
			continue
		}
		unitID := unit.SelectAttrValue("id", "(unknown)")

		if divide := childNamed(unit, "divide"); divide != nil {
			hasISO4217 := false
			for _, m := range allDescendantsNamed(divide, "measure") {
				if isMonetary(strings.TrimSpace(m.Text())) {
					hasISO4217 = true
					break
				}
			}
			if hasISO4217 {
				ctx.AddFinding(fmt.Sprintf("unit:%s", unitID), map[string]string{
					"detail": fmt.Sprintf("unit '%s' uses xbrli:divide with an ISO 4217 currency; monetary units must be simple (no scaling)", unitID),
				})
			}
			continue
		}

		for _, measure := range childrenNamed(unit, "measure") {
			text := strings.TrimSpace(measure.Text())
			if !isMonetary(text) {
				continue
			}
			code := text[8:]
			if !iso4217CodeRE.MatchString(code) {
				ctx.AddFinding(fmt.Sprintf("unit:%s", unitID), map[string]string{
					"detail": fmt.Sprintf("unit '%s' has monetary measure '%s' but '%s' is not a valid basic ISO 4217 code (expected exactly 3 uppercase letters)", unitID, text, code),
				})
			}
		}
	}
}

// checkNoFootnoteLinks reports EBA-2.25 when the document contains
// link:footnoteLink elements, which the EBA ignores.
func checkNoFootnoteLinks(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	if n := ctx.Scans.Document.FootnoteLinks; n > 0 {
		ctx.AddFinding("document", map[string]string{
			"detail": fmt.Sprintf("found %d link:footnoteLink element(s); footnotes are ignored by the EBA", n),
		})
	}
}
