package validation

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"
)

func init() {
	Register("XML-020", "", checkFIndicatorsPresent)
	Register("XML-021", "", checkFilingIndicatorExists)
	Register("XML-024", "", checkFilingIndicatorValues)
	Register("XML-025", "", checkDuplicateFilingIndicators)
	Register("XML-026", "", checkFilingIndicatorContext)
}

func fIndicatorBlocks(ctx *Context) []*etree.Element {
	if ctx.XMLRoot == nil {
		return nil
	}
	var blocks []*etree.Element
	for _, child := range ctx.XMLRoot.ChildElements() {
		if child.Tag == "fIndicators" || child.Tag == "filingIndicators" {
			blocks = append(blocks, child)
		}
	}
	return blocks
}

func filingIndicatorElems(blocks []*etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, b := range blocks {
		for _, child := range b.ChildElements() {
			if child.Tag == "filingIndicator" {
				out = append(out, child)
			}
		}
	}
	return out
}

// checkFIndicatorsPresent reports XML-020 when no find:fIndicators
// container is present.
func checkFIndicatorsPresent(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	if len(fIndicatorBlocks(ctx)) == 0 {
		ctx.AddFinding(ctx.FilePath, map[string]string{"detail": "no find:fIndicators element found"})
	}
}

// checkFilingIndicatorExists reports XML-021 when an fIndicators
// container is present but holds no filingIndicator elements.
func checkFilingIndicatorExists(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	blocks := fIndicatorBlocks(ctx)
	if len(blocks) == 0 {
		return
	}
	if len(filingIndicatorElems(blocks)) == 0 {
		ctx.AddFinding(ctx.FilePath, map[string]string{
			"detail": "no filingIndicator elements found inside fIndicators",
		})
	}
}

// checkFilingIndicatorValues reports XML-024 when a filing indicator
// value does not match any known table code from the resolved module.
func checkFilingIndicatorValues(ctx *Context) {
	if ctx.Module == nil || ctx.XMLRoot == nil {
		return
	}
	indicators := filingIndicatorElems(fIndicatorBlocks(ctx))
	if len(indicators) == 0 {
		return
	}

	validCodes := map[string]bool{}
	for _, t := range ctx.Module.Tables {
		if t.FilingIndicatorCode != "" {
			validCodes[t.FilingIndicatorCode] = true
		}
	}

	for _, ind := range indicators {
		value := ind.Text()
		if !validCodes[value] {
			ctx.AddFinding(ctx.FilePath, map[string]string{
				"detail": fmt.Sprintf("filing indicator '%s' is not a valid code for module '%s'", value, ctx.Module.Code),
			})
		}
	}
}

// checkDuplicateFilingIndicators reports XML-025 for each filing
// indicator value that appears more than once.
func checkDuplicateFilingIndicators(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	indicators := filingIndicatorElems(fIndicatorBlocks(ctx))
	if len(indicators) == 0 {
		return
	}
	counts := map[string]int{}
	for _, ind := range indicators {
		counts[ind.Text()]++
	}
	var dups []string
	for code, n := range counts {
		if n > 1 {
			dups = append(dups, code)
		}
	}
	sort.Strings(dups)
	for _, dup := range dups {
		ctx.AddFinding(ctx.FilePath, map[string]string{
			"detail": fmt.Sprintf("filing indicator '%s' appears %d times", dup, counts[dup]),
		})
	}
}

// checkFilingIndicatorContext reports XML-026 when a context referenced
// by a filing indicator carries a segment or scenario.
func checkFilingIndicatorContext(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	indicators := filingIndicatorElems(fIndicatorBlocks(ctx))
	if len(indicators) == 0 {
		return
	}

	reported := map[string]bool{}
	for _, ind := range indicators {
		ref := ind.SelectAttrValue("contextRef", "")
		if ref == "" || reported[ref] {
			continue
		}
		info, ok := ctx.Scans.Contexts[ref]
		if !ok {
			continue
		}
		if info.HasSegment || info.HasScenario {
			var parts []string
			if info.HasSegment {
				parts = append(parts, "xbrli:segment")
			}
			if info.HasScenario {
				parts = append(parts, "xbrli:scenario")
			}
			ctx.AddFinding(fmt.Sprintf("context[@id='%s']", ref), map[string]string{
				"detail": fmt.Sprintf("context '%s' referenced by filing indicator contains %s", ref, joinStringsWith(parts, " and ")),
			})
			reported[ref] = true
		}
	}
}
