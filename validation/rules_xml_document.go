package validation

import (
	"bytes"
	"fmt"
	"regexp"
)

func init() {
	Register("XML-060", "", checkNoXMLBase)
	Register("XML-061", "", checkNoLinkbaseRef)
	Register("XML-062", "", checkNoForever)
	Register("XML-063", "", checkNoSchemaLocation)
	Register("XML-064", "", checkNoXIInclude)
	Register("XML-065", "", checkNoStandalone)
	Register("XML-066", "", checkUnusedContexts)
	Register("XML-067", "", checkDuplicateContexts)
	Register("XML-068", "", checkUnusedUnits)
	Register("XML-069", "", checkDuplicateUnits)
}

var standaloneDeclRE = regexp.MustCompile(`<\?xml\b[^?]*\bstandalone\s*=`)

// checkNoXMLBase reports XML-060 for any element carrying @xml:base.
func checkNoXMLBase(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	for _, tag := range ctx.Scans.Document.XMLBaseTags {
		ctx.AddFinding(fmt.Sprintf("element:%s", tag), map[string]string{
			"detail": fmt.Sprintf("element '%s' uses @xml:base", tag),
		})
	}
}

// checkNoLinkbaseRef reports XML-061 when link:linkbaseRef appears.
func checkNoLinkbaseRef(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	if n := ctx.Scans.Document.LinkbaseRefCount; n > 0 {
		ctx.AddFinding("document", map[string]string{
			"detail": fmt.Sprintf("found %d link:linkbaseRef element(s)", n),
		})
	}
}

// checkNoForever reports XML-062 when xbrli:forever appears.
func checkNoForever(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	if n := ctx.Scans.Document.ForeverCount; n > 0 {
		ctx.AddFinding("document", map[string]string{
			"detail": fmt.Sprintf("found %d xbrli:forever element(s)", n),
		})
	}
}

// checkNoSchemaLocation reports XML-063 for any element carrying
// @xsi:schemaLocation or @xsi:noNamespaceSchemaLocation.
func checkNoSchemaLocation(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	for _, tag := range ctx.Scans.Document.SchemaLocTags {
		ctx.AddFinding(fmt.Sprintf("element:%s", tag), map[string]string{
			"detail": fmt.Sprintf("element '%s' uses @xsi:schemaLocation or @xsi:noNamespaceSchemaLocation", tag),
		})
	}
}

// checkNoXIInclude reports XML-064 when xi:include appears.
func checkNoXIInclude(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	if n := ctx.Scans.Document.XIIncludeCount; n > 0 {
		ctx.AddFinding("document", map[string]string{
			"detail": fmt.Sprintf("found %d xi:include element(s)", n),
		})
	}
}

// checkNoStandalone reports XML-065 when the XML declaration carries a
// standalone attribute.
func checkNoStandalone(ctx *Context) {
	head := ctx.RawBytes
	if len(head) > 500 {
		head = head[:500]
	}
	if standaloneDeclRE.Match(head) || bytes.Contains(head, []byte("standalone=")) {
		ctx.AddFinding("document", map[string]string{
			"detail": "the XML declaration uses the standalone attribute",
		})
	}
}

// checkUnusedContexts reports XML-066 for any context not referenced
// by a fact or filing indicator.
func checkUnusedContexts(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	for _, id := range ctx.Scans.Document.ContextOrder {
		if !ctx.Scans.Document.ReferencedContextIDs[id] {
			ctx.AddFinding(fmt.Sprintf("context:%s", id), map[string]string{
				"detail": fmt.Sprintf("context '%s' is not referenced by any fact", id),
			})
		}
	}
}

// checkDuplicateContexts reports XML-067 for any context whose
// canonical content matches an earlier context's.
func checkDuplicateContexts(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	seen := map[string]string{}
	for _, id := range ctx.Scans.Document.ContextOrder {
		key := ctx.Scans.Document.ContextKeys[id]
		if first, ok := seen[key]; ok {
			ctx.AddFinding(fmt.Sprintf("context:%s", id), map[string]string{
				"detail": fmt.Sprintf("context '%s' is a duplicate of '%s'", id, first),
			})
		} else {
			seen[key] = id
		}
	}
}

// checkUnusedUnits reports XML-068 for any unit not referenced by a
// fact.
func checkUnusedUnits(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	for _, id := range ctx.Scans.Document.UnitOrder {
		if !ctx.Scans.Document.ReferencedUnitIDs[id] {
			ctx.AddFinding(fmt.Sprintf("unit:%s", id), map[string]string{
				"detail": fmt.Sprintf("unit '%s' is not referenced by any fact", id),
			})
		}
	}
}

// checkDuplicateUnits reports XML-069 for any unit whose canonical
// content matches an earlier unit's.
func checkDuplicateUnits(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	seen := map[string]string{}
	for _, id := range ctx.Scans.Document.UnitOrder {
		key := ctx.Scans.Document.UnitKeys[id]
		if first, ok := seen[key]; ok {
			ctx.AddFinding(fmt.Sprintf("unit:%s", id), map[string]string{
				"detail": fmt.Sprintf("unit '%s' is a duplicate of '%s'", id, first),
			})
		} else {
			seen[key] = id
		}
	}
}
