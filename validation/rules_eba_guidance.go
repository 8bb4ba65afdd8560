package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

func init() {
	Register("EBA-GUIDE-001", "", checkUnusedNamespacePrefixes)
	Register("EBA-GUIDE-002", "", checkCanonicalPrefixes)
	Register("EBA-GUIDE-003", "", checkUnusedFactIDs)
	Register("EBA-GUIDE-004", "", checkExcessiveStringLength)
	Register("EBA-GUIDE-005", "", checkNamespaceDeclarationsBelowRoot)
	Register("EBA-GUIDE-006", "", checkMultiplePrefixesSameNamespace)
	Register("EBA-GUIDE-007", "", checkLeadingTrailingWhitespace)
}

// canonicalPrefixes maps a well-known namespace URI to its conventional
// prefix, for flagging documents that bind a different one.
var canonicalPrefixes = map[string]string{
	nsXBRLI:     "xbrli",
	nsLink:      "link",
	nsXlink:     "xlink",
	nsISO4217:   "iso4217",
	nsXBRLDI:    "xbrldi",
	"http://xbrl.org/2005/xbrldt":     "xbrldt",
	nsFind:                            "find",
	nsXSI:                             "xsi",
	"http://www.w3.org/2001/XMLSchema": "xsd",
}

const excessiveStringLength = 10000

// canonicalPrefixForURI returns the conventional prefix for uri, or ""
// if uri has no known convention. EBA dictionary namespaces
// (.../eba.europa.eu/.../dict/{segment}) conventionally use eba_{segment}.
func canonicalPrefixForURI(uri string) string {
	if p, ok := canonicalPrefixes[uri]; ok {
		return p
	}
	if strings.Contains(uri, "eba.europa.eu") {
		cleaned := strings.TrimRight(uri, "#/")
		if i := strings.LastIndexByte(cleaned, '/'); i >= 0 && i+1 < len(cleaned) {
			return "eba_" + cleaned[i+1:]
		}
	}
	return ""
}

// localNamespaceDecls returns the prefix->URI declarations elem itself
// carries (not inherited from an ancestor).
func localNamespaceDecls(elem *etree.Element) map[string]string {
	out := map[string]string{}
	for _, a := range elem.Attr {
		if a.Space == "xmlns" {
			out[a.Key] = a.Value
		} else if a.Space == "" && a.Key == "xmlns" {
			out[""] = a.Value
		}
	}
	return out
}

func collectUsedURIs(root *etree.Element) map[string]bool {
	used := map[string]bool{}
	var walk func(elem *etree.Element)
	walk = func(elem *etree.Element) {
		if elem.NamespaceURI() != "" {
			used[elem.NamespaceURI()] = true
		}
		for _, a := range elem.Attr {
			if a.Space != "" && a.Space != "xmlns" && a.Space != "xml" {
				if uri := resolveMeasurePrefix(elem, a.Space); uri != "" {
					used[uri] = true
				}
			}
		}
		texts := []string{elem.Text()}
		for _, a := range elem.Attr {
			texts = append(texts, a.Value)
		}
		for _, text := range texts {
			if colon := strings.IndexByte(text, ':'); colon > 0 {
				prefix := text[:colon]
				if uri := resolveMeasurePrefix(elem, prefix); uri != "" {
					used[uri] = true
				}
			}
		}
		for _, c := range elem.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	return used
}

// checkUnusedNamespacePrefixes reports EBA-GUIDE-001 for a root-declared
// prefix whose namespace is never referenced in the document.
func checkUnusedNamespacePrefixes(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	used := collectUsedURIs(ctx.XMLRoot)

	var unused []string
	for prefix, uri := range ctx.Scans.Namespaces.DeclaredAtRoot {
		if prefix == "" || prefix == "xml" {
			continue
		}
		if !used[uri] {
			unused = append(unused, prefix)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		ctx.AddFinding("root", map[string]string{
			"detail": fmt.Sprintf("unused prefixes: %s", strings.Join(unused, ", ")),
		})
	}
}

// checkCanonicalPrefixes reports EBA-GUIDE-002 for a root-declared
// prefix that does not match its namespace's conventional prefix.
func checkCanonicalPrefixes(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	var mismatches []string
	for prefix, uri := range ctx.Scans.Namespaces.DeclaredAtRoot {
		if prefix == "" {
			continue
		}
		if canonical := canonicalPrefixForURI(uri); canonical != "" && canonical != prefix {
			mismatches = append(mismatches, fmt.Sprintf("%s (expected %s)", prefix, canonical))
		}
	}
	if len(mismatches) > 0 {
		sort.Strings(mismatches)
		ctx.AddFinding("root", map[string]string{
			"detail": fmt.Sprintf("non-canonical prefixes: %s", strings.Join(mismatches, ", ")),
		})
	}
}

// checkUnusedFactIDs reports EBA-GUIDE-003 when one or more top-level
// facts carry an @id attribute, which serves no purpose in an instance.
func checkUnusedFactIDs(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	var flagged []string
	for _, child := range ctx.XMLRoot.ChildElements() {
		if !isFact(child) {
			continue
		}
		if id := child.SelectAttrValue("id", ""); id != "" {
			flagged = append(flagged, fmt.Sprintf("%s id=%s", child.Tag, id))
		}
	}
	reportTruncatedList(ctx, "facts", "fact(s) with @id", flagged)
}

// checkExcessiveStringLength reports EBA-GUIDE-004 for a non-numeric
// fact whose value exceeds a generous length threshold.
func checkExcessiveStringLength(ctx *Context) {
	for _, f := range ctx.Scans.Facts {
		if f.UnitRef != "" {
			continue
		}
		if length := len([]rune(f.Text)); length > excessiveStringLength {
			ctx.AddFinding(fmt.Sprintf("fact:%s", f.Label), map[string]string{
				"detail": fmt.Sprintf("string value is %d characters (threshold: %d)", length, excessiveStringLength),
			})
		}
	}
}

// checkNamespaceDeclarationsBelowRoot reports EBA-GUIDE-005 for any
// non-root element that introduces its own xmlns declaration.
func checkNamespaceDeclarationsBelowRoot(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	var offending []string
	var walk func(elem *etree.Element, isRoot bool)
	walk = func(elem *etree.Element, isRoot bool) {
		if !isRoot {
			if decls := localNamespaceDecls(elem); len(decls) > 0 {
				var prefixes []string
				for p := range decls {
					if p == "" {
						prefixes = append(prefixes, "(default)")
					} else {
						prefixes = append(prefixes, p)
					}
				}
				sort.Strings(prefixes)
				offending = append(offending, fmt.Sprintf("%s declares %s", elem.Tag, strings.Join(prefixes, ", ")))
			}
		}
		for _, c := range elem.ChildElements() {
			walk(c, false)
		}
	}
	walk(ctx.XMLRoot, true)
	reportTruncatedList(ctx, "document", "element(s) with local namespace declarations", offending)
}

// checkMultiplePrefixesSameNamespace reports EBA-GUIDE-006 when a
// namespace URI is bound to more than one prefix anywhere in the
// document (root or local declarations).
func checkMultiplePrefixesSameNamespace(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	uriToPrefixes := map[string]map[string]bool{}
	addPrefix := func(uri, prefix string) {
		if prefix == "" {
			return
		}
		if uriToPrefixes[uri] == nil {
			uriToPrefixes[uri] = map[string]bool{}
		}
		uriToPrefixes[uri][prefix] = true
	}
	var walk func(elem *etree.Element)
	walk = func(elem *etree.Element) {
		for prefix, uri := range localNamespaceDecls(elem) {
			addPrefix(uri, prefix)
		}
		for _, c := range elem.ChildElements() {
			walk(c)
		}
	}
	walk(ctx.XMLRoot)

	var uris []string
	for uri := range uriToPrefixes {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	var duplicates []string
	for _, uri := range uris {
		prefixes := uriToPrefixes[uri]
		if len(prefixes) <= 1 {
			continue
		}
		var sorted []string
		for p := range prefixes {
			sorted = append(sorted, p)
		}
		sort.Strings(sorted)
		duplicates = append(duplicates, fmt.Sprintf("%s → %s", strings.Join(sorted, ", "), uri))
	}
	if len(duplicates) > 0 {
		ctx.AddFinding("document", map[string]string{
			"detail": fmt.Sprintf("multiple prefixes for same namespace: %s", strings.Join(duplicates, "; ")),
		})
	}
}

// checkLeadingTrailingWhitespace reports EBA-GUIDE-007 for string facts
// or dimension member values with leading or trailing whitespace.
func checkLeadingTrailingWhitespace(ctx *Context) {
	var issues []string

	for _, f := range ctx.Scans.Facts {
		if f.UnitRef != "" {
			continue
		}
		if f.Text != strings.TrimSpace(f.Text) {
			issues = append(issues, fmt.Sprintf("fact %s", f.Label))
		}
	}

	for _, id := range ctx.Scans.Document.ContextOrder {
		info, ok := ctx.Scans.Contexts[id]
		if !ok {
			continue
		}
		var dims []string
		for dim := range info.Dimensions {
			dims = append(dims, dim)
		}
		sort.Strings(dims)
		for _, dim := range dims {
			val := info.Dimensions[dim]
			if val != strings.TrimSpace(val) {
				issues = append(issues, fmt.Sprintf("context %s dimension %s", id, dim))
			}
		}
	}

	reportTruncatedList(ctx, "document", "value(s) with leading/trailing whitespace", issues)
}

// reportTruncatedList reports one finding summarising items, showing at
// most 5 examples and noting how many more were omitted.
func reportTruncatedList(ctx *Context, location, noun string, items []string) {
	if len(items) == 0 {
		return
	}
	n := len(items)
	shown := items
	if n > 5 {
		shown = items[:5]
	}
	detail := fmt.Sprintf("%d %s: %s", n, noun, strings.Join(shown, "; "))
	if n > 5 {
		detail += fmt.Sprintf(" (and %d more)", n-5)
	}
	ctx.AddFinding(location, map[string]string{"detail": detail})
}
