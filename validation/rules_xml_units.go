package validation

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

func init() {
	Register("XML-050", "", checkUTRUnits)
}

var utrNamespaces = map[string]bool{
	nsISO4217: true,
	nsXBRLI:   true,
}

// resolveMeasurePrefix walks elem's ancestor chain looking for an
// xmlns:prefix (or default xmlns, for prefix == "") declaration, since
// a measure's namespace binding may be declared above the unit element
// rather than on it directly.
func resolveMeasurePrefix(elem *etree.Element, prefix string) string {
	for e := elem; e != nil; e = e.Parent {
		for _, a := range e.Attr {
			if prefix == "" {
				if a.Space == "" && a.Key == "xmlns" {
					return a.Value
				}
			} else if a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

func resolveMeasureNamespace(elem *etree.Element, text string) (string, bool) {
	colon := strings.IndexByte(text, ':')
	if colon <= 0 {
		return "", false
	}
	prefix := text[:colon]
	ns := resolveMeasurePrefix(elem, prefix)
	return ns, ns != ""
}

// checkUTRUnits reports XML-050 when an xbrli:unit's measure does not
// reference a namespace in the Unit Type Registry (ISO 4217 currencies
// or the xbrli:pure/shares built-ins).
func checkUTRUnits(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	for _, unit := range ctx.XMLRoot.ChildElements() {
		if unit.Tag != "unit" || unit.NamespaceURI() != nsXBRLI {
			continue
		}
		unitID := unit.SelectAttrValue("id", "(unknown)")
		for _, measure := range allDescendantsNamed(unit, "measure") {
			text := strings.TrimSpace(measure.Text())
			if text == "" {
				continue
			}
			ns, ok := resolveMeasureNamespace(measure, text)
			if !ok || !utrNamespaces[ns] {
				ctx.AddFinding(fmt.Sprintf("unit:%s", unitID), map[string]string{
					"detail": fmt.Sprintf("unit '%s' has measure '%s' that does not reference the UTR", unitID, text),
				})
			}
		}
	}
}

func allDescendantsNamed(parent *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if c.Tag == local {
			out = append(out, c)
		}
		out = append(out, allDescendantsNamed(c, local)...)
	}
	return out
}
