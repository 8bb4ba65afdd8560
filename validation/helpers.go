package validation

import "github.com/beevik/etree"

// Namespace constants shared by multiple rule files.
const (
	nsXBRLI = "http://www.xbrl.org/2003/instance"
	nsLink  = "http://www.xbrl.org/2003/linkbase"
	nsXlink = "http://www.w3.org/1999/xlink"
	nsXBRLDI = "http://xbrl.org/2006/xbrldi"
	nsFind  = "http://www.eurofiling.info/xbrl/ext/filing-indicators"
	nsISO4217 = "http://www.xbrl.org/2003/iso4217"
	nsXSI   = "http://www.w3.org/2001/XMLSchema-instance"
	nsXI    = "http://www.w3.org/2001/XInclude"
)

var infraNamespaces = map[string]bool{
	nsXBRLI: true,
	nsLink:  true,
	nsFind:  true,
}

// isFact reports whether elem is a fact element rather than XBRL
// infrastructure.
func isFact(elem *etree.Element) bool {
	return !infraNamespaces[elem.NamespaceURI()]
}

// factLabel returns a human-readable label for a fact element.
func factLabel(elem *etree.Element) string {
	return elem.Tag
}

// isMonetary reports whether a unit measure string denotes an ISO 4217
// currency.
func isMonetary(measure string) bool {
	return len(measure) >= 8 && lower(measure[:8]) == "iso4217:"
}

var pureValues = map[string]bool{"xbrli:pure": true, "pure": true}

// isPure reports whether a unit measure string is the dimensionless
// "pure" unit.
func isPure(measure string) bool {
	return pureValues[measure]
}

func lower(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// childrenNamed returns the direct child elements of parent whose local
// tag name equals local, regardless of namespace prefix.
func childrenNamed(parent *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if c.Tag == local {
			out = append(out, c)
		}
	}
	return out
}

// childNamed returns the first direct child named local, or nil.
func childNamed(parent *etree.Element, local string) *etree.Element {
	cs := childrenNamed(parent, local)
	if len(cs) == 0 {
		return nil
	}
	return cs[0]
}
