package validation

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// ContextInfo is the per-context scan result: period/entity/segment/
// scenario facts gathered once so every context-family rule reuses it.
type ContextInfo struct {
	Elem       *etree.Element
	ID         string
	Instant    string
	HasStart   bool
	HasEnd     bool
	EntityScheme string
	EntityValue  string
	HasSegment bool
	HasScenario bool
	ScenarioChildren []*etree.Element
	// Dimensions maps an explicit dimension's local name to its member's
	// raw prefixed text (e.g. "CCA" -> "eba_CA:x1"), unresolved, for EBA
	// rules that compare dimension members by their display form.
	Dimensions map[string]string
}

// FactInfo is the per-fact scan result:
// precision, decimals, xsi:nil, empty-string.
type FactInfo struct {
	Elem       *etree.Element
	Label      string
	ContextRef string
	UnitRef    string
	Decimals   string
	HasPrecision bool
	HasNil     bool
	Text       string
}

// NamespaceInfo is the namespace scan result: root declarations and their URI->prefix fan-out.
type NamespaceInfo struct {
	// DeclaredAtRoot is the root element's own xmlns declarations.
	DeclaredAtRoot map[string]string // prefix -> URI
	// PrefixesByURI maps a namespace URI to every distinct prefix the
	// root element binds it to (fan-out > 1 means multiple prefixes for
	// the same URI); declarations below the root are not included.
	PrefixesByURI map[string][]string
}

// DocumentInfo is the document-wide scan result: prohibited elements, context/unit inventory,
// comment/footnote counts.
type DocumentInfo struct {
	Comments      int
	FootnoteLinks int
	ContextIDs    map[string]int // id -> occurrence count, for duplicate detection
	UnitIDs       map[string]int
	ReferencedContextIDs map[string]bool // contexts referenced by some fact or filing indicator
	ReferencedUnitIDs    map[string]bool

	// The following are populated by a full recursive tree walk
	// (buildDocumentScan), since the elements they track can appear at
	// any depth, not just as direct children of root.
	XMLBaseTags      []string // localname of every element carrying @xml:base
	LinkbaseRefCount int
	ForeverCount     int
	SchemaLocTags    []string // localname of every element carrying @xsi:schemaLocation(s)
	XIIncludeCount   int

	// ContextOrder/UnitOrder preserve document order for deterministic
	// findings; ContextKeys/UnitKeys are canonical duplicate-detection
	// keys built by ignoring @id.
	ContextOrder []string
	ContextKeys  map[string]string
	UnitOrder    []string
	UnitKeys     map[string]string
}

// Scans bundles the four shared scans over one parsed document, built
// once per validation run and passed by reference to every rule body.
type Scans struct {
	Contexts   map[string]*ContextInfo
	Facts      []*FactInfo
	Namespaces NamespaceInfo
	Document   DocumentInfo
}

func newScans() *Scans {
	return &Scans{
		Contexts: map[string]*ContextInfo{},
		Document: DocumentInfo{
			ContextIDs:           map[string]int{},
			UnitIDs:              map[string]int{},
			ReferencedContextIDs: map[string]bool{},
			ReferencedUnitIDs:    map[string]bool{},
		},
	}
}

// buildScans walks root once and populates every shared scan.
func buildScans(root *etree.Element) *Scans {
	s := newScans()
	if root == nil {
		return s
	}

	s.Namespaces.DeclaredAtRoot = map[string]string{}
	for _, a := range root.Attr {
		if a.Space == "xmlns" {
			s.Namespaces.DeclaredAtRoot[a.Key] = a.Value
		} else if a.Space == "" && a.Key == "xmlns" {
			s.Namespaces.DeclaredAtRoot[""] = a.Value
		}
	}
	s.Namespaces.PrefixesByURI = map[string][]string{}
	for prefix, uri := range s.Namespaces.DeclaredAtRoot {
		s.Namespaces.PrefixesByURI[uri] = append(s.Namespaces.PrefixesByURI[uri], prefix)
	}

	for _, child := range root.ChildElements() {
		switch {
		case child.Tag == "context" && child.NamespaceURI() == nsXBRLI:
			id := child.SelectAttrValue("id", "")
			s.Document.ContextIDs[id]++
			s.Contexts[id] = scanContext(child, id)

		case child.Tag == "unit" && child.NamespaceURI() == nsXBRLI:
			id := child.SelectAttrValue("id", "")
			s.Document.UnitIDs[id]++

		case child.Tag == "fIndicators" || child.Tag == "filingIndicators":
			for _, fi := range child.ChildElements() {
				if fi.Tag != "filingIndicator" {
					continue
				}
				if ref := fi.SelectAttrValue("contextRef", ""); ref != "" {
					s.Document.ReferencedContextIDs[ref] = true
				}
			}

		case isFact(child):
			fi := &FactInfo{
				Elem:         child,
				Label:        factLabel(child),
				ContextRef:   child.SelectAttrValue("contextRef", ""),
				UnitRef:      child.SelectAttrValue("unitRef", ""),
				Decimals:     child.SelectAttrValue("decimals", ""),
				HasPrecision: child.SelectAttrValue("precision", "") != "",
				HasNil:       child.SelectAttrValue("nil", "") != "",
				Text:         child.Text(),
			}
			s.Facts = append(s.Facts, fi)
			if fi.ContextRef != "" {
				s.Document.ReferencedContextIDs[fi.ContextRef] = true
			}
			if fi.UnitRef != "" {
				s.Document.ReferencedUnitIDs[fi.UnitRef] = true
			}
		}
	}

	buildDocumentScan(root, &s.Document)

	return s
}

// buildDocumentScan walks every element in the tree once, collecting
// prohibited-element/attribute occurrences and the canonical duplicate
// keys for contexts and units.
func buildDocumentScan(root *etree.Element, doc *DocumentInfo) {
	doc.ContextKeys = map[string]string{}
	doc.UnitKeys = map[string]string{}
	walkElements(root, doc)
	countComments(root, doc)
}

func countComments(elem *etree.Element, doc *DocumentInfo) {
	for _, c := range elem.Child {
		if _, ok := c.(*etree.Comment); ok {
			doc.Comments++
		}
	}
	for _, c := range elem.ChildElements() {
		countComments(c, doc)
	}
}

func walkElements(elem *etree.Element, doc *DocumentInfo) {
	switch {
	case elem.Tag == "linkbaseRef" && elem.NamespaceURI() == nsLink:
		doc.LinkbaseRefCount++
	case elem.Tag == "footnoteLink" && elem.NamespaceURI() == nsLink:
		doc.FootnoteLinks++
	case elem.Tag == "forever" && elem.NamespaceURI() == nsXBRLI:
		doc.ForeverCount++
	case elem.Tag == "include" && elem.NamespaceURI() == nsXI:
		doc.XIIncludeCount++
	case elem.Tag == "context" && elem.NamespaceURI() == nsXBRLI:
		id := elem.SelectAttrValue("id", "")
		doc.ContextOrder = append(doc.ContextOrder, id)
		doc.ContextKeys[id] = contextDuplicateKey(elem)
	case elem.Tag == "unit" && elem.NamespaceURI() == nsXBRLI:
		id := elem.SelectAttrValue("id", "")
		doc.UnitOrder = append(doc.UnitOrder, id)
		doc.UnitKeys[id] = unitDuplicateKey(elem)
	}

	if v := elem.SelectAttr("base"); v != nil && v.Space == "xml" {
		doc.XMLBaseTags = append(doc.XMLBaseTags, elem.Tag)
	}
	hasSchemaLoc := false
	for _, a := range elem.Attr {
		if a.Space == "xsi" && (a.Key == "schemaLocation" || a.Key == "noNamespaceSchemaLocation") {
			hasSchemaLoc = true
		}
	}
	if hasSchemaLoc {
		doc.SchemaLocTags = append(doc.SchemaLocTags, elem.Tag)
	}

	for _, c := range elem.ChildElements() {
		walkElements(c, doc)
	}
}

// contextDuplicateKey builds a canonical string identifying a context's
// semantic content (entity, period, scenario), ignoring its @id, for
// duplicate detection.
func contextDuplicateKey(elem *etree.Element) string {
	scheme, value := "", ""
	if entity := childNamed(elem, "entity"); entity != nil {
		if ident := childNamed(entity, "identifier"); ident != nil {
			scheme = ident.SelectAttrValue("scheme", "")
			value = ident.Text()
		}
	}

	periodPart := "?"
	if period := childNamed(elem, "period"); period != nil {
		if instant := childNamed(period, "instant"); instant != nil {
			periodPart = "instant:" + instant.Text()
		} else {
			start, end := "", ""
			if s := childNamed(period, "startDate"); s != nil {
				start = s.Text()
			}
			if e := childNamed(period, "endDate"); e != nil {
				end = e.Text()
			}
			periodPart = "duration:" + start + ":" + end
		}
	}

	scenarioPart := ""
	if scenario := childNamed(elem, "scenario"); scenario != nil {
		var parts []string
		for _, c := range scenario.ChildElements() {
			doc := etree.NewDocument()
			clone := c.Copy()
			doc.SetRoot(clone)
			serialized, err := doc.WriteToString()
			if err == nil {
				parts = append(parts, serialized)
			}
		}
		sort.Strings(parts)
		scenarioPart = strings.Join(parts, "|")
	}

	return strings.Join([]string{scheme, value, periodPart, scenarioPart}, "\x1f")
}

// unitDuplicateKey builds a canonical string identifying a unit's
// semantic content (measures, or numerator/denominator for a divide
// unit), ignoring its @id, for duplicate detection.
func unitDuplicateKey(elem *etree.Element) string {
	if divide := childNamed(elem, "divide"); divide != nil {
		num := measureTexts(childNamed(divide, "unitNumerator"))
		den := measureTexts(childNamed(divide, "unitDenominator"))
		return "divide:" + strings.Join(num, ",") + ":" + strings.Join(den, ",")
	}
	return "simple:" + strings.Join(measureTexts(elem), ",")
}

func measureTexts(parent *etree.Element) []string {
	if parent == nil {
		return nil
	}
	var out []string
	for _, m := range childrenNamed(parent, "measure") {
		out = append(out, strings.TrimSpace(m.Text()))
	}
	sort.Strings(out)
	return out
}

func scanContext(elem *etree.Element, id string) *ContextInfo {
	info := &ContextInfo{Elem: elem, ID: id}

	if entity := childNamed(elem, "entity"); entity != nil {
		if ident := childNamed(entity, "identifier"); ident != nil {
			info.EntityScheme = ident.SelectAttrValue("scheme", "")
			info.EntityValue = ident.Text()
		}
		info.HasSegment = childNamed(entity, "segment") != nil
	}

	if period := childNamed(elem, "period"); period != nil {
		if instant := childNamed(period, "instant"); instant != nil {
			info.Instant = instant.Text()
		}
		info.HasStart = childNamed(period, "startDate") != nil
		info.HasEnd = childNamed(period, "endDate") != nil
	}

	if scenario := childNamed(elem, "scenario"); scenario != nil {
		info.HasScenario = true
		info.ScenarioChildren = scenario.ChildElements()
		info.Dimensions = map[string]string{}
		for _, em := range info.ScenarioChildren {
			if em.Tag != "explicitMember" || em.NamespaceURI() != nsXBRLDI {
				continue
			}
			dimQName := em.SelectAttrValue("dimension", "")
			colon := strings.IndexByte(dimQName, ':')
			dimLn := dimQName
			if colon >= 0 {
				dimLn = dimQName[colon+1:]
			}
			info.Dimensions[dimLn] = strings.TrimSpace(em.Text())
		}
	}

	return info
}
