package validation

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/speedata/xbridge"
)

func init() {
	Register("XML-070", "", checkValidConcepts)
	Register("XML-071", "", checkValidDimensions)
	Register("XML-072", "", checkValidMembers)
}

// skipDimKeys are Cell.Dimensions entries that are not real dimension
// bindings.
var skipDimKeys = map[string]bool{"concept": true, "unit": true, "decimals": true}

// taxonomyData is the set of lookup tables extracted from a Module's
// tables for XML-070..072; getTaxonomyScan rebuilds it for each of the
// three rules.
type taxonomyData struct {
	validConcepts     map[xbridge.QName]bool
	validDimLocalnames map[string]bool
	dimMembers        map[string]map[xbridge.QName]bool
	openKeyLocalnames map[string]bool
}

func extractTaxonomy(mod *xbridge.Module) *taxonomyData {
	data := &taxonomyData{
		validConcepts:      map[xbridge.QName]bool{},
		validDimLocalnames: map[string]bool{},
		dimMembers:         map[string]map[xbridge.QName]bool{},
		openKeyLocalnames:  map[string]bool{},
	}
	for _, t := range mod.Tables {
		for ok := range t.OpenKeys {
			data.openKeyLocalnames[ok] = true
			data.validDimLocalnames[ok] = true
		}
		cells := t.Variables
		if t.Architecture == xbridge.ArchitectureHeaders {
			cells = t.Columns
		}
		for _, cell := range cells {
			for key, value := range cell.Dimensions {
				if key == "concept" {
					data.validConcepts[xbridge.ParseClarkName(value)] = true
					continue
				}
				if skipDimKeys[key] || strings.HasPrefix(key, "$") {
					continue
				}
				colon := strings.IndexByte(key, ':')
				dimLn := key
				if colon >= 0 {
					dimLn = key[colon+1:]
				}
				data.validDimLocalnames[dimLn] = true
				if isUnitPlaceholderValue(value) {
					continue
				}
				if data.dimMembers[dimLn] == nil {
					data.dimMembers[dimLn] = map[xbridge.QName]bool{}
				}
				data.dimMembers[dimLn][xbridge.ParseClarkName(value)] = true
			}
		}
	}
	return data
}

func isUnitPlaceholderValue(v string) bool {
	return v == "$unit" || v == "$baseCurrency"
}

// taxonomyScan is what one pass over the document gathers for all three
// taxonomy rules.
type taxonomyScan struct {
	unknownConcepts   []string
	unknownDimensions [][2]string // contextID, dimension qname text
	invalidMembers    [][3]string // contextID, dimension qname text, member qname text
}

func scanTaxonomy(root *etree.Element, data *taxonomyData) *taxonomyScan {
	scan := &taxonomyScan{}

	for _, child := range root.ChildElements() {
		if !isFact(child) {
			continue
		}
		q := xbridge.QName{Space: child.NamespaceURI(), Local: child.Tag}
		if !data.validConcepts[q] {
			scan.unknownConcepts = append(scan.unknownConcepts, child.Tag)
		}
	}

	for _, em := range allDescendantsNamed(root, "explicitMember") {
		if em.NamespaceURI() != nsXBRLDI {
			continue
		}
		ctxID := "?"
		if em.Parent != nil && em.Parent.Parent != nil {
			ctxID = em.Parent.Parent.SelectAttrValue("id", "?")
		}

		dimQName := em.SelectAttrValue("dimension", "")
		dimLn, ok := resolveDimLocalname(em, dimQName)
		if !ok {
			scan.unknownDimensions = append(scan.unknownDimensions, [2]string{ctxID, dimQName})
			continue
		}
		if !data.validDimLocalnames[dimLn] {
			scan.unknownDimensions = append(scan.unknownDimensions, [2]string{ctxID, dimQName})
			continue
		}
		if data.openKeyLocalnames[dimLn] {
			continue
		}

		memberText := strings.TrimSpace(em.Text())
		if memberText == "" {
			continue
		}
		ns, ok := resolveMeasureNamespace(em, memberText)
		if !ok {
			scan.invalidMembers = append(scan.invalidMembers, [3]string{ctxID, dimQName, memberText})
			continue
		}
		colon := strings.IndexByte(memberText, ':')
		member := xbridge.QName{Space: ns, Local: memberText[colon+1:]}
		if !data.dimMembers[dimLn][member] {
			scan.invalidMembers = append(scan.invalidMembers, [3]string{ctxID, dimQName, memberText})
		}
	}

	return scan
}

func resolveDimLocalname(elem *etree.Element, dimQName string) (string, bool) {
	colon := strings.IndexByte(dimQName, ':')
	if colon <= 0 {
		return "", false
	}
	prefix, local := dimQName[:colon], dimQName[colon+1:]
	if resolveMeasurePrefix(elem, prefix) == "" {
		return "", false
	}
	return local, true
}

func getTaxonomyScan(ctx *Context) *taxonomyScan {
	if ctx.XMLRoot == nil || ctx.Module == nil {
		return nil
	}
	data := extractTaxonomy(ctx.Module)
	return scanTaxonomy(ctx.XMLRoot, data)
}

// checkValidConcepts reports XML-070 for any fact whose element is not
// a concept defined in the resolved module.
func checkValidConcepts(ctx *Context) {
	scan := getTaxonomyScan(ctx)
	if scan == nil {
		return
	}
	for _, localname := range scan.unknownConcepts {
		ctx.AddFinding(fmt.Sprintf("fact:%s", localname), map[string]string{
			"detail": fmt.Sprintf("concept '%s' is not defined in the taxonomy for this entry point", localname),
		})
	}
}

// checkValidDimensions reports XML-071 for any xbrldi:explicitMember
// dimension QName not defined in the resolved module.
func checkValidDimensions(ctx *Context) {
	scan := getTaxonomyScan(ctx)
	if scan == nil {
		return
	}
	for _, pair := range scan.unknownDimensions {
		ctxID, dimQName := pair[0], pair[1]
		ctx.AddFinding(fmt.Sprintf("context:%s", ctxID), map[string]string{
			"detail": fmt.Sprintf("dimension '%s' in context '%s' is not defined in the taxonomy", dimQName, ctxID),
		})
	}
}

// checkValidMembers reports XML-072 for any dimension member value not
// valid for its dimension in the resolved module.
func checkValidMembers(ctx *Context) {
	scan := getTaxonomyScan(ctx)
	if scan == nil {
		return
	}
	for _, triple := range scan.invalidMembers {
		ctxID, dimQName, memberQName := triple[0], triple[1], triple[2]
		ctx.AddFinding(fmt.Sprintf("context:%s", ctxID), map[string]string{
			"detail": fmt.Sprintf("member '%s' is not a valid value for dimension '%s' in context '%s'", memberQName, dimQName, ctxID),
		})
	}
}
