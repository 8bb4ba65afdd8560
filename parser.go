package xbridge

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseInstance parses raw XBRL-XML bytes into an Instance. Facts are
// dynamically named elements identified by the presence of a
// contextRef attribute; contexts, units and filing indicators are
// fixed-schema and decoded structurally.
func ParseInstance(data []byte) (*Instance, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	inst := &Instance{
		Contexts: map[string]*Context{},
		Units:    map[string]*Unit{},
	}

	scope := newNsScope()
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col := offsetToLineCol(data, dec.InputOffset())
			return nil, &XmlSyntaxError{Line: line, Column: col, Msg: err.Error()}
		}

		switch el := tok.(type) {
		case xml.StartElement:
			scope.push(nsBindings(el.Attr))

			if !sawRoot {
				sawRoot = true
				if el.Name.Space != nsXBRLI || el.Name.Local != "xbrl" {
					line, col := offsetToLineCol(data, dec.InputOffset())
					return nil, &XmlSyntaxError{Line: line, Column: col,
						Msg: fmt.Sprintf("root element is {%s}%s, want {%s}xbrl", el.Name.Space, el.Name.Local, nsXBRLI)}
				}
				inst.RootNamespaces = scope.snapshot()
				continue
			}

			switch {
			case el.Name.Space == nsLink && el.Name.Local == "schemaRef":
				href := attr(el.Attr, nsXlink, "href")
				if inst.SchemaRef != "" {
					line, col := offsetToLineCol(data, dec.InputOffset())
					return nil, &XmlSyntaxError{Line: line, Column: col, Msg: "multiple link:schemaRef elements, expected exactly one"}
				}
				inst.SchemaRef = href
				if err := dec.Skip(); err != nil {
					return nil, wrapIOErr("skipping schemaRef", err)
				}
				scope.pop()

			case el.Name.Space == nsXBRLI && el.Name.Local == "context":
				ctx, err := decodeContext(dec, scope, el)
				if err != nil {
					return nil, err
				}
				if _, dup := inst.Contexts[ctx.ID]; dup {
					return nil, &ConversionError{Detail: "duplicate context id " + ctx.ID}
				}
				inst.Contexts[ctx.ID] = ctx
				inst.ContextOrder = append(inst.ContextOrder, ctx.ID)
				scope.pop()

			case el.Name.Space == nsXBRLI && el.Name.Local == "unit":
				u, err := decodeUnit(dec, scope, el)
				if err != nil {
					return nil, err
				}
				if _, dup := inst.Units[u.ID]; dup {
					return nil, &ConversionError{Detail: "duplicate unit id " + u.ID}
				}
				inst.Units[u.ID] = u
				scope.pop()

			case el.Name.Space == nsFind && (el.Name.Local == "fIndicators" || el.Name.Local == "filingIndicators"):
				// container element; its children are read as ordinary
				// start elements on subsequent loop iterations.

			case el.Name.Space == nsFind && el.Name.Local == "filingIndicator":
				fi, err := decodeFilingIndicator(dec, el)
				if err != nil {
					return nil, err
				}
				inst.FilingIndicators = append(inst.FilingIndicators, fi)
				scope.pop()

			default:
				if ref := attr(el.Attr, "", "contextRef"); ref != "" {
					f, err := decodeFact(dec, el, len(inst.Facts))
					if err != nil {
						return nil, err
					}
					f.NSSnapshot = scope.snapshot()
					inst.Facts = append(inst.Facts, f)
					scope.pop()
				}
				// else: a non-fact, non-fixed-schema element (e.g. a
				// header/footnote wrapper) — left for the normal
				// StartElement/EndElement walk to descend into and pop.
			}

		case xml.EndElement:
			scope.pop()
		}
	}

	if !sawRoot {
		return nil, &XmlSyntaxError{Line: 1, Column: 1, Msg: "empty document"}
	}

	if err := deriveSharedContextFields(inst); err != nil {
		return nil, err
	}

	return inst, nil
}

// deriveSharedContextFields enforces that every context shares the same
// entity identifier and reference instant, and records the shared value
// on the Instance. An unrecognised identifier scheme is a warning, not
// a failure.
func deriveSharedContextFields(inst *Instance) error {
	first := true
	for _, id := range inst.ContextOrder {
		c := inst.Contexts[id]
		if first {
			inst.EntityIdentifier = c.Entity
			inst.ReferencePeriod = c.Instant
			first = false
			continue
		}
		if c.Entity != inst.EntityIdentifier {
			return &ConversionError{Detail: "context " + c.ID + " has a different entity identifier than the rest of the document"}
		}
		if c.Instant != inst.ReferencePeriod {
			return &ConversionError{Detail: "context " + c.ID + " has a different reference instant than the rest of the document"}
		}
	}
	if !first {
		switch inst.EntityIdentifier.Scheme {
		case "http://standards.iso.org/iso/17442", "https://eurofiling.info/eu/rs":
		default:
			inst.Warnings = append(inst.Warnings, RecoverableWarning{
				Code:    "unknown-identifier-scheme",
				Message: "entity identifier scheme " + strconv.Quote(inst.EntityIdentifier.Scheme) + " is not recognised",
			})
		}
	}
	return nil
}

func decodeContext(dec *xml.Decoder, scope *nsScope, start xml.StartElement) (*Context, error) {
	c := &Context{ID: attr(start.Attr, "", "id"), Scenario: newScenario()}
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, wrapIOErr("decoding context "+c.ID, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			scope.push(nsBindings(el.Attr))
			depth++
			switch {
			case el.Name.Space == nsXBRLI && (el.Name.Local == "entity" || el.Name.Local == "period"):
				// Wrapper element only; its children (identifier/segment for
				// entity, instant/startDate/endDate for period) arrive as
				// their own StartElement tokens on the next loop iterations
				// and are matched by the cases below. depth/scope stay pushed
				// until its matching EndElement reaches the case xml.EndElement
				// branch below.

			case el.Name.Space == nsXBRLI && el.Name.Local == "identifier":
				scheme := attr(el.Attr, "", "scheme")
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, wrapIOErr("decoding identifier", err)
				}
				c.Entity = EntityIdentifier{Scheme: scheme, Value: strings.TrimSpace(text)}
				depth--
				scope.pop()

			case el.Name.Space == nsXBRLI && el.Name.Local == "instant":
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, wrapIOErr("decoding instant", err)
				}
				c.Instant = strings.TrimSpace(text)
				depth--
				scope.pop()

			case el.Name.Space == nsXBRLI && (el.Name.Local == "startDate" || el.Name.Local == "endDate"):
				return nil, &ConversionError{Detail: "context " + c.ID + " uses a duration period, only instants are supported"}

			case el.Name.Space == nsXBRLI && el.Name.Local == "segment":
				c.HasSegment = true
				if err := dec.Skip(); err != nil {
					return nil, wrapIOErr("skipping segment", err)
				}
				depth--
				scope.pop()

			case el.Name.Space == nsXBRLI && el.Name.Local == "scenario":
				if err := decodeScenario(dec, scope, &c.Scenario); err != nil {
					return nil, err
				}
				depth--
				scope.pop()

			default:
				if err := dec.Skip(); err != nil {
					return nil, wrapIOErr("skipping element inside context", err)
				}
				depth--
				scope.pop()
			}

		case xml.EndElement:
			depth--
			scope.pop()
			if depth < 0 {
				return c, nil
			}
		}
	}
}

func decodeScenario(dec *xml.Decoder, scope *nsScope, s *Scenario) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return wrapIOErr("decoding scenario", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			scope.push(nsBindings(el.Attr))
			depth++
			switch {
			case el.Name.Space == nsXBRLDI && el.Name.Local == "explicitMember":
				dimRaw := attr(el.Attr, "", "dimension")
				dim := resolvePrefixed(scope, dimRaw)
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return wrapIOErr("decoding explicitMember", err)
				}
				member := resolvePrefixed(scope, strings.TrimSpace(text))
				s.Explicit[dim] = member
				depth--
				scope.pop()

			case el.Name.Space == nsXBRLDI && el.Name.Local == "typedMember":
				dimRaw := attr(el.Attr, "", "dimension")
				dim := resolvePrefixed(scope, dimRaw)
				var inner struct {
					Content string `xml:",innerxml"`
				}
				if err := dec.DecodeElement(&inner, &el); err != nil {
					return wrapIOErr("decoding typedMember", err)
				}
				s.Typed[dim] = strings.TrimSpace(inner.Content)
				depth--
				scope.pop()

			default:
				return &ConversionError{Detail: "scenario child " + el.Name.Local + " is not xbrldi:explicitMember or xbrldi:typedMember"}
			}

		case xml.EndElement:
			depth--
			scope.pop()
			if depth < 0 {
				return nil
			}
		}
	}
}

func decodeUnit(dec *xml.Decoder, scope *nsScope, start xml.StartElement) (*Unit, error) {
	u := &Unit{ID: attr(start.Attr, "", "id")}
	var simple []QName
	var numerator, denominator []QName
	isDivide := false

	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, wrapIOErr("decoding unit "+u.ID, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			scope.push(nsBindings(el.Attr))
			depth++
			switch {
			case el.Name.Space == nsXBRLI && el.Name.Local == "measure":
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, wrapIOErr("decoding measure", err)
				}
				m := resolvePrefixed(scope, strings.TrimSpace(text))
				simple = append(simple, m)
				depth--
				scope.pop()

			case el.Name.Space == nsXBRLI && el.Name.Local == "divide":
				isDivide = true

			case el.Name.Space == nsXBRLI && (el.Name.Local == "unitNumerator" || el.Name.Local == "unitDenominator"):
				side := el.Name.Local
				innerDepth := 0
				for {
					t2, err := dec.Token()
					if err != nil {
						return nil, wrapIOErr("decoding "+side, err)
					}
					switch e2 := t2.(type) {
					case xml.StartElement:
						scope.push(nsBindings(e2.Attr))
						innerDepth++
						if e2.Name.Space == nsXBRLI && e2.Name.Local == "measure" {
							var text string
							if err := dec.DecodeElement(&text, &e2); err != nil {
								return nil, wrapIOErr("decoding measure", err)
							}
							m := resolvePrefixed(scope, strings.TrimSpace(text))
							if side == "unitNumerator" {
								numerator = append(numerator, m)
							} else {
								denominator = append(denominator, m)
							}
							innerDepth--
							scope.pop()
						} else {
							if err := dec.Skip(); err != nil {
								return nil, wrapIOErr("skipping element inside "+side, err)
							}
							innerDepth--
							scope.pop()
						}
					case xml.EndElement:
						innerDepth--
						scope.pop()
						if innerDepth < 0 {
							goto doneSide
						}
					}
				}
			doneSide:
				depth--
				scope.pop()

			default:
				if err := dec.Skip(); err != nil {
					return nil, wrapIOErr("skipping element inside unit", err)
				}
				depth--
				scope.pop()
			}

		case xml.EndElement:
			depth--
			scope.pop()
			if depth < 0 {
				if isDivide {
					u.Expr = NewDivideUnit(numerator, denominator)
				} else {
					u.Expr = NewSimpleUnit(simple)
				}
				return u, nil
			}
		}
	}
}

func decodeFilingIndicator(dec *xml.Decoder, start xml.StartElement) (FilingIndicator, error) {
	fi := FilingIndicator{
		ContextID: attr(start.Attr, "", "contextRef"),
		Filed:     true,
	}
	if raw := attr(start.Attr, "", "filed"); raw != "" {
		filed, err := decodeXsdBoolean(raw)
		if err != nil {
			return FilingIndicator{}, &XmlSyntaxError{Msg: "filing indicator has invalid @filed value " + strconv.Quote(raw)}
		}
		fi.Filed = filed
	}
	var text string
	if err := dec.DecodeElement(&text, &start); err != nil {
		return FilingIndicator{}, wrapIOErr("decoding filingIndicator", err)
	}
	fi.TableCode = strings.TrimSpace(text)
	return fi, nil
}

func decodeFact(dec *xml.Decoder, start xml.StartElement, order int) (Fact, error) {
	f := Fact{
		Element:   QName{Space: start.Name.Space, Local: start.Name.Local},
		ContextID: attr(start.Attr, "", "contextRef"),
		UnitID:    attr(start.Attr, "", "unitRef"),
		Order:     order,
	}

	if nilAttr := attr(start.Attr, nsXSI, "nil"); nilAttr != "" {
		isNil, err := decodeXsdBoolean(nilAttr)
		if err == nil && isNil {
			if err := dec.Skip(); err != nil {
				return Fact{}, wrapIOErr("skipping nil fact", err)
			}
			return f, nil
		}
	}

	if raw := attr(start.Attr, "", "decimals"); raw != "" {
		f.HasDecimals = true
		if raw == "INF" {
			f.Decimals = InfDecimals
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return Fact{}, &XmlSyntaxError{Msg: "fact " + f.Element.String() + " has non-integer @decimals " + strconv.Quote(raw)}
			}
			f.Decimals = IntDecimals(n)
		}
	}

	var text string
	if err := dec.DecodeElement(&text, &start); err != nil {
		return Fact{}, wrapIOErr("decoding fact "+f.Element.String(), err)
	}
	f.Value = strings.TrimSpace(text)
	return f, nil
}

// decodeXsdBoolean implements the textual boolean decoding an
// xs:boolean attribute requires for filing-indicator @filed (and reused
// for xsi:nil): {true,1} -> true, {false,0} -> false, anything else is
// a fatal syntax error.
func decodeXsdBoolean(raw string) (bool, error) {
	switch strings.TrimSpace(raw) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("not an xsd:boolean: %q", raw)
	}
}

func attr(attrs []xml.Attr, space, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local && (space == "" || a.Name.Space == space) {
			return a.Value
		}
	}
	return ""
}

// nsBindings extracts the xmlns/xmlns:* declarations carried on a start
// element, as raw Go xml.Attr values (the stdlib decoder surfaces these
// with Name.Space == "xmlns" for prefixed declarations and Name.Local ==
// "xmlns" with empty Name.Space for the default namespace).
func nsBindings(attrs []xml.Attr) map[string]string {
	out := map[string]string{}
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			out[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			out[""] = a.Value
		}
	}
	return out
}

func offsetToLineCol(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func wrapIOErr(detail string, cause error) error {
	return &IOError{Detail: detail, Cause: cause}
}
