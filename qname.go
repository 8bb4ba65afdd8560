package xbridge

import "strings"

// QName is a namespace-resolved element or attribute name: the pair the
// XBRL data model actually cares about once parsing is done. The textual
// prefix used in the document is not part of its identity.
type QName struct {
	Space string // namespace URI, empty for unqualified names
	Local string
}

func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return q.Space + ":" + q.Local
}

// IsZero reports whether q is the zero QName.
func (q QName) IsZero() bool {
	return q.Space == "" && q.Local == ""
}

// nsScope is a stack of prefix->URI bindings in effect at a point in the
// document. Frames are pushed on StartElement and popped on EndElement so
// that resolution always reflects the nsmap visible at that scope: a
// QName is (nsmap_at_scope, prefix, local).
type nsScope struct {
	frames []map[string]string
}

func newNsScope() *nsScope {
	// The outermost frame carries the predefined xml prefix.
	return &nsScope{frames: []map[string]string{{
		"xml": "http://www.w3.org/XML/1998/namespace",
	}}}
}

func (s *nsScope) push(bindings map[string]string) {
	frame := make(map[string]string, len(bindings))
	for k, v := range bindings {
		frame[k] = v
	}
	s.frames = append(s.frames, frame)
}

func (s *nsScope) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// resolve looks up prefix (empty string for the default namespace) from
// the innermost frame outward.
func (s *nsScope) resolve(prefix string) (string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if uri, ok := s.frames[i][prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// snapshot returns the flattened prefix->URI map visible at this scope,
// innermost bindings winning. Used to preserve "the full namespace map at
// the root element" and descendant bindings for rules that check for
// redundant declarations.
func (s *nsScope) snapshot() map[string]string {
	out := map[string]string{}
	for _, frame := range s.frames {
		for k, v := range frame {
			out[k] = v
		}
	}
	return out
}

// splitPrefixed splits "prefix:local" into its two parts. A name with no
// colon has an empty prefix (the default namespace applies).
func splitPrefixed(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// resolvePrefixed resolves a raw "prefix:local" token using the nsmap in
// effect at the given scope. Dimension keys are normalised to
// local-name-only elsewhere (the serialised
// taxonomy module drops prefixes); this function keeps the full
// namespace-qualified form for everything else (facts, members).
func resolvePrefixed(scope *nsScope, raw string) QName {
	prefix, local := splitPrefixed(raw)
	uri, _ := scope.resolve(prefix)
	return QName{Space: uri, Local: local}
}
