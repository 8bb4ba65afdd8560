package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

func init() {
	Register("EBA-ENTITY-001", RuleSetXML, checkEntityScheme)
	Register("EBA-ENTITY-002", RuleSetXML, checkEntityValue)
}

const leiScheme = "http://standards.iso.org/iso/17442"

var acceptedEntitySchemes = map[string]bool{
	leiScheme:                       true,
	"https://eurofiling.info/eu/rs": true,
}

var leiBaseRE = regexp.MustCompile(`^[A-Z0-9]{20}$`)

var leiSuffixes = map[string]bool{"CON": true, "IND": true, "CRDLIQSUBGRP": true}

// firstIdentifier returns the (scheme, value) of the first context's
// entity identifier in document order, or ok=false if there is none.
func firstIdentifier(ctx *Context) (scheme, value string, ok bool) {
	for _, id := range ctx.Scans.Document.ContextOrder {
		info, found := ctx.Scans.Contexts[id]
		if !found {
			continue
		}
		return info.EntityScheme, strings.TrimSpace(info.EntityValue), true
	}
	return "", "", false
}

// checkEntityScheme reports EBA-ENTITY-001 when the entity identifier's
// @scheme is not an accepted reporting scheme.
func checkEntityScheme(ctx *Context) {
	scheme, _, ok := firstIdentifier(ctx)
	if !ok {
		return
	}
	if !acceptedEntitySchemes[scheme] {
		ctx.AddFinding("entity:identifier", map[string]string{
			"detail": fmt.Sprintf("scheme '%s' is not accepted; expected '%s' (LEI) or 'https://eurofiling.info/eu/rs' (qualified)", scheme, leiScheme),
		})
	}
}

// checkEntityValue reports EBA-ENTITY-002 when the entity identifier
// value does not follow reporting conventions (LEI shape, known
// suffix).
func checkEntityValue(ctx *Context) {
	scheme, value, ok := firstIdentifier(ctx)
	if !ok {
		return
	}
	if value == "" {
		ctx.AddFinding("entity:identifier", map[string]string{"detail": "entity identifier value is empty"})
		return
	}
	if scheme != leiScheme {
		return
	}
	checkLEIValue(ctx, value)
}

func checkLEIValue(ctx *Context, value string) {
	base, suffix, hasSuffix := value, "", false
	if dot := strings.IndexByte(value, '.'); dot >= 0 {
		base, suffix, hasSuffix = value[:dot], value[dot+1:], true
	}

	if !leiBaseRE.MatchString(base) {
		ctx.AddFinding("entity:identifier", map[string]string{
			"detail": fmt.Sprintf("LEI base '%s' is not valid; expected exactly 20 alphanumeric characters (A-Z, 0-9)", base),
		})
		return
	}

	if hasSuffix && !leiSuffixes[suffix] {
		var accepted []string
		for s := range leiSuffixes {
			accepted = append(accepted, "."+s)
		}
		sort.Strings(accepted)
		ctx.AddFinding("entity:identifier", map[string]string{
			"detail": fmt.Sprintf("LEI suffix '.%s' is not recognised; accepted suffixes: %s", suffix, strings.Join(accepted, ", ")),
		})
	}
}
