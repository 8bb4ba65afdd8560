package validation

import (
	"archive/zip"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/speedata/xbridge/codelists"
)

func init() {
	Register("EBA-NAME-001", "", checkFileNameStructure)
	Register("EBA-NAME-010", "", checkReportSubjectLEI)
	Register("EBA-NAME-011", "", checkReportSubjectLEISuffix)
	Register("EBA-NAME-012", "", checkReportSubjectCountryAggregate)
	Register("EBA-NAME-013", "", checkReportSubjectAuthorityAggregate)
	Register("EBA-NAME-014", "", checkReportSubjectMICA)
	Register("EBA-NAME-020", "", checkCountryCode)
	Register("EBA-NAME-030", "", checkFrameworkVersion)
	Register("EBA-NAME-040", "", checkModuleName)
	Register("EBA-NAME-050", "", checkReferenceDate)
	Register("EBA-NAME-060", "", checkCreationTimestamp)
	Register("EBA-NAME-070", RuleSetCSV, checkInnerXBRLName)
}

const nameComponentCount = 6

var (
	nameDateRE            = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	nameTimestampRE       = regexp.MustCompile(`^\d{17}$`)
	nameFrameworkVersionRE = regexp.MustCompile(`^[A-Z]+\d{6}$`)
)

var leiSubjectSuffixes = []string{".IND", ".CON", ".CRDLIQSUBGRP"}
var countryAggSuffixes = []string{".MEMSTAAGGALL", ".MEMSTAAGGCRDCREINS", ".MEMSTAAGGINVFIR"}

// splitStem splits the validated file's base name (without extension)
// into its underscore-separated naming components.
func splitStem(ctx *Context) (stem string, parts []string, ok bool) {
	base := filepath.Base(ctx.FilePath)
	stem = strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "", nil, false
	}
	return stem, strings.Split(stem, "_"), true
}

func isAggregateSubject(subject string) bool {
	for _, suffix := range countryAggSuffixes {
		if strings.HasSuffix(subject, suffix) {
			return true
		}
	}
	if strings.HasSuffix(subject, ".AUTALL") {
		return true
	}
	return strings.HasSuffix(subject, ".IND") && strings.Contains(subject, "-")
}

func hasConIndModule(moduleComponent string) bool {
	return strings.HasSuffix(moduleComponent, "CON") || strings.HasSuffix(moduleComponent, "IND")
}

func filenameLocation(ctx *Context) string {
	return fmt.Sprintf("filename:%s", filepath.Base(ctx.FilePath))
}

// checkFileNameStructure reports EBA-NAME-001 when the file stem does
// not split into exactly 6 underscore-separated components.
func checkFileNameStructure(ctx *Context) {
	stem, parts, ok := splitStem(ctx)
	if !ok {
		return
	}
	if len(parts) != nameComponentCount {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("expected %d underscore-separated components, found %d: '%s'", nameComponentCount, len(parts), stem),
		})
	}
}

// checkReportSubjectLEI reports EBA-NAME-010 when the ReportSubject of
// an older con/ind submission is not a plain LEI (or LEI.CRDLIQSUBGRP).
func checkReportSubjectLEI(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	subject, module, refDate := parts[0], parts[3], parts[4]

	if !hasConIndModule(module) && !(refDate < "2022-12-31") {
		return // EBA-NAME-011 applies instead
	}
	if isAggregateSubject(subject) {
		return // EBA-NAME-012..014 handle aggregates
	}

	if codelists.LooksLikeLEI(subject) {
		return
	}
	if strings.HasSuffix(subject, ".CRDLIQSUBGRP") {
		leiPart := strings.TrimSuffix(subject, ".CRDLIQSUBGRP")
		if codelists.LooksLikeLEI(leiPart) {
			return
		}
	}

	ctx.AddFinding(filenameLocation(ctx), map[string]string{
		"detail": fmt.Sprintf("ReportSubject '%s' is not a valid LEI (20 alphanumeric chars) or LEI.CRDLIQSUBGRP", subject),
	})
}

// checkReportSubjectLEISuffix reports EBA-NAME-011 when the
// ReportSubject of a newer submission lacks a recognised LEI suffix.
func checkReportSubjectLEISuffix(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	subject, module, refDate := parts[0], parts[3], parts[4]

	if hasConIndModule(module) || refDate < "2022-12-31" {
		return // EBA-NAME-010 applies instead
	}
	if isAggregateSubject(subject) {
		return // EBA-NAME-012..014 handle aggregates
	}

	for _, suffix := range leiSubjectSuffixes {
		if !strings.HasSuffix(subject, suffix) {
			continue
		}
		leiPart := strings.TrimSuffix(subject, suffix)
		if codelists.LooksLikeLEI(leiPart) {
			return
		}
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("ReportSubject '%s': LEI part '%s' is not a valid 20-char alphanumeric identifier", subject, leiPart),
		})
		return
	}

	ctx.AddFinding(filenameLocation(ctx), map[string]string{
		"detail": fmt.Sprintf("ReportSubject '%s' must end with .IND, .CON, or .CRDLIQSUBGRP for module '%s'", subject, module),
	})
}

// checkReportSubjectCountryAggregate reports EBA-NAME-012 when a
// country-aggregate ReportSubject's prefix is not a 2-letter ISO 3166-1
// country code followed by "000".
func checkReportSubjectCountryAggregate(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	subject := parts[0]

	matchedSuffix := ""
	for _, suffix := range countryAggSuffixes {
		if strings.HasSuffix(subject, suffix) {
			matchedSuffix = suffix
			break
		}
	}
	if matchedSuffix == "" {
		return
	}

	prefix := strings.TrimSuffix(subject, matchedSuffix)
	if len(prefix) != 5 || !isAlpha(prefix[:2]) || prefix[2:] != "000" {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("country aggregate ReportSubject '%s': prefix '%s' must be 2-letter country code + '000'", subject, prefix),
		})
		return
	}
	if !codelists.IsISO3166Alpha2(strings.ToUpper(prefix[:2])) {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("country aggregate ReportSubject '%s': '%s' is not a valid ISO 3166-1 alpha-2 code", subject, prefix[:2]),
		})
	}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// checkReportSubjectAuthorityAggregate reports EBA-NAME-013 when an
// authority-aggregate ReportSubject has an empty or non-alphanumeric
// authority code (dots ignored).
func checkReportSubjectAuthorityAggregate(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	subject := parts[0]
	if !strings.HasSuffix(subject, ".AUTALL") {
		return
	}

	authorityCode := strings.TrimSuffix(subject, ".AUTALL")
	cleaned := strings.ReplaceAll(authorityCode, ".", "")
	if cleaned == "" || !isAlnum(cleaned) {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("authority aggregate ReportSubject '%s': authority code must be non-empty", subject),
		})
	}
}

func isAlnum(s string) bool {
	for _, r := range s {
		alpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if !alpha && !digit {
			return false
		}
	}
	return true
}

// checkReportSubjectMICA reports EBA-NAME-014 when a MICA-pattern
// ReportSubject (IssuerID-TokenID.IND) has an empty issuer or token.
func checkReportSubjectMICA(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	subject := parts[0]
	if !strings.HasSuffix(subject, ".IND") || !strings.Contains(subject, "-") {
		return
	}

	base := strings.TrimSuffix(subject, ".IND")
	dashPos := strings.IndexByte(base, '-')
	issuer, token := base[:dashPos], base[dashPos+1:]

	if issuer == "" || token == "" {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("MICA ReportSubject '%s': IssuerID and TokenID must both be non-empty", subject),
		})
	}
}

// checkCountryCode reports EBA-NAME-020 when the Country component is
// not a recognised ISO 3166-1 alpha-2 code.
func checkCountryCode(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	country := parts[1]
	if !codelists.IsISO3166Alpha2(country) {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("'%s' is not a valid ISO 3166-1 alpha-2 country code", country),
		})
	}
}

// checkFrameworkVersion reports EBA-NAME-030 when the framework+version
// component is not an uppercase code followed by a 6-digit version.
func checkFrameworkVersion(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	fwk := parts[2]
	if !nameFrameworkVersionRE.MatchString(fwk) {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("'%s' does not match the expected pattern: uppercase framework code + 6-digit version XXYYZZ", fwk),
		})
	}
}

// checkModuleName reports EBA-NAME-040 when the Module component is
// not uppercase alphanumeric.
func checkModuleName(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	module := parts[3]
	if module != strings.ToUpper(module) || !isAlnum(module) || module == "" {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("module component '%s' must be uppercase alphanumeric (no underscores or special characters)", module),
		})
	}
}

// checkReferenceDate reports EBA-NAME-050 when ReferenceDate is not
// YYYY-MM-DD.
func checkReferenceDate(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	date := parts[4]
	if !nameDateRE.MatchString(date) {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("ReferenceDate '%s' does not match YYYY-MM-DD format", date),
		})
	}
}

// checkCreationTimestamp reports EBA-NAME-060 when CreationTimestamp is
// not 17 digits (YYYYMMDDhhmmssfff).
func checkCreationTimestamp(ctx *Context) {
	_, parts, ok := splitStem(ctx)
	if !ok || len(parts) != nameComponentCount {
		return
	}
	ts := parts[5]
	if !nameTimestampRE.MatchString(ts) {
		ctx.AddFinding(filenameLocation(ctx), map[string]string{
			"detail": fmt.Sprintf("CreationTimestamp '%s' does not match YYYYMMDDhhmmssfff format (17 digits)", ts),
		})
	}
}

// checkInnerXBRLName reports EBA-NAME-070 when a submitted ZIP does not
// contain exactly one top-level .xbrl file matching the ZIP's own name.
func checkInnerXBRLName(ctx *Context) {
	zr, err := zip.OpenReader(ctx.FilePath)
	if err != nil {
		return // ZIP errors handled elsewhere
	}
	defer zr.Close()

	base := filepath.Base(ctx.FilePath)
	zipStem := strings.TrimSuffix(base, filepath.Ext(base))
	expected := zipStem + ".xbrl"

	var xbrlFiles []string
	for _, f := range zr.File {
		lower := strings.ToLower(f.Name)
		if !strings.Contains(f.Name, "/") && (strings.HasSuffix(lower, ".xbrl") || strings.HasSuffix(lower, ".xml")) {
			xbrlFiles = append(xbrlFiles, f.Name)
		}
	}

	location := fmt.Sprintf("zip:%s", base)
	if len(xbrlFiles) != 1 {
		ctx.AddFinding(location, map[string]string{
			"detail": fmt.Sprintf("expected exactly one .xbrl file, found %d", len(xbrlFiles)),
		})
		return
	}
	if xbrlFiles[0] != expected {
		ctx.AddFinding(location, map[string]string{
			"detail": fmt.Sprintf("inner file '%s' does not match expected name '%s'", xbrlFiles[0], expected),
		})
	}
}
