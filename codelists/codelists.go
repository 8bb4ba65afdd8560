// Package codelists provides lookup functions over the static code lists
// the EBA rule families reference: ISO 3166 country codes, ISO 4217
// currency codes, and LEI conventions, backed by simple in-memory maps.
package codelists

import "regexp"

// IsISO3166Alpha2 reports whether code is a recognised ISO 3166-1
// alpha-2 country code, upper-cased.
func IsISO3166Alpha2(code string) bool {
	return iso3166Alpha2[code]
}

// IsISO4217 reports whether code is a recognised ISO 4217 three-letter
// currency code, upper-cased.
func IsISO4217(code string) bool {
	return iso4217[code]
}

var leiPattern = regexp.MustCompile(`^[0-9A-Z]{18}[0-9]{2}$`)

// LooksLikeLEI reports whether s has the shape of a Legal Entity
// Identifier: 20 characters, the first 18 alphanumeric, the last 2
// numeric (ISO 17442). This is a shape check only, not a checksum
// validation.
func LooksLikeLEI(s string) bool {
	return leiPattern.MatchString(s)
}
