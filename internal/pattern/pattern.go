// Package pattern classifies raw search-box input into a normalized query,
// an optional country filter and a search intent. Parsing is pure and total:
// any input produces a result, never an error.
package pattern

import (
	"regexp"
	"strings"
)

// Intent selects both the geocoder call shape and the result post-processing.
type Intent string

const (
	IntentAddress      Intent = "address"
	IntentPostalCode   Intent = "postalcode"
	IntentPostalToCity Intent = "postalcode-to-city"
)

// Pattern is the classification of one input value. Immutable; consumed
// immediately by the query builder.
type Pattern struct {
	Query      string
	CountrySet string // empty means no country filter
	Intent     Intent
}

var (
	countryHashRe  = regexp.MustCompile(`^([A-Za-z]{2})#(.*)$`)
	plzPrefixRe    = regexp.MustCompile(`(?i)^(?:plz:|#)(.*)$`)
	countryDigitRe = regexp.MustCompile(`^([A-Za-z]{2}),\s*(\d+)\s*$`)
	countryFreeRe  = regexp.MustCompile(`^([A-Za-z]{2}),(.+)$`)
)

// Parse applies the shorthand grammar in precedence order, first match wins.
// Explicit in-text country prefixes beat the configured countrySetProp so a
// power user can override scope per-search; rule 4 keeps the pre-scoped
// default for everyone else.
func Parse(input, countrySetProp string) Pattern {
	// 1. CC#city — postal-code search scoped to an explicit country.
	if m := countryHashRe.FindStringSubmatch(input); m != nil {
		return Pattern{
			Query:      strings.TrimSpace(m[2]),
			CountrySet: strings.ToUpper(m[1]),
			Intent:     IntentPostalCode,
		}
	}

	// 2. "PLZ: city" or "#city" — postal-code search; the country filter, if
	// any, comes from the configured prop, never from the text.
	if m := plzPrefixRe.FindStringSubmatch(input); m != nil {
		return Pattern{
			Query:      strings.TrimSpace(m[1]),
			CountrySet: countrySetProp,
			Intent:     IntentPostalCode,
		}
	}

	// 3. CC,<digits> — look up the cities behind a postal code.
	if m := countryDigitRe.FindStringSubmatch(input); m != nil {
		return Pattern{
			Query:      m[2],
			CountrySet: strings.ToUpper(m[1]),
			Intent:     IntentPostalToCity,
		}
	}

	// 4. Pre-scoped widget: the whole input is the query, verbatim prop.
	if strings.TrimSpace(countrySetProp) != "" {
		return Pattern{
			Query:      input,
			CountrySet: countrySetProp,
			Intent:     IntentAddress,
		}
	}

	// 5. CC, free text — address search scoped to a country.
	if m := countryFreeRe.FindStringSubmatch(input); m != nil {
		return Pattern{
			Query:      strings.TrimSpace(m[2]),
			CountrySet: strings.ToUpper(m[1]),
			Intent:     IntentAddress,
		}
	}

	// 6. Plain address search.
	return Pattern{Query: input, Intent: IntentAddress}
}
