package geocode

import (
	"strings"

	"address-autocomplete/internal/pattern"
)

// BuildQuery shapes the classified query for the provider call. Address
// queries without any digit get a "1 " prefix, which biases the fuzzy search
// toward street-level point addresses instead of pure locality matches.
// Postal-code intents pass through untouched: there the digits usually are
// the postal code being searched, or the query already names a place.
func BuildQuery(q string, intent pattern.Intent) string {
	if intent != pattern.IntentAddress {
		return q
	}
	if strings.ContainsAny(q, "0123456789") {
		return q
	}
	return "1 " + q
}
