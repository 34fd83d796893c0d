package geocode

import (
	"context"
	"sort"
	"strings"
)

// postalCodeLimit caps the auxiliary lookup; municipalities rarely carry
// more postal codes than this.
const postalCodeLimit = 100

// PostalCodesFor looks up all postal codes of a municipality through the
// same search capability, restricted to postal-code-area entities. Codes come
// back de-duplicated and sorted.
func PostalCodesFor(ctx context.Context, c Client, municipality, countryCode, language string) ([]string, error) {
	rs, err := c.Search(ctx, Request{
		Query:               municipality,
		Language:            language,
		CountrySet:          countryCode,
		Limit:               postalCodeLimit,
		EntityType:          EntityPostalCodeArea,
		ExtendedPostalCodes: true,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var codes []string
	for _, r := range rs {
		code := r.Address.PostalCode
		if code == "" {
			code = leadingDigits(r.Address.FreeformAddress)
		}
		if code == "" || seen[code] {
			continue
		}
		// Postal-code areas of neighbouring towns can slip into the match set;
		// keep only those tagged with the municipality we asked about.
		if r.Address.Municipality != "" && !strings.EqualFold(r.Address.Municipality, municipality) {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func leadingDigits(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end < 4 || end > 6 {
		return ""
	}
	return s[:end]
}
