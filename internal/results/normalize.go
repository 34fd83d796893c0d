// Package results post-processes raw geocoder results: postal-code
// back-filling, per-intent filtering and ordering, and synthesis of
// per-postal-code suggestions for municipality picks.
package results

import (
	"strings"

	"address-autocomplete/internal/geocode"
)

// Normalize back-fills missing postal codes. For each result without a direct
// postal code it tries, in order: the first comma-separated token of the
// extended postal code field, then, for postal-code areas, the 4-6 leading
// digits of the display text. Results with no derivable code keep the field
// empty; that is not an error. Pure and idempotent.
func Normalize(rs []geocode.Result) []geocode.Result {
	out := make([]geocode.Result, len(rs))
	copy(out, rs)
	for i := range out {
		if out[i].Address.PostalCode != "" {
			continue
		}
		if ext := out[i].Address.ExtendedPostalCode; ext != "" {
			first, _, _ := strings.Cut(ext, ",")
			if first = strings.TrimSpace(first); first != "" {
				out[i].Address.PostalCode = first
				continue
			}
		}
		if out[i].EntityType == geocode.EntityPostalCodeArea {
			if code := leadingPostalDigits(out[i].Address.FreeformAddress); code != "" {
				out[i].Address.PostalCode = code
			}
		}
	}
	return out
}

func leadingPostalDigits(s string) string {
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
