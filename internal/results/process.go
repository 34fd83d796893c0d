package results

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"address-autocomplete/internal/geocode"
	"address-autocomplete/internal/pattern"
)

// PostalCodeFetcher retrieves all postal codes of a municipality. Injected so
// the processing stays testable without a live geocoder.
type PostalCodeFetcher func(ctx context.Context, municipality, countryCode string) ([]string, error)

// synthIDPrefix keeps synthesized ids collision-free across distinct postal
// codes of the same municipality.
const synthIDPrefix = "postal-code"

// ProcessByIntent applies the intent-specific ranking strategy. Address and
// postal-to-city processing are pure; postal-code processing may call the
// fetcher once.
func ProcessByIntent(ctx context.Context, intent pattern.Intent, query string, rs []geocode.Result, fetch PostalCodeFetcher) ([]geocode.Result, error) {
	switch intent {
	case pattern.IntentPostalToCity:
		return dedupeCities(rs), nil
	case pattern.IntentPostalCode:
		return expandMunicipalities(ctx, query, rs, fetch)
	default:
		return sortByPostalCode(rs), nil
	}
}

// sortByPostalCode orders address results ascending by postal code via plain
// string comparison; empty codes sort first, ties keep their original order.
func sortByPostalCode(rs []geocode.Result) []geocode.Result {
	out := make([]geocode.Result, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Address.PostalCode < out[j].Address.PostalCode
	})
	return out
}

// dedupeCities keeps the first occurrence per resolved city name, then sorts
// alphabetically by that name.
func dedupeCities(rs []geocode.Result) []geocode.Result {
	seen := make(map[string]bool)
	var out []geocode.Result
	for _, r := range rs {
		name := cityName(r)
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return cityName(out[i]) < cityName(out[j])
	})
	return out
}

// expandMunicipalities filters disambiguation-suffix matches, then replaces
// the first municipality carrying a position with one synthesized suggestion
// per postal code of that municipality. No postal codes means the filtered
// municipality list stands.
func expandMunicipalities(ctx context.Context, query string, rs []geocode.Result, fetch PostalCodeFetcher) ([]geocode.Result, error) {
	filtered := filterParentheticalMatches(query, rs)
	if fetch == nil {
		return filtered, nil
	}
	for _, r := range filtered {
		if r.Position == nil || r.Address.Municipality == "" {
			continue
		}
		codes, err := fetch(ctx, r.Address.Municipality, r.Address.CountryCode)
		if err != nil {
			return nil, err
		}
		if len(codes) == 0 {
			return filtered, nil
		}
		return SynthesizePostalCodes(r, codes), nil
	}
	return filtered, nil
}

// SynthesizePostalCodes builds one suggestion per postal code, inheriting the
// parent municipality's region, country and position fields.
func SynthesizePostalCodes(parent geocode.Result, codes []string) []geocode.Result {
	out := make([]geocode.Result, 0, len(codes))
	for _, code := range codes {
		out = append(out, geocode.Result{
			ID:         synthIDPrefix + "-" + code,
			Type:       parent.Type,
			EntityType: geocode.EntityPostalCodeArea,
			Address: geocode.Address{
				FreeformAddress:             code + " " + parent.Address.Municipality,
				Municipality:                parent.Address.Municipality,
				CountrySecondarySubdivision: parent.Address.CountrySecondarySubdivision,
				CountrySubdivision:          parent.Address.CountrySubdivision,
				PostalCode:                  code,
				Country:                     parent.Address.Country,
				CountryCode:                 parent.Address.CountryCode,
				CountryCodeISO3:             parent.Address.CountryCodeISO3,
			},
			Position: parent.Position,
		})
	}
	return out
}

var parentheticalRe = regexp.MustCompile(`\(([^)]*)\)`)

// filterParentheticalMatches drops municipalities that match the query only
// through a parenthetical disambiguation suffix, e.g. "District X (City Y)"
// for the query "City Y", when a sibling result carries the canonical name.
func filterParentheticalMatches(query string, rs []geocode.Result) []geocode.Result {
	out := make([]geocode.Result, 0, len(rs))
	for _, r := range rs {
		if matchesOnlyParenthetically(query, r) && hasCanonicalSibling(query, r, rs) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesOnlyParenthetically(query string, r geocode.Result) bool {
	name := cityName(r)
	m := parentheticalRe.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	base := strings.TrimSpace(parentheticalRe.ReplaceAllString(name, ""))
	return overlaps(query, m[1]) && !overlaps(query, base)
}

func hasCanonicalSibling(query string, self geocode.Result, rs []geocode.Result) bool {
	for _, s := range rs {
		if s.ID == self.ID {
			continue
		}
		base := strings.TrimSpace(parentheticalRe.ReplaceAllString(cityName(s), ""))
		if overlaps(query, base) {
			return true
		}
	}
	return false
}

// overlaps reports a case-insensitive substring match in either direction.
func overlaps(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// cityName resolves the display city of a result: municipality, with the
// provider's local name as fallback.
func cityName(r geocode.Result) string {
	if r.Address.Municipality != "" {
		return r.Address.Municipality
	}
	return r.Address.LocalName
}
