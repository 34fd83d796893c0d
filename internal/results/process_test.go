package results

import (
	"context"
	"errors"
	"testing"

	"address-autocomplete/internal/geocode"
	"address-autocomplete/internal/pattern"
)

func pos() *geocode.LatLon { return &geocode.LatLon{Lat: 47.37, Lon: 8.54} }

func TestAddressSortByPostalCodeStable(t *testing.T) {
	rs := []geocode.Result{
		{ID: "a", Address: geocode.Address{PostalCode: "8002"}},
		{ID: "b", Address: geocode.Address{PostalCode: ""}},
		{ID: "c", Address: geocode.Address{PostalCode: "8001"}},
		{ID: "d", Address: geocode.Address{PostalCode: "8001"}},
	}
	out, err := ProcessByIntent(context.Background(), pattern.IntentAddress, "q", rs, nil)
	if err != nil {
		t.Fatal(err)
	}
	gotIDs := []string{out[0].ID, out[1].ID, out[2].ID, out[3].ID}
	wantIDs := []string{"b", "c", "d", "a"} // empty first, ties keep order
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("order = %v, want %v", gotIDs, wantIDs)
		}
	}
}

func TestPostalToCityDedupeAndSort(t *testing.T) {
	rs := []geocode.Result{
		{ID: "a", Address: geocode.Address{Municipality: "Zurich"}},
		{ID: "b", Address: geocode.Address{Municipality: "Adliswil"}},
		{ID: "c", Address: geocode.Address{Municipality: "zurich"}}, // dup, case-insensitive
		{ID: "d", Address: geocode.Address{LocalName: "Kilchberg"}}, // local-name fallback
	}
	out, err := ProcessByIntent(context.Background(), pattern.IntentPostalToCity, "8001", rs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d: %+v", len(out), out)
	}
	if out[0].ID != "b" || out[1].ID != "d" || out[2].ID != "a" {
		t.Errorf("order = %s %s %s", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestPostalCodeSynthesizesFromFetcher(t *testing.T) {
	rs := []geocode.Result{
		{ID: "m1", EntityType: geocode.EntityMunicipality, Position: pos(),
			Address: geocode.Address{Municipality: "Lausanne", CountryCode: "CH", Country: "Switzerland", CountrySubdivision: "VD"}},
	}
	fetch := func(ctx context.Context, municipality, cc string) ([]string, error) {
		if municipality != "Lausanne" || cc != "CH" {
			t.Errorf("fetch called with %q %q", municipality, cc)
		}
		return []string{"1011", "1012"}, nil
	}
	out, err := ProcessByIntent(context.Background(), pattern.IntentPostalCode, "Lausanne", rs, fetch)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].ID == out[1].ID {
		t.Error("synthesized ids must be distinct")
	}
	if out[0].Address.PostalCode != "1011" || out[1].Address.PostalCode != "1012" {
		t.Errorf("codes = %q %q", out[0].Address.PostalCode, out[1].Address.PostalCode)
	}
	if out[0].Address.FreeformAddress != "1011 Lausanne" {
		t.Errorf("display = %q", out[0].Address.FreeformAddress)
	}
	if out[0].Address.CountrySubdivision != "VD" || out[0].Position == nil {
		t.Errorf("parent fields not inherited: %+v", out[0])
	}
}

func TestPostalCodeNoCodesKeepsFiltered(t *testing.T) {
	rs := []geocode.Result{
		{ID: "m1", EntityType: geocode.EntityMunicipality, Position: pos(),
			Address: geocode.Address{Municipality: "Lausanne", CountryCode: "CH"}},
	}
	fetch := func(ctx context.Context, m, cc string) ([]string, error) { return nil, nil }
	out, err := ProcessByIntent(context.Background(), pattern.IntentPostalCode, "Lausanne", rs, fetch)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "m1" {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestPostalCodeFetchErrorPropagates(t *testing.T) {
	rs := []geocode.Result{
		{ID: "m1", Position: pos(), Address: geocode.Address{Municipality: "Lausanne"}},
	}
	boom := errors.New("down")
	fetch := func(ctx context.Context, m, cc string) ([]string, error) { return nil, boom }
	if _, err := ProcessByIntent(context.Background(), pattern.IntentPostalCode, "Lausanne", rs, fetch); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestParentheticalFilterDropsQualifiedDuplicates(t *testing.T) {
	rs := []geocode.Result{
		{ID: "canonical", Address: geocode.Address{Municipality: "Winterthur"}},
		{ID: "district", Address: geocode.Address{Municipality: "Seen (Winterthur)"}},
	}
	out := filterParentheticalMatches("Winterthur", rs)
	if len(out) != 1 || out[0].ID != "canonical" {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestParentheticalFilterKeepsWithoutCanonicalSibling(t *testing.T) {
	rs := []geocode.Result{
		{ID: "district", Address: geocode.Address{Municipality: "Seen (Winterthur)"}},
	}
	out := filterParentheticalMatches("Winterthur", rs)
	if len(out) != 1 {
		t.Fatalf("should keep sole parenthetical match: %+v", out)
	}
}

func TestParentheticalFilterKeepsBaseNameMatches(t *testing.T) {
	rs := []geocode.Result{
		{ID: "a", Address: geocode.Address{Municipality: "Winterthur (ZH)"}},
		{ID: "b", Address: geocode.Address{Municipality: "Winterthur"}},
	}
	out := filterParentheticalMatches("Winterthur", rs)
	if len(out) != 2 {
		t.Fatalf("base-name match must survive: %+v", out)
	}
}
