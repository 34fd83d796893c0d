package results

import (
	"testing"

	"address-autocomplete/internal/geocode"
)

func TestNormalizeFillsFromExtendedCode(t *testing.T) {
	rs := Normalize([]geocode.Result{
		{ID: "a", Address: geocode.Address{ExtendedPostalCode: "8001, 8002, 8003"}},
	})
	if rs[0].Address.PostalCode != "8001" {
		t.Errorf("postal code = %q", rs[0].Address.PostalCode)
	}
}

func TestNormalizeFillsFromDisplayDigits(t *testing.T) {
	rs := Normalize([]geocode.Result{
		{ID: "a", EntityType: geocode.EntityPostalCodeArea, Address: geocode.Address{FreeformAddress: "8001 Zurich"}},
	})
	if rs[0].Address.PostalCode != "8001" {
		t.Errorf("postal code = %q", rs[0].Address.PostalCode)
	}
}

func TestNormalizeSkipsNonPostalEntities(t *testing.T) {
	rs := Normalize([]geocode.Result{
		{ID: "a", EntityType: geocode.EntityMunicipality, Address: geocode.Address{FreeformAddress: "8001 Zurich"}},
	})
	if rs[0].Address.PostalCode != "" {
		t.Errorf("postal code should stay empty, got %q", rs[0].Address.PostalCode)
	}
}

func TestNormalizeKeepsExistingCode(t *testing.T) {
	rs := Normalize([]geocode.Result{
		{ID: "a", Address: geocode.Address{PostalCode: "9999", ExtendedPostalCode: "8001"}},
	})
	if rs[0].Address.PostalCode != "9999" {
		t.Errorf("postal code = %q", rs[0].Address.PostalCode)
	}
}

func TestNormalizeUnderivableStaysEmpty(t *testing.T) {
	rs := Normalize([]geocode.Result{{ID: "a", Address: geocode.Address{FreeformAddress: "Zurich"}}})
	if rs[0].Address.PostalCode != "" {
		t.Errorf("postal code = %q", rs[0].Address.PostalCode)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := []geocode.Result{
		{ID: "a", Address: geocode.Address{ExtendedPostalCode: "8001, 8002"}},
		{ID: "b", EntityType: geocode.EntityPostalCodeArea, Address: geocode.Address{FreeformAddress: "1011 Lausanne"}},
		{ID: "c"},
	}
	once := Normalize(in)
	twice := Normalize(once)
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("not idempotent at %d: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := []geocode.Result{{ID: "a", Address: geocode.Address{ExtendedPostalCode: "8001"}}}
	_ = Normalize(in)
	if in[0].Address.PostalCode != "" {
		t.Error("input slice was mutated")
	}
}
