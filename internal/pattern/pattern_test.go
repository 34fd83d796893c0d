package pattern

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		prop       string
		wantQuery  string
		wantSet    string
		wantIntent Intent
	}{
		{"country hash", "CH#Zurich", "", "Zurich", "CH", IntentPostalCode},
		{"country hash lowercased", "de#berlin", "", "berlin", "DE", IntentPostalCode},
		{"country hash trims city", "CH#  Basel  ", "", "Basel", "CH", IntentPostalCode},
		{"country hash beats prop", "CH#Zurich", "AT", "Zurich", "CH", IntentPostalCode},
		{"plz prefix", "PLZ: Hamburg", "", "Hamburg", "", IntentPostalCode},
		{"plz prefix case-insensitive", "plz:Bremen", "", "Bremen", "", IntentPostalCode},
		{"plz prefix uses prop", "PLZ: Hamburg", "DE", "Hamburg", "DE", IntentPostalCode},
		{"bare hash", "#Luzern", "", "Luzern", "", IntentPostalCode},
		{"bare hash uses prop", "#Luzern", "CH", "Luzern", "CH", IntentPostalCode},
		{"country digits", "CH,8001", "", "8001", "CH", IntentPostalToCity},
		{"country digits lowercase", "at,1010", "", "1010", "AT", IntentPostalToCity},
		{"country digits spaced", "CH, 8001", "", "8001", "CH", IntentPostalToCity},
		{"prop scopes whole input", "Bahnhofstrasse 1", "CH", "Bahnhofstrasse 1", "CH", IntentAddress},
		{"prop beats country comma", "DE, Hauptstrasse", "CH", "DE, Hauptstrasse", "CH", IntentAddress},
		{"country comma free text", "DE, Hauptstrasse 5", "", "Hauptstrasse 5", "DE", IntentAddress},
		{"three letters no match", "DEU, Hauptstrasse", "", "DEU, Hauptstrasse", "", IntentAddress},
		{"fallback", "Seattle", "", "Seattle", "", IntentAddress},
		{"fallback keeps raw input", "  Seattle  ", "", "  Seattle  ", "", IntentAddress},
		{"empty input", "", "", "", "", IntentAddress},
		{"digits with letters not postal-to-city", "CH,8001a", "", "8001a", "CH", IntentAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input, tt.prop)
			if got.Query != tt.wantQuery || got.CountrySet != tt.wantSet || got.Intent != tt.wantIntent {
				t.Errorf("Parse(%q, %q) = %+v, want {%q %q %s}",
					tt.input, tt.prop, got, tt.wantQuery, tt.wantSet, tt.wantIntent)
			}
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		a := Parse("CH#Zurich", "DE")
		b := Parse("CH#Zurich", "DE")
		if a != b {
			t.Fatalf("parse not deterministic: %+v vs %+v", a, b)
		}
	}
}
