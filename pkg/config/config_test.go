package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DebounceInterval != 300*time.Millisecond {
		t.Errorf("DebounceInterval = %v", cfg.DebounceInterval)
	}
	if cfg.MinSearchChars != 2 {
		t.Errorf("MinSearchChars = %d", cfg.MinSearchChars)
	}
	if cfg.SettingsCacheTTL != 5*time.Minute {
		t.Errorf("SettingsCacheTTL = %v", cfg.SettingsCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEBOUNCE_INTERVAL_MS", "150")
	t.Setenv("DESIGN_MODE", "true")
	t.Setenv("DEFAULT_COUNTRY_SET", "CH")
	cfg := Load()
	if cfg.DebounceInterval != 150*time.Millisecond {
		t.Errorf("DebounceInterval = %v", cfg.DebounceInterval)
	}
	if !cfg.DesignMode {
		t.Error("DesignMode should be true")
	}
	if cfg.DefaultCountrySet != "CH" {
		t.Errorf("DefaultCountrySet = %q", cfg.DefaultCountrySet)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.GeocoderBaseURL = ""
	cfg.SearchLimit = 0
	cfg.LogFormat = "xml"
	errs := cfg.Validate()
	if len(errs) < 3 {
		t.Fatalf("expected at least 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateDesignModeSkipsKey(t *testing.T) {
	cfg := Load()
	cfg.DesignMode = true
	cfg.GeocoderAPIKey = ""
	for _, e := range cfg.Validate() {
		if e.Field == "GEOCODER_API_KEY" {
			t.Error("design mode should not require a geocoder key")
		}
	}
}
