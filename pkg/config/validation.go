package config

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid configuration value.
type FieldError struct {
	Field   string
	Value   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("config validation error for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// Validate collects every problem instead of stopping at the first one, so a
// misconfigured deployment reports all issues in one go.
func (c *Config) Validate() []FieldError {
	var errs []FieldError
	add := func(field, value, msg string) {
		errs = append(errs, FieldError{Field: field, Value: value, Message: msg})
	}

	if c.GeocoderBaseURL == "" {
		add("GEOCODER_BASE_URL", "", "must not be empty")
	}
	if !c.DesignMode && c.GeocoderAPIKey == "" {
		add("GEOCODER_API_KEY", "", "required outside design mode")
	}
	if c.SearchLimit <= 0 || c.SearchLimit > 100 {
		add("SEARCH_LIMIT", fmt.Sprint(c.SearchLimit), "must be in 1..100")
	}
	if c.MinSearchChars < 0 {
		add("MIN_SEARCH_CHARS", fmt.Sprint(c.MinSearchChars), "must not be negative")
	}
	if c.DebounceInterval <= 0 {
		add("DEBOUNCE_INTERVAL_MS", c.DebounceInterval.String(), "must be positive")
	}
	if c.SettingsCacheSize <= 0 {
		add("SETTINGS_CACHE_SIZE", fmt.Sprint(c.SettingsCacheSize), "must be positive")
	}
	if c.SettingsCacheTTL <= 0 {
		add("SETTINGS_CACHE_TTL", c.SettingsCacheTTL.String(), "must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		add("LOG_FORMAT", c.LogFormat, `must be "json" or "text"`)
	}
	if c.MetricsEnabled && !strings.HasPrefix(c.MetricsPath, "/") {
		add("METRICS_PATH", c.MetricsPath, "must start with /")
	}
	return errs
}

// ValidationSummary renders the collected errors for a fatal startup log.
func ValidationSummary(errs []FieldError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}
