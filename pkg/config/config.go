package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config collects every runtime knob. Values come from environment variables
// with defaults suitable for local development; a .env file is honored via
// godotenv autoload.
type Config struct {
	Port string

	// Geocoding provider (one fixed API shape, see internal/geocode)
	GeocoderBaseURL   string
	GeocoderAPIKey    string
	GeocoderTimeout   time.Duration
	SearchLimit       int
	DefaultLanguage   string
	DefaultCountrySet string

	// Host platform web API (user settings lookups)
	HostAPIBaseURL string
	HostAPIKey     string
	HostAPITimeout time.Duration

	// Search behaviour
	DebounceInterval time.Duration
	BlurGracePeriod  time.Duration
	MinSearchChars   int

	// Settings cache
	SettingsCacheTTL  time.Duration
	SettingsCacheSize int

	// Widget sessions exposed over HTTP
	SessionIdleTTL time.Duration

	// Optional YAML file with locale id -> tag overrides, merged over the
	// embedded table.
	LocaleOverridesPath string

	// DesignMode short-circuits host API lookups with fixed mock data, the way
	// a form designer surface previews the widget without network access.
	DesignMode bool

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"
	LogOutput string

	// Metrics & health
	MetricsEnabled bool
	MetricsPath    string
	HealthPath     string
}

// Load reads configuration from the environment.
func Load() *Config {
	searchLimit, _ := strconv.Atoi(getEnv("SEARCH_LIMIT", "10"))
	minChars, _ := strconv.Atoi(getEnv("MIN_SEARCH_CHARS", "2"))
	cacheSize, _ := strconv.Atoi(getEnv("SETTINGS_CACHE_SIZE", "100"))

	debounceMs, _ := strconv.Atoi(getEnv("DEBOUNCE_INTERVAL_MS", "300"))
	blurGraceMs, _ := strconv.Atoi(getEnv("BLUR_GRACE_PERIOD_MS", "300"))

	geocoderTO, _ := time.ParseDuration(getEnv("GEOCODER_TIMEOUT", "10s"))
	hostTO, _ := time.ParseDuration(getEnv("HOST_API_TIMEOUT", "10s"))
	cacheTTL, _ := time.ParseDuration(getEnv("SETTINGS_CACHE_TTL", "5m"))
	sessionTTL, _ := time.ParseDuration(getEnv("SESSION_IDLE_TTL", "30m"))

	designMode, _ := strconv.ParseBool(getEnv("DESIGN_MODE", "false"))
	metricsEnabled, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))

	return &Config{
		Port: getEnv("PORT", "8080"),

		GeocoderBaseURL:   getEnv("GEOCODER_BASE_URL", "https://atlas.microsoft.com"),
		GeocoderAPIKey:    getEnv("GEOCODER_API_KEY", ""),
		GeocoderTimeout:   geocoderTO,
		SearchLimit:       searchLimit,
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "en-US"),
		DefaultCountrySet: getEnv("DEFAULT_COUNTRY_SET", ""),

		HostAPIBaseURL: getEnv("HOST_API_BASE_URL", ""),
		HostAPIKey:     getEnv("HOST_API_KEY", ""),
		HostAPITimeout: hostTO,

		DebounceInterval: time.Duration(debounceMs) * time.Millisecond,
		BlurGracePeriod:  time.Duration(blurGraceMs) * time.Millisecond,
		MinSearchChars:   minChars,

		SettingsCacheTTL:  cacheTTL,
		SettingsCacheSize: cacheSize,

		SessionIdleTTL: sessionTTL,

		LocaleOverridesPath: getEnv("LOCALE_OVERRIDES_PATH", ""),

		DesignMode: designMode,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogOutput: getEnv("LOG_OUTPUT", "stdout"),

		MetricsEnabled: metricsEnabled,
		MetricsPath:    getEnv("METRICS_PATH", "/metrics"),
		HealthPath:     getEnv("HEALTH_PATH", "/health"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
