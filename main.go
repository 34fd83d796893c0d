package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/gorilla/mux"

	"address-autocomplete/internal/geocode"
	"address-autocomplete/internal/locale"
	"address-autocomplete/internal/search"
	"address-autocomplete/internal/settings"
	"address-autocomplete/internal/web"
	"address-autocomplete/pkg/cache"
	"address-autocomplete/pkg/config"
	"address-autocomplete/pkg/container"
	"address-autocomplete/pkg/events"
	"address-autocomplete/pkg/health"
	"address-autocomplete/pkg/logging"
	"address-autocomplete/pkg/metrics"
)

func main() {
	c := container.New()

	// Configuration
	_ = c.Provide(func() *config.Config { return config.Load() }, true)

	// Ambient infrastructure
	_ = c.Provide(func(cfg *config.Config) (*logging.Logger, error) {
		return logging.New(logging.Config{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: cfg.LogFormat,
			Output: cfg.LogOutput,
		})
	}, true)
	_ = c.Provide(func() *metrics.Registry { return metrics.NewRegistry() }, true)
	_ = c.Provide(func() *events.Bus { return events.NewBus() }, true)

	// Geocoding provider
	_ = c.Provide(func(cfg *config.Config, logger *logging.Logger) geocode.Client {
		return geocode.NewHTTPClient(cfg.GeocoderBaseURL, cfg.GeocoderAPIKey, cfg.GeocoderTimeout, logger)
	}, true)

	// Locale table with optional overrides file
	_ = c.Provide(func(cfg *config.Config) (*locale.Table, error) {
		tbl, err := locale.NewTable()
		if err != nil {
			return nil, err
		}
		if cfg.LocaleOverridesPath != "" {
			if err := tbl.ApplyOverridesFile(cfg.LocaleOverridesPath); err != nil {
				return nil, err
			}
		}
		return tbl, nil
	}, true)

	// User settings: host API client + TTL cache + de-duplicated service
	_ = c.Provide(func(cfg *config.Config) settings.HostClient {
		return settings.NewHTTPHostClient(cfg.HostAPIBaseURL, cfg.HostAPIKey, cfg.HostAPITimeout)
	}, true)
	_ = c.Provide(func(cfg *config.Config) *cache.Cache[string, settings.Settings] {
		return cache.New[string, settings.Settings](cfg.SettingsCacheSize, cfg.SettingsCacheTTL)
	}, true)
	_ = c.Provide(func(client settings.HostClient, sc *cache.Cache[string, settings.Settings], tbl *locale.Table, cfg *config.Config, logger *logging.Logger, reg *metrics.Registry) *settings.Service {
		return settings.NewService(client, sc, tbl, cfg.DesignMode, logger, reg)
	}, true)

	// Widget sessions
	_ = c.Provide(func(cfg *config.Config, logger *logging.Logger, reg *metrics.Registry) *web.Registry {
		return web.NewRegistry(cfg.SessionIdleTTL, logger, reg)
	}, true)

	// Resolve config early for validation and logger setup
	var cfg *config.Config
	if err := c.Resolve(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		log.Fatalf("Invalid configuration:\n%s", config.ValidationSummary(errs))
	}

	var logger *logging.Logger
	if err := c.Resolve(&logger); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer func() {
		_ = logger.Close()
	}()

	var reg *metrics.Registry
	var bus *events.Bus
	var client geocode.Client
	var svc *settings.Service
	var registry *web.Registry
	if err := c.Resolve(&reg); err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	if err := c.Resolve(&bus); err != nil {
		log.Fatalf("Failed to initialize event bus: %v", err)
	}
	if err := c.Resolve(&client); err != nil {
		log.Fatalf("Failed to initialize geocoder client: %v", err)
	}
	if err := c.Resolve(&svc); err != nil {
		log.Fatalf("Failed to initialize settings service: %v", err)
	}
	if err := c.Resolve(&registry); err != nil {
		log.Fatalf("Failed to initialize session registry: %v", err)
	}

	// Event audit trail at debug level
	eventLog := logger.WithComponent("events")
	bus.Subscribe(func(e events.Event) {
		data, err := e.MarshalData()
		if err != nil {
			return
		}
		eventLog.Debug(e.Type(), logging.Session(e.SessionID()), logging.String("data", string(data)))
	})

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := search.Options{
		MinChars:   cfg.MinSearchChars,
		Debounce:   cfg.DebounceInterval,
		BlurGrace:  cfg.BlurGracePeriod,
		Limit:      cfg.SearchLimit,
		Language:   cfg.DefaultLanguage,
		CountrySet: cfg.DefaultCountrySet,
	}
	api := web.NewServer(rootCtx, registry, client, svc, opts, bus, logger, reg)

	registry.StartJanitor(time.Minute)
	defer registry.Stop()

	// Health checks: the settings cache is always live; the geocoder check
	// only reports configuration, it never spends quota on probes.
	healthMgr := health.NewManager(5 * time.Second)
	healthMgr.Register(health.CheckFunc{
		ComponentName: "geocoder",
		Fn: func(ctx context.Context) health.ComponentHealth {
			if cfg.GeocoderAPIKey == "" {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: "no API key configured"}
			}
			return health.ComponentHealth{Status: health.StatusHealthy}
		},
	})
	healthMgr.Register(health.CheckFunc{
		ComponentName: "sessions",
		Fn: func(ctx context.Context) health.ComponentHealth {
			return health.ComponentHealth{Status: health.StatusHealthy}
		},
	})

	router := mux.NewRouter()
	api.Routes(router)
	router.Handle(cfg.HealthPath, healthMgr.Handler()).Methods("GET")
	if cfg.MetricsEnabled {
		router.Handle(cfg.MetricsPath, reg.Handler()).Methods("GET")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", err)
		}
	}()

	logger.Info("server listening",
		logging.String("addr", server.Addr),
		logging.Bool("design_mode", cfg.DesignMode),
		logging.String("geocoder", cfg.GeocoderBaseURL))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
