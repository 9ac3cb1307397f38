package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/urbanplatform/onboarding/internal/api/http"
	"github.com/urbanplatform/onboarding/internal/config"
	"github.com/urbanplatform/onboarding/internal/importer"
	"github.com/urbanplatform/onboarding/internal/scheduler"
	"github.com/urbanplatform/onboarding/internal/sink"
	"github.com/urbanplatform/onboarding/internal/store"
	"github.com/urbanplatform/onboarding/internal/weather"
	"github.com/urbanplatform/onboarding/internal/weather/normalize"
	"github.com/urbanplatform/onboarding/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// AEMET provider, rate limited to the API key's quota.
	aemet := providers.NewAEMETProvider(httpClient, cfg.AEMETEndpoint, cfg.AEMETAPIKey)
	var provider weather.Provider = providers.NewRateLimitedProvider(aemet, cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Normalizer for the configured city, with optional address enrichment.
	opts := []normalize.Option{
		normalize.WithCityFilter(cfg.CityName),
		normalize.WithSource(aemet.Endpoint()),
	}
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, normalize.WithGeocoder(normalize.NewGoogleGeocoder(cfg.GeocoderAPIKey)))
	}
	normalizer := normalize.New(normalize.AEMETSchema(), opts...)

	// Ingestion sink.
	snk, err := sink.Build(cfg.SinkType, cfg.SinkEndpoint, cfg.SinkMaxRetries, cfg.SinkBackoffBase)
	if err != nil {
		log.Fatalf("failed to build sink: %v", err)
	}
	defer snk.Close()

	// Run history for the ops endpoints.
	runStore := store.NewMemoryStore(cfg.RunsMaxHistory, cfg.RunsMaxAge)

	// The import task and its schedule.
	imp := importer.New(provider, normalizer, snk, runStore)
	sched := scheduler.New(imp, scheduler.Config{
		CronExpr:     cfg.ImportSchedule,
		RunTimeout:   cfg.ImportTimeout,
		MaxRetries:   cfg.ImportMaxRetries,
		RetryBackoff: cfg.ImportRetryBackoff,
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-importer",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-importer",
		})
	})

	// Ops routes.
	httpapi.RegisterRoutes(app, runStore)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
