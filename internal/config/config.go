package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds everything the importer needs from the environment: the
// provider credentials, the target city, the sink endpoint, and the run
// policy (schedule, timeout, retries). Retry counts and backoff intervals are
// deployment configuration on purpose; no defaults are baked into the fetch
// path.
type AppConfig struct {
	AEMETAPIKey   string `validate:"required"`
	AEMETEndpoint string `validate:"required,url"`

	// CityName selects which provider stations are imported.
	CityName string `validate:"required"`

	SinkType        string `validate:"oneof=http stdout"`
	SinkEndpoint    string `validate:"required_if=SinkType http,omitempty,url"`
	SinkMaxRetries  int    `validate:"gte=0"`
	SinkBackoffBase time.Duration

	// ImportSchedule is a five-field cron expression.
	ImportSchedule     string `validate:"required"`
	ImportTimeout      time.Duration
	ImportMaxRetries   int `validate:"gte=0"`
	ImportRetryBackoff time.Duration

	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gte=1"`

	// GeocoderAPIKey enables reverse geocoding of station coordinates when
	// set.
	GeocoderAPIKey string

	// Run history retention.
	RunsMaxHistory int
	RunsMaxAge     time.Duration

	Port string
}

var validate = validator.New()

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		AEMETAPIKey:   os.Getenv("AEMET_API_KEY"),
		AEMETEndpoint: getenvDefault("AEMET_ENDPOINT", "https://opendata.aemet.es/opendata/api/observacion/convencional/todas"),
		CityName:      os.Getenv("CITY_NAME"),

		SinkType:       getenvDefault("SINK_TYPE", "http"),
		SinkEndpoint:   os.Getenv("SINK_ENDPOINT"),
		SinkMaxRetries: getenvInt("SINK_MAX_RETRIES", 3),

		// Every 15 minutes, as the original deployment ran.
		ImportSchedule:   getenvDefault("IMPORT_SCHEDULE", "*/15 * * * *"),
		ImportMaxRetries: getenvInt("IMPORT_MAX_RETRIES", 2),

		RateLimitRPS:   getenvFloat("RATE_LIMIT_RPS", 0.5),
		RateLimitBurst: getenvInt("RATE_LIMIT_BURST", 1),

		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),

		RunsMaxHistory: getenvInt("RUNS_MAX_HISTORY", 96),

		Port: getenvDefault("PORT", "8080"),
	}

	var err error
	if cfg.SinkBackoffBase, err = getenvDuration("SINK_BACKOFF_BASE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.ImportTimeout, err = getenvDuration("IMPORT_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ImportRetryBackoff, err = getenvDuration("IMPORT_RETRY_BACKOFF", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RunsMaxAge, err = getenvDuration("RUNS_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
