package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AEMET_API_KEY", "test-key")
	t.Setenv("CITY_NAME", "GRANADA")
	t.Setenv("SINK_ENDPOINT", "https://platform.example/ingest")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ImportSchedule != "*/15 * * * *" {
		t.Errorf("schedule: got %q", cfg.ImportSchedule)
	}
	if cfg.SinkType != "http" {
		t.Errorf("sink type: got %q", cfg.SinkType)
	}
	if cfg.ImportTimeout != 2*time.Minute {
		t.Errorf("import timeout: got %v", cfg.ImportTimeout)
	}
	if cfg.AEMETEndpoint == "" {
		t.Error("aemet endpoint default missing")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AEMET_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestLoadStdoutSinkNeedsNoEndpoint(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SINK_ENDPOINT", "")
	t.Setenv("SINK_TYPE", "stdout")

	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("IMPORT_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("IMPORT_SCHEDULE", "0 * * * *")
	t.Setenv("IMPORT_MAX_RETRIES", "5")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ImportSchedule != "0 * * * *" {
		t.Errorf("schedule: got %q", cfg.ImportSchedule)
	}
	if cfg.ImportMaxRetries != 5 {
		t.Errorf("max retries: got %d", cfg.ImportMaxRetries)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("rate limit rps: got %v", cfg.RateLimitRPS)
	}
}
