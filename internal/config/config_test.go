package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL",
		"SESSION_SECRET", "TOKEN_ENCRYPTION_KEY", "DATABASE_URL", "REDIS_URL",
		"ENV", "PORT", "LOG_LEVEL", "LOG_FORMAT", "PURGE_SCHEDULE", "SEED_DEV_DATA",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
	if cfg.PurgeSchedule != "@hourly" {
		t.Errorf("PurgeSchedule = %q, want @hourly", cfg.PurgeSchedule)
	}
	if cfg.SessionSecret == "" {
		t.Error("expected fallback session secret")
	}
	if cfg.SeedDevData {
		t.Error("SeedDevData should default to false")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://localhost/rivergauge")
	t.Setenv("SEED_DEV_DATA", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %q, want production", cfg.Env)
	}
	if cfg.SessionSecret != "s3cret" {
		t.Errorf("SessionSecret = %q, want s3cret", cfg.SessionSecret)
	}
	if cfg.DatabaseURL != "postgres://localhost/rivergauge" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if !cfg.SeedDevData {
		t.Error("SeedDevData should be true")
	}
}
