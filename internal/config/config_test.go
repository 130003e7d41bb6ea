package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinrec")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
	if cfg.ProjectionSweepEvery != 10*time.Minute {
		t.Errorf("expected default sweep interval 10m, got %s", cfg.ProjectionSweepEvery)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidateProductionRequiresJWTSecret(t *testing.T) {
	cfg := &Config{Env: "production", ProjectionSweepEvery: time.Minute}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateDevelopmentAllowsNoSecret(t *testing.T) {
	cfg := &Config{Env: "development", ProjectionSweepEvery: time.Minute}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSweepInterval(t *testing.T) {
	cfg := &Config{Env: "development", ProjectionSweepEvery: 100 * time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sub-second sweep interval")
	}
}
