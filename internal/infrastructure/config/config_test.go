package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/iho/gobalance/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected default retry attempts 3, got %d", cfg.RetryMaxAttempts)
	}

	if cfg.DefaultStrategy != "lock" || cfg.DefaultGuard != "probe" {
		t.Fatalf("expected lock/probe defaults, got %s/%s", cfg.DefaultStrategy, cfg.DefaultGuard)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_BASE_DELAY", "200ms")
	t.Setenv("LOCK_TIMEOUT", "500ms")
	t.Setenv("DEFAULT_STRATEGY", "optimistic")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.RetryMaxAttempts != 5 || cfg.RetryBaseDelay != 200*time.Millisecond {
		t.Fatalf("expected retry overrides, got attempts=%d base=%s", cfg.RetryMaxAttempts, cfg.RetryBaseDelay)
	}

	if cfg.LockTimeout != 500*time.Millisecond {
		t.Fatalf("expected lock timeout override, got %s", cfg.LockTimeout)
	}

	if cfg.DefaultStrategy != "optimistic" {
		t.Fatalf("expected strategy override, got %s", cfg.DefaultStrategy)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
