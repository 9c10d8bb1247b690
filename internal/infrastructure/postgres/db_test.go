package postgres

import (
	"context"
	"testing"
	"time"
)

func TestNewPoolWithConfigInvalidURL(t *testing.T) {
	ctx := context.Background()

	if _, err := NewPoolWithConfig(ctx, PoolConfig{DatabaseURL: "not-a-url"}); err == nil {
		t.Fatalf("expected error when parsing invalid URL")
	}
}

func TestNewPoolWithConfigPingFailure(t *testing.T) {
	ctx := context.Background()
	cfg := PoolConfig{
		DatabaseURL: "postgres://invalid:5432/db",
		MaxConns:    1,
		MinConns:    0,
		PingTimeout: time.Second,
	}

	_, err := NewPoolWithConfig(ctx, cfg)
	if err == nil {
		t.Fatalf("expected error when pool cannot connect")
	}
}
