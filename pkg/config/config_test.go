package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("expected default session TTL 30m, got %v", cfg.Session.TTL)
	}
	if cfg.Search.BackendTimeout != 2500*time.Millisecond {
		t.Errorf("expected backend timeout 2.5s, got %v", cfg.Search.BackendTimeout)
	}
	if cfg.Qdrant.Collection != "vehicle_listings" {
		t.Errorf("expected default collection, got %q", cfg.Qdrant.Collection)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Session.TTL != 10*time.Minute {
		t.Errorf("expected TTL 10m, got %v", cfg.Session.TTL)
	}
	if !cfg.OTEL.Enabled {
		t.Error("expected OTEL enabled")
	}
}

func TestRedisAddr(t *testing.T) {
	c := RedisConfig{Host: "redis", Port: 6380}
	if c.RedisAddr() != "redis:6380" {
		t.Errorf("unexpected addr %q", c.RedisAddr())
	}
}
