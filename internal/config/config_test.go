package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reset")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.PasswordResetTTL != 15*time.Minute {
		t.Fatalf("expected 15m reset ttl, got %s", cfg.PasswordResetTTL)
	}
	if cfg.PasswordResetMaxActive != 2 {
		t.Fatalf("expected max active 2, got %d", cfg.PasswordResetMaxActive)
	}
	if cfg.ResetTokenBackend != "postgres" {
		t.Fatalf("expected postgres backend, got %q", cfg.ResetTokenBackend)
	}
	if cfg.RegisterRedirectPath != "/subscribe" {
		t.Fatalf("expected /subscribe redirect, got %q", cfg.RegisterRedirectPath)
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "*" {
		t.Fatalf("expected wildcard origins, got %v", cfg.AllowOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reset")
	t.Setenv("ALLOW_ORIGINS", " https://a.example , https://b.example,")
	t.Setenv("PASSWORD_RESET_TTL", "5m")
	t.Setenv("STORE_TIMEOUT", "not-a-duration")
	t.Setenv("RESET_TOKEN_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.AllowOrigins)
	}
	if cfg.PasswordResetTTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %s", cfg.PasswordResetTTL)
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Fatalf("expected default store timeout on bad input, got %s", cfg.StoreTimeout)
	}
	if cfg.ResetTokenBackend != "redis" || cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 3 {
		t.Fatalf("unexpected redis settings: %+v", cfg)
	}
}

func TestLoadPanicsWithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing DATABASE_URL")
		}
	}()
	Load()
}
