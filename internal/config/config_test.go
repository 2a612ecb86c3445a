package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want :8080", cfg.BindAddr)
	}
	if cfg.MetricsNamespace != "sereno" {
		t.Fatalf("MetricsNamespace = %q, want sereno", cfg.MetricsNamespace)
	}
	if cfg.MaxHistory != 20 {
		t.Fatalf("MaxHistory = %d, want 20", cfg.MaxHistory)
	}
	if cfg.SessionInactivityTimeout != 0 {
		t.Fatalf("SessionInactivityTimeout = %v, want 0", cfg.SessionInactivityTimeout)
	}
	if cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("APP_MAX_HISTORY", "30")
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "2m")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want :9090", cfg.BindAddr)
	}
	if cfg.MaxHistory != 30 {
		t.Fatalf("MaxHistory = %d, want 30", cfg.MaxHistory)
	}
	if cfg.SessionInactivityTimeout != 2*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v, want 2m", cfg.SessionInactivityTimeout)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APP_MAX_HISTORY", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero max history")
	}

	t.Setenv("APP_MAX_HISTORY", "20")
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "1s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for sub-5s inactivity timeout")
	}

	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "maybe")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid bool")
	}
}
