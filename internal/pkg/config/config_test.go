package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadContext_Defaults(t *testing.T) {
	cfg, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port: want 8080, got %q", cfg.Port)
	}
	if cfg.Session.Store != BackendRedis {
		t.Errorf("Session.Store: want %q, got %q", BackendRedis, cfg.Session.Store)
	}
	if cfg.Session.CookieName != "erp_session" {
		t.Errorf("CookieName: want erp_session, got %q", cfg.Session.CookieName)
	}
	if cfg.Notifications.Interval != 5*time.Minute {
		t.Errorf("Interval: want 5m, got %v", cfg.Notifications.Interval)
	}
	if cfg.Notifications.PendingOrderThreshold != 5 {
		t.Errorf("PendingOrderThreshold: want 5, got %d", cfg.Notifications.PendingOrderThreshold)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("Backend.Timeout: want 15s, got %v", cfg.Backend.Timeout)
	}
}

func TestLoadContext_Overrides(t *testing.T) {
	cfg, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_BACKEND":       "sqlite",
		"SQLITE_PATH":           "/tmp/sessions.db",
		"BACKEND_URL":           "http://erp.internal:9000",
		"NOTIFICATION_INTERVAL": "30s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Session.Store != BackendSQLite || cfg.SQLite.Path != "/tmp/sessions.db" {
		t.Errorf("unexpected session config: %+v %+v", cfg.Session, cfg.SQLite)
	}
	if cfg.Backend.URL != "http://erp.internal:9000" {
		t.Errorf("Backend.URL: got %q", cfg.Backend.URL)
	}
	if cfg.Notifications.Interval != 30*time.Second {
		t.Errorf("Interval: want 30s, got %v", cfg.Notifications.Interval)
	}
}

func TestLoadContext_RejectsUnknownSessionBackend(t *testing.T) {
	_, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_BACKEND": "etcd",
	}))
	if err == nil {
		t.Fatal("expected error for unsupported session backend")
	}
}
