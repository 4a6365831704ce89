package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadReadsFileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: gala-2026
database:
  dsn: /tmp/gala.sqlite
notify:
  driver: nats
  nats_url: nats://broker:4222
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Name != "gala-2026" {
		t.Fatalf("app.name = %q", cfg.App.Name)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("database.driver = %q, want default sqlite", cfg.Database.Driver)
	}
	if cfg.Raffle.GeneralStock != 999999 {
		t.Fatalf("raffle.general_stock = %d", cfg.Raffle.GeneralStock)
	}
	if cfg.Notify.Subject != "raffle.winner" {
		t.Fatalf("notify.subject = %q", cfg.Notify.Subject)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: /tmp/file.sqlite\n")
	t.Setenv("RAFFLE_DATABASE_DSN", "/tmp/env.sqlite")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "/tmp/env.sqlite" {
		t.Fatalf("database.dsn = %q, want env override", cfg.Database.DSN)
	}
}

func TestLoadRejectsUnknownNotifyDriver(t *testing.T) {
	path := writeConfig(t, "notify:\n  driver: carrier-pigeon\n")

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatalf("Load() expected error for unknown notify driver")
	}
}
