package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Timer.Interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", cfg.Timer.Interval, DefaultInterval)
	}
	if cfg.Timer.Tick != time.Second {
		t.Fatalf("tick = %v, want 1s", cfg.Timer.Tick)
	}
	if !cfg.Notifications.Enabled {
		t.Fatalf("notifications should default to enabled")
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
timezone: UTC
timer:
  interval: 5m
  tick: 2s
notifications:
  enabled: false
  sound: true
database:
  path: /tmp/elsewhere.db
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Timer.Interval != 5*time.Minute {
		t.Fatalf("interval = %v", cfg.Timer.Interval)
	}
	if cfg.Timer.Tick != 2*time.Second {
		t.Fatalf("tick = %v", cfg.Timer.Tick)
	}
	if cfg.Notifications.Enabled || !cfg.Notifications.Sound {
		t.Fatalf("notifications = %+v", cfg.Notifications)
	}
	if p, _ := cfg.DatabasePath(); p != "/tmp/elsewhere.db" {
		t.Fatalf("db path = %q", p)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("location = %v", cfg.Location())
	}
}

func TestLoadFileClampsBadDurations(t *testing.T) {
	path := writeConfig(t, `
timer:
  interval: 0s
  tick: 1h
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Timer.Interval != DefaultInterval {
		t.Fatalf("interval = %v, want default", cfg.Timer.Interval)
	}
	if cfg.Timer.Tick != time.Second {
		t.Fatalf("tick = %v, want 1s", cfg.Timer.Tick)
	}
}

func TestLoadFileEnvOverride(t *testing.T) {
	t.Setenv("CHECKIN_TIMER_INTERVAL", "2m")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Timer.Interval != 2*time.Minute {
		t.Fatalf("interval = %v, want 2m", cfg.Timer.Interval)
	}
}

func TestLocationFallsBackToLocal(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "Not/AZone"
	if cfg.Location() != time.Local {
		t.Fatalf("expected time.Local for invalid zone")
	}
}
