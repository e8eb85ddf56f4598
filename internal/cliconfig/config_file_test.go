package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndApplyFileConfig(t *testing.T) {
	path := writeConfigFile(t, `
port = "/dev/ttyAMA0"
baud = 115200
rtscts = true
chunk_delay = "5ms"
response_timeout = "20s"
ack_enabled = false
max_retries = 5
image_dir = "/var/lib/camlink"
resolution = "FULL_HD"
log_level = "debug"
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.Port != "/dev/ttyAMA0" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Baud != 115200 {
		t.Errorf("Baud = %d", cfg.Baud)
	}
	if !cfg.RTSCTS {
		t.Error("RTSCTS not applied")
	}
	if cfg.ChunkDelay != 5*time.Millisecond {
		t.Errorf("ChunkDelay = %v", cfg.ChunkDelay)
	}
	if cfg.ResponseTimeout != 20*time.Second {
		t.Errorf("ResponseTimeout = %v", cfg.ResponseTimeout)
	}
	if cfg.AckEnabled {
		t.Error("AckEnabled not applied")
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.ImageDir != "/var/lib/camlink" {
		t.Errorf("ImageDir = %q", cfg.ImageDir)
	}
	if cfg.Resolution != "FULL_HD" {
		t.Errorf("Resolution = %q", cfg.Resolution)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestApplyFileConfigRespectsChangedFlags(t *testing.T) {
	fc := FileConfig{Port: "/dev/file", Baud: 9600}
	cfg := DefaultConfig()
	cfg.Port = "/dev/flag"

	changed := map[string]bool{"port": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Port != "/dev/flag" {
		t.Errorf("flag-set port overridden: %q", cfg.Port)
	}
	if cfg.Baud != 9600 {
		t.Errorf("unset baud not applied: %d", cfg.Baud)
	}
}

func TestApplyFileConfigBadDuration(t *testing.T) {
	fc := FileConfig{ChunkDelay: "not-a-duration"}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Fatal("bad duration accepted")
	}
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("missing file loaded")
	}
}
