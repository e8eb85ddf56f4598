package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults with port are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Port = "" },
			wantErr: true,
		},
		{
			name: "both flow control modes",
			mutate: func(c *Config) {
				c.RTSCTS = true
				c.XONXOFF = true
			},
			wantErr: true,
		},
		{
			name:   "hardware flow control alone",
			mutate: func(c *Config) { c.RTSCTS = true },
		},
		{
			name:   "software flow control alone",
			mutate: func(c *Config) { c.XONXOFF = true },
		},
		{
			name:    "zero baud",
			mutate:  func(c *Config) { c.Baud = 0 },
			wantErr: true,
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative max retries",
			mutate:  func(c *Config) { c.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:   "zero max retries allowed",
			mutate: func(c *Config) { c.MaxRetries = 0 },
		},
		{
			name:    "zero response timeout",
			mutate:  func(c *Config) { c.ResponseTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "empty image dir",
			mutate:  func(c *Config) { c.ImageDir = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate accepted invalid config")
				}
				if !errors.Is(err, domain.ErrInvalidConfig) {
					t.Fatalf("error %v is not ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestFlowControlName(t *testing.T) {
	cfg := validConfig()
	if got := cfg.FlowControlName(); got != "none" {
		t.Fatalf("FlowControlName = %q", got)
	}
	cfg.RTSCTS = true
	if got := cfg.FlowControlName(); got != "hardware" {
		t.Fatalf("FlowControlName = %q", got)
	}
	cfg.RTSCTS = false
	cfg.XONXOFF = true
	if got := cfg.FlowControlName(); got != "software" {
		t.Fatalf("FlowControlName = %q", got)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Baud != 57600 {
		t.Errorf("Baud = %d", cfg.Baud)
	}
	if cfg.ChunkSize != 512 {
		t.Errorf("ChunkSize = %d", cfg.ChunkSize)
	}
	if cfg.ChunkDelay != 3*time.Millisecond {
		t.Errorf("ChunkDelay = %v", cfg.ChunkDelay)
	}
	if !cfg.AckEnabled {
		t.Error("AckEnabled = false")
	}
	if cfg.Resolution != "HD_READY" {
		t.Errorf("Resolution = %q", cfg.Resolution)
	}
}
