// Package cliconfig assembles the camlink configuration from defaults, an
// optional TOML file, CAMLINK_* environment variables and command-line
// flags, in that precedence order (flags win).
package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
)

// Config is the single explicit configuration structure constructed once
// at startup and passed into the transport constructors. There are no
// ambient mutable globals.
type Config struct {
	// Serial link.
	Port    string
	Baud    int
	RTSCTS  bool
	XONXOFF bool

	// Transfer tunables.
	ChunkSize       int
	ChunkDelay      time.Duration
	ResponseTimeout time.Duration
	TransferTimeout time.Duration
	AckEnabled      bool
	MaxRetries      int

	// Capture (server side).
	UseCamera      bool
	FallbackImage  string
	CaptureTimeout time.Duration

	// Storage.
	ImageDir string

	// Client side.
	Resolution string
	Output     string

	LogLevel string
}

// DefaultConfig returns a Config with protocol defaults.
func DefaultConfig() Config {
	return Config{
		Baud:            57600,
		ChunkSize:       512,
		ChunkDelay:      3 * time.Millisecond,
		ResponseTimeout: 15 * time.Second,
		TransferTimeout: 60 * time.Second,
		AckEnabled:      true,
		MaxRetries:      3,
		UseCamera:       true,
		CaptureTimeout:  8 * time.Second,
		ImageDir:        "/tmp/camlink",
		Resolution:      "HD_READY",
		LogLevel:        "info",
	}
}

// Validate checks the configuration for errors. Mutually exclusive
// flow-control modes are rejected here, before any I/O.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: serial port is required", domain.ErrInvalidConfig)
	}
	if c.RTSCTS && c.XONXOFF {
		return fmt.Errorf("%w: hardware (RTS/CTS) and software (XON/XOFF) flow control are mutually exclusive", domain.ErrInvalidConfig)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("%w: baud rate must be positive", domain.ErrInvalidConfig)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidConfig)
	}
	if c.ResponseTimeout <= 0 {
		return fmt.Errorf("%w: response timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.TransferTimeout <= 0 {
		return fmt.Errorf("%w: transfer timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative", domain.ErrInvalidConfig)
	}
	if c.ImageDir == "" {
		return fmt.Errorf("%w: image directory is required", domain.ErrInvalidConfig)
	}
	return nil
}

// FlowControlName returns the selected flow-control mode as a name:
// "hardware", "software" or "none".
func (c Config) FlowControlName() string {
	switch {
	case c.RTSCTS:
		return "hardware"
	case c.XONXOFF:
		return "software"
	default:
		return "none"
	}
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not
// changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if
// valid. Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
