package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Port            string `toml:"port"`
	Baud            int    `toml:"baud"`
	RTSCTS          *bool  `toml:"rtscts"`
	XONXOFF         *bool  `toml:"xonxoff"`
	ChunkSize       int    `toml:"chunk_size"`
	ChunkDelay      string `toml:"chunk_delay"`
	ResponseTimeout string `toml:"response_timeout"`
	TransferTimeout string `toml:"transfer_timeout"`
	AckEnabled      *bool  `toml:"ack_enabled"`
	MaxRetries      int    `toml:"max_retries"`
	UseCamera       *bool  `toml:"use_camera"`
	FallbackImage   string `toml:"fallback_image"`
	CaptureTimeout  string `toml:"capture_timeout"`
	ImageDir        string `toml:"image_dir"`
	Resolution      string `toml:"resolution"`
	LogLevel        string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.camlink/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".camlink", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", fc.Port, &cfg.Port)
	s.setInt("baud", fc.Baud, &cfg.Baud)
	s.setBool("rtscts", fc.RTSCTS, &cfg.RTSCTS)
	s.setBool("xonxoff", fc.XONXOFF, &cfg.XONXOFF)

	s.setInt("chunk-size", fc.ChunkSize, &cfg.ChunkSize)
	if err := s.setDuration("chunk-delay", fc.ChunkDelay, &cfg.ChunkDelay); err != nil {
		return err
	}
	if err := s.setDuration("response-timeout", fc.ResponseTimeout, &cfg.ResponseTimeout); err != nil {
		return err
	}
	if err := s.setDuration("transfer-timeout", fc.TransferTimeout, &cfg.TransferTimeout); err != nil {
		return err
	}
	s.setBool("ack", fc.AckEnabled, &cfg.AckEnabled)
	if fc.MaxRetries > 0 {
		s.setInt("max-retries", fc.MaxRetries, &cfg.MaxRetries)
	}

	s.setBool("camera", fc.UseCamera, &cfg.UseCamera)
	s.setString("fallback-image", fc.FallbackImage, &cfg.FallbackImage)
	if err := s.setDuration("capture-timeout", fc.CaptureTimeout, &cfg.CaptureTimeout); err != nil {
		return err
	}

	s.setString("image-dir", fc.ImageDir, &cfg.ImageDir)
	s.setString("resolution", fc.Resolution, &cfg.Resolution)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
