package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (CAMLINK_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", os.Getenv("CAMLINK_PORT"), &cfg.Port)
	if err := s.setIntFromString("baud", os.Getenv("CAMLINK_BAUD"), &cfg.Baud); err != nil {
		return err
	}
	s.setBoolFromString("rtscts", os.Getenv("CAMLINK_RTSCTS"), &cfg.RTSCTS)
	s.setBoolFromString("xonxoff", os.Getenv("CAMLINK_XONXOFF"), &cfg.XONXOFF)

	if err := s.setIntFromString("chunk-size", os.Getenv("CAMLINK_CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}
	if err := s.setDuration("chunk-delay", os.Getenv("CAMLINK_CHUNK_DELAY"), &cfg.ChunkDelay); err != nil {
		return err
	}
	if err := s.setDuration("response-timeout", os.Getenv("CAMLINK_RESPONSE_TIMEOUT"), &cfg.ResponseTimeout); err != nil {
		return err
	}
	if err := s.setDuration("transfer-timeout", os.Getenv("CAMLINK_TRANSFER_TIMEOUT"), &cfg.TransferTimeout); err != nil {
		return err
	}
	s.setBoolFromString("ack", os.Getenv("CAMLINK_ACK"), &cfg.AckEnabled)
	if err := s.setIntFromString("max-retries", os.Getenv("CAMLINK_MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}

	s.setBoolFromString("camera", os.Getenv("CAMLINK_CAMERA"), &cfg.UseCamera)
	s.setString("fallback-image", os.Getenv("CAMLINK_FALLBACK_IMAGE"), &cfg.FallbackImage)
	if err := s.setDuration("capture-timeout", os.Getenv("CAMLINK_CAPTURE_TIMEOUT"), &cfg.CaptureTimeout); err != nil {
		return err
	}

	s.setString("image-dir", os.Getenv("CAMLINK_IMAGE_DIR"), &cfg.ImageDir)
	s.setString("resolution", os.Getenv("CAMLINK_RESOLUTION"), &cfg.Resolution)
	s.setString("log-level", os.Getenv("CAMLINK_LOG_LEVEL"), &cfg.LogLevel)

	return nil
}
