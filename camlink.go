// Package camlink ships JPEG images over a lossy serial link with length
// announcement, acknowledgment and suffix retransmission.
//
// Example usage:
//
//	cfg := camlink.DefaultConfig()
//	cfg.Port = "/dev/ttyUSB0"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := camlink.RunServer(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package camlink

import (
	"context"

	"github.com/altiplano-labs/camlink/internal/adapters/camera"
	"github.com/altiplano-labs/camlink/internal/adapters/imagestore"
	"github.com/altiplano-labs/camlink/internal/adapters/serialport"
	"github.com/altiplano-labs/camlink/internal/app"
	"github.com/altiplano-labs/camlink/internal/cliconfig"
	"github.com/altiplano-labs/camlink/internal/ports"
	"github.com/altiplano-labs/camlink/internal/transport"
	"github.com/altiplano-labs/camlink/pkg/log"
)

// Config holds the configuration for both endpoints.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Result summarizes one completed transfer on the receiving side.
type Result = transport.Result

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set Port before opening the link.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// RunServer opens the serial port and services commands until the context
// is canceled or the link fails.
func RunServer(ctx context.Context, cfg Config) error {
	logger := cfg.Logger()

	link, err := openLink(cfg, logger)
	if err != nil {
		return err
	}
	defer link.Close()

	store, err := imagestore.New(cfg.ImageDir, logger)
	if err != nil {
		return err
	}
	if err := store.Watch(); err != nil {
		logger.Warn("image directory watch unavailable", ports.Err(err))
	}
	defer store.Close()

	cam := camera.New(camera.Options{
		UseCamera:      cfg.UseCamera,
		FallbackImage:  cfg.FallbackImage,
		CaptureTimeout: cfg.CaptureTimeout,
	}, logger)

	server := app.NewServer(link, cam, store, senderConfig(cfg), logger)
	return server.Run(ctx)
}

// Snapshot asks the remote endpoint to capture at the named resolution and
// transfer the image in one exchange. Returns the saved path.
func Snapshot(cfg Config, resolution, output string) (string, *Result, error) {
	client, closeLink, err := newClient(cfg)
	if err != nil {
		return "", nil, err
	}
	defer closeLink()
	return client.Snapshot(resolution, output)
}

// Capture asks the remote endpoint to capture and store an image without
// transferring it. Returns the announced size in bytes.
func Capture(cfg Config, resolution string) (uint32, error) {
	client, closeLink, err := newClient(cfg)
	if err != nil {
		return 0, err
	}
	defer closeLink()
	return client.RequestCapture(resolution)
}

// FetchLast asks the remote endpoint to transfer its most recent capture.
// Returns the saved path.
func FetchLast(cfg Config, output string) (string, *Result, error) {
	return Fetch(cfg, "LAST", output)
}

// Fetch asks the remote endpoint to transfer a stored image by path.
func Fetch(cfg Config, path, output string) (string, *Result, error) {
	client, closeLink, err := newClient(cfg)
	if err != nil {
		return "", nil, err
	}
	defer closeLink()
	return client.Fetch(path, output)
}

func newClient(cfg Config) (*app.Client, func(), error) {
	logger := cfg.Logger()

	link, err := openLink(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := imagestore.New(cfg.ImageDir, logger)
	if err != nil {
		link.Close()
		return nil, nil, err
	}

	client := app.NewClient(link, store, receiverConfig(cfg), logger)
	return client, func() { link.Close() }, nil
}

func openLink(cfg Config, logger log.Logger) (ports.Link, error) {
	flow := serialport.FlowNone
	switch {
	case cfg.RTSCTS:
		flow = serialport.FlowHardware
	case cfg.XONXOFF:
		flow = serialport.FlowSoftware
	}
	return serialport.Open(serialport.Options{
		Port: cfg.Port,
		Baud: cfg.Baud,
		Flow: flow,
	}, logger)
}

func senderConfig(cfg Config) transport.SenderConfig {
	return transport.SenderConfig{
		ChunkSize:  cfg.ChunkSize,
		BaseDelay:  cfg.ChunkDelay,
		AckTimeout: cfg.ResponseTimeout,
		AckEnabled: cfg.AckEnabled,
		MaxRetries: cfg.MaxRetries,
	}
}

func receiverConfig(cfg Config) transport.ReceiverConfig {
	return transport.ReceiverConfig{
		ResponseTimeout: cfg.ResponseTimeout,
		TransferTimeout: cfg.TransferTimeout,
		AckEnabled:      cfg.AckEnabled,
		MaxRetries:      cfg.MaxRetries,
	}
}
