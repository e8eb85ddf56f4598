// Package camera implements ports.Camera with the rpicam-still capture
// subprocess and an optional fallback image.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/ports"
)

// DefaultResolution is used when a requested resolution name is unknown.
const DefaultResolution = "THUMBNAIL"

// resolutions maps resolution names to pixel dimensions for the capture
// subprocess.
var resolutions = map[string][2]int{
	"THUMBNAIL":  {320, 240},
	"LOW_LIGHT":  {640, 480},
	"HD_READY":   {1280, 720},
	"FULL_HD":    {1920, 1080},
	"ULTRA_WIDE": {4056, 3040},
}

// Resolutions returns the known resolution names, sorted.
func Resolutions() []string {
	names := make([]string, 0, len(resolutions))
	for name := range resolutions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options configures the capture adapter.
type Options struct {
	// UseCamera enables the capture subprocess. When false only the
	// fallback image is consulted.
	UseCamera bool

	// FallbackImage is the path of a pre-existing image substituted when
	// live capture is unavailable or fails. Empty disables the fallback.
	FallbackImage string

	// CaptureTimeout bounds the capture subprocess.
	CaptureTimeout time.Duration
}

// Rpicam captures JPEG stills with rpicam-still.
type Rpicam struct {
	opts   Options
	logger ports.Logger
}

// New creates a capture adapter.
func New(opts Options, logger ports.Logger) *Rpicam {
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = 8 * time.Second
	}
	return &Rpicam{opts: opts, logger: logger}
}

// Capture returns JPEG bytes at the named resolution, falling back to the
// configured image when the camera fails or is disabled. When neither
// source yields bytes the failure is domain.ErrCaptureFailure.
func (c *Rpicam) Capture(ctx context.Context, resolution string) ([]byte, error) {
	var data []byte
	if c.opts.UseCamera {
		out, err := c.captureStill(ctx, resolution)
		if err != nil {
			c.logger.Warn("camera capture failed",
				ports.String("resolution", resolution),
				ports.Err(err),
			)
		} else {
			data = out
		}
	}

	if data == nil && c.opts.FallbackImage != "" {
		out, err := os.ReadFile(c.opts.FallbackImage)
		if err != nil {
			c.logger.Warn("fallback image unreadable",
				ports.String("path", c.opts.FallbackImage),
				ports.Err(err),
			)
		} else {
			c.logger.Info("substituting fallback image",
				ports.String("path", c.opts.FallbackImage),
			)
			data = out
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no camera output and no fallback image", domain.ErrCaptureFailure)
	}
	return data, nil
}

// captureStill runs rpicam-still writing the JPEG to stdout.
func (c *Rpicam) captureStill(ctx context.Context, resolution string) ([]byte, error) {
	dims, ok := resolutions[strings.ToUpper(resolution)]
	if !ok {
		c.logger.Warn("unknown resolution, using default",
			ports.String("resolution", resolution),
		)
		dims = resolutions[DefaultResolution]
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.CaptureTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "rpicam-still",
		"-n", "-t", "1",
		"--width", strconv.Itoa(dims[0]),
		"--height", strconv.Itoa(dims[1]),
		"-o", "-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rpicam-still: %w (%s)", err, firstLine(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("rpicam-still produced no output")
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
