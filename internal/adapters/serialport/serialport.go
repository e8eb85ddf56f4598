// Package serialport implements ports.Link on top of a real UART device.
package serialport

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.bug.st/serial"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/ports"
)

// FlowControl selects the link's flow-control discipline. The modes are
// mutually exclusive.
type FlowControl string

const (
	// FlowNone disables flow control.
	FlowNone FlowControl = "none"

	// FlowSoftware selects XON/XOFF flow control.
	FlowSoftware FlowControl = "software"

	// FlowHardware selects RTS/CTS flow control.
	FlowHardware FlowControl = "hardware"
)

// defaultReadTimeout is the initial per-Read timeout; the transport layer
// overrides it per stage.
const defaultReadTimeout = 100 * time.Millisecond

// sttyTimeout bounds the flow-control preflight subprocess.
const sttyTimeout = 3 * time.Second

// Options configures a serial link.
type Options struct {
	// Port is the device path, e.g. /dev/ttyUSB0.
	Port string

	// Baud is the line speed. Defaults to 57600.
	Baud int

	// Flow is the flow-control mode. Defaults to FlowNone.
	Flow FlowControl
}

// Open configures the device and returns a ready link. The port is opened
// 8N1 at the configured baud rate with both buffers flushed, so stale
// bytes from a previous session never leak into the first exchange.
func Open(opts Options, logger ports.Logger) (ports.Link, error) {
	if opts.Port == "" {
		return nil, fmt.Errorf("%w: serial port path is required", domain.ErrInvalidConfig)
	}
	if opts.Baud <= 0 {
		opts.Baud = 57600
	}
	switch opts.Flow {
	case "", FlowNone, FlowSoftware, FlowHardware:
	default:
		return nil, fmt.Errorf("%w: unknown flow control mode %q", domain.ErrInvalidConfig, opts.Flow)
	}

	// The serial library drives raw 8N1 I/O; the flow-control line
	// discipline is set with an stty preflight on the device node.
	if err := applyFlowControl(opts); err != nil {
		logger.Warn("flow control preflight failed",
			ports.String("port", opts.Port),
			ports.Err(err),
		)
	}

	mode := &serial.Mode{
		BaudRate: opts.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(opts.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Port, err)
	}
	if err := port.SetReadTimeout(defaultReadTimeout); err != nil {
		port.Close()
		return nil, err
	}

	// Discard anything queued before we attached.
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, err
	}
	if err := port.ResetOutputBuffer(); err != nil {
		port.Close()
		return nil, err
	}

	logger.Info("serial port open",
		ports.String("port", opts.Port),
		ports.Int("baud", opts.Baud),
		ports.String("flow", string(flowOrNone(opts.Flow))),
	)
	return &serialLink{port: port}, nil
}

// serialLink adapts serial.Port to ports.Link, draining pending output on
// close so the peer sees the final bytes.
type serialLink struct {
	port serial.Port
}

func (l *serialLink) Read(p []byte) (int, error)  { return l.port.Read(p) }
func (l *serialLink) Write(p []byte) (int, error) { return l.port.Write(p) }

func (l *serialLink) SetReadTimeout(t time.Duration) error { return l.port.SetReadTimeout(t) }
func (l *serialLink) Drain() error                         { return l.port.Drain() }
func (l *serialLink) ResetInputBuffer() error              { return l.port.ResetInputBuffer() }
func (l *serialLink) ResetOutputBuffer() error             { return l.port.ResetOutputBuffer() }

func (l *serialLink) Close() error {
	// Best effort: the link may be closing because of an I/O error.
	_ = l.port.Drain()
	return l.port.Close()
}

// applyFlowControl runs the stty preflight selecting the flow-control
// discipline for the device.
func applyFlowControl(opts Options) error {
	ctx, cancel := context.WithTimeout(context.Background(), sttyTimeout)
	defer cancel()
	return exec.CommandContext(ctx, "stty", sttyArgs(opts)...).Run()
}

// sttyArgs builds the stty argument list for the requested mode. Exactly
// one discipline is enabled; the other is explicitly cleared.
func sttyArgs(opts Options) []string {
	args := []string{"-F", opts.Port, "raw", "-echo"}
	switch opts.Flow {
	case FlowHardware:
		args = append(args, "crtscts", "-ixon", "-ixoff")
	case FlowSoftware:
		args = append(args, "-crtscts", "ixon", "ixoff")
	default:
		args = append(args, "-crtscts", "-ixon", "-ixoff")
	}
	return args
}

func flowOrNone(f FlowControl) FlowControl {
	if f == "" {
		return FlowNone
	}
	return f
}
