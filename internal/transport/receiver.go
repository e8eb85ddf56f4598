package transport

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/ports"
	"github.com/altiplano-labs/camlink/internal/protocol"
)

// readChunk is the receive granularity while reading payload bytes.
const readChunk = 4096

// trailerDrainTimeout bounds the advisory trailer drain after a complete
// payload.
const trailerDrainTimeout = 500 * time.Millisecond

// ReceiverConfig contains the tunables for the receiving state machine.
type ReceiverConfig struct {
	// ResponseTimeout bounds the wait for the OK/BAD response line and is
	// the inactivity bound while payload bytes trickle in.
	ResponseTimeout time.Duration

	// TransferTimeout bounds the whole frame: start marker, length and
	// payload reads.
	TransferTimeout time.Duration

	// AckEnabled turns the acknowledgment exchange on. When off, a partial
	// payload is a plain timeout failure.
	AckEnabled bool

	// MaxRetries is the number of correction rounds requested before the
	// transfer is abandoned.
	MaxRetries int
}

// DefaultReceiverConfig returns a ReceiverConfig with protocol defaults.
func DefaultReceiverConfig() ReceiverConfig {
	return ReceiverConfig{
		ResponseTimeout: 15 * time.Second,
		TransferTimeout: 60 * time.Second,
		AckEnabled:      true,
		MaxRetries:      3,
	}
}

// Result is the outcome of a completed reception.
type Result struct {
	// Payload holds the reconstructed bytes, exactly the declared length.
	Payload []byte

	// JPEGValid reports the advisory magic-pair check (FFD8 head, FFD9
	// tail). Diagnostics only; it never gates the ACK decision.
	JPEGValid bool

	// Corrections is the number of ACK_MISSING rounds that were needed.
	Corrections int
}

// Receiver drives the response-wait, frame-wait, exact-length read,
// verify, ACK loop for incoming transfers on one link.
type Receiver struct {
	link   ports.Link
	cfg    ReceiverConfig
	logger ports.Logger
}

// NewReceiver creates a receiving state machine over link.
func NewReceiver(link ports.Link, cfg ReceiverConfig, logger ports.Logger) *Receiver {
	return &Receiver{link: link, cfg: cfg, logger: logger}
}

// AwaitResponse blocks for the OK|<n> or BAD|<reason> response line,
// skipping unrelated lines as wire noise.
func (r *Receiver) AwaitResponse() (protocol.Response, error) {
	deadline := time.Now().Add(r.cfg.ResponseTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return protocol.Response{}, fmt.Errorf("%w: no response within %s", domain.ErrTransportTimeout, r.cfg.ResponseTimeout)
		}
		line, err := ReadLine(r.link, remaining)
		if err != nil {
			return protocol.Response{}, err
		}
		if resp, ok := protocol.ParseResponse(line); ok {
			return resp, nil
		}
		r.logger.Debug("skipping non-response line", ports.String("line", line))
	}
}

// Fetch runs the full receive flow: response line, then frame reception.
// A BAD response is a terminal failure for the transfer.
func (r *Receiver) Fetch() (*Result, error) {
	resp, err := r.AwaitResponse()
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("%w: %s", domain.ErrRemoteRejected, resp.Reason)
	}
	r.logger.Info("transfer announced by remote", ports.Uint32("bytes", resp.Length))
	return r.Receive(resp.Length)
}

// Receive reads one frame whose announced length must equal expected.
// Partial loss is repaired through the ACK_MISSING exchange until the
// payload is complete or the correction budget runs out.
func (r *Receiver) Receive(expected uint32) (*Result, error) {
	if err := scanStartMarker(r.link, r.cfg.TransferTimeout); err != nil {
		return nil, err
	}

	declared, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if declared != expected {
		return nil, fmt.Errorf("%w: response announced %d, frame header says %d", domain.ErrProtocolMismatch, expected, declared)
	}

	buf := domain.NewReceiveBuffer(declared)
	corrections := 0
	for {
		if err := r.readPayload(buf); err != nil {
			return nil, err
		}
		if buf.Complete() {
			break
		}

		r.logger.Warn("partial payload",
			ports.Int("received", buf.Received()),
			ports.Int("expected", buf.Expected()),
		)
		if !r.cfg.AckEnabled {
			return nil, fmt.Errorf("%w: %d/%d bytes, acknowledgments disabled", domain.ErrTransportTimeout, buf.Received(), buf.Expected())
		}
		if corrections >= r.cfg.MaxRetries {
			return nil, fmt.Errorf("%w: still missing %d bytes after %d corrections", domain.ErrRetryExhausted, buf.Missing(), corrections)
		}
		corrections++
		if err := WriteLine(r.link, protocol.FormatAckMissing(buf.Received())); err != nil {
			return nil, err
		}
		// The sender resends only the suffix; the exact read resumes at
		// the reported offset.
	}

	if r.cfg.AckEnabled {
		if err := WriteLine(r.link, protocol.FormatAckOK()); err != nil {
			return nil, err
		}
	}

	r.drainTrailer()

	valid := jpegMagicValid(buf.Bytes())
	if !valid {
		r.logger.Warn("payload missing JPEG magic pair, delivering anyway")
	}
	r.logger.Info("reception complete",
		ports.Int("bytes", buf.Received()),
		ports.Int("corrections", corrections),
		ports.Bool("jpeg_valid", valid),
	)
	return &Result{Payload: buf.Bytes(), JPEGValid: valid, Corrections: corrections}, nil
}

// readLength reads the 4-byte big-endian declared length after the start
// marker.
func (r *Receiver) readLength() (uint32, error) {
	var lenBuf [protocol.LengthSize]byte
	if err := readExact(r.link, lenBuf[:], r.cfg.TransferTimeout); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(lenBuf[:]), nil
}

// readPayload reads toward the declared length until the buffer is
// complete, the stream goes quiet for ResponseTimeout, or TransferTimeout
// elapses. A short read is not an error here; VERIFY decides what happens.
func (r *Receiver) readPayload(buf *domain.ReceiveBuffer) error {
	if err := r.link.SetReadTimeout(pollInterval); err != nil {
		return err
	}

	deadline := time.Now().Add(r.cfg.TransferTimeout)
	lastData := time.Now()
	chunk := make([]byte, readChunk)

	for !buf.Complete() {
		want := buf.Missing()
		if want > readChunk {
			want = readChunk
		}
		n, err := r.link.Read(chunk[:want])
		if err != nil {
			return err
		}
		if n > 0 {
			if err := buf.Append(chunk[:n]); err != nil {
				return err
			}
			lastData = time.Now()
			continue
		}
		if time.Since(lastData) > r.cfg.ResponseTimeout || time.Now().After(deadline) {
			return nil
		}
	}
	return nil
}

// drainTrailer discards the advisory end marker and terminator text. Never
// used to find payload boundaries; purely keeps the input queue clean for
// the next exchange.
func (r *Receiver) drainTrailer() {
	if err := r.link.SetReadTimeout(pollInterval); err != nil {
		return
	}
	deadline := time.Now().Add(trailerDrainTimeout)
	buf := make([]byte, 128)
	drained := 0
	for time.Now().Before(deadline) {
		n, err := r.link.Read(buf)
		if err != nil {
			break
		}
		if n == 0 {
			break
		}
		drained += n
	}
	if drained > 0 {
		r.logger.Debug("drained advisory trailer", ports.Int("bytes", drained))
	}
}

// jpegMagicValid checks the first and last byte pairs against the JPEG
// start/end markers.
func jpegMagicValid(p []byte) bool {
	if len(p) < 4 {
		return false
	}
	return p[0] == 0xFF && p[1] == 0xD8 && p[len(p)-2] == 0xFF && p[len(p)-1] == 0xD9
}
