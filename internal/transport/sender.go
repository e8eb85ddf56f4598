package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/ports"
	"github.com/altiplano-labs/camlink/internal/protocol"
)

// headerPause separates the frame header from the first payload chunk so
// slow receivers latch the length field before data arrives.
const headerPause = 50 * time.Millisecond

// SenderConfig contains the tunables for the sending engine.
type SenderConfig struct {
	// ChunkSize is the write granularity for the initial send.
	ChunkSize int

	// BaseDelay is the base inter-chunk pacing delay.
	BaseDelay time.Duration

	// AckTimeout bounds each wait for an acknowledgment token.
	AckTimeout time.Duration

	// AckEnabled turns the acknowledgment exchange on. When off, a
	// transfer completes as soon as the frame is written.
	AckEnabled bool

	// MaxRetries is the number of correction rounds (suffix
	// retransmissions or full resends) allowed before a transfer is
	// abandoned.
	MaxRetries int
}

// DefaultSenderConfig returns a SenderConfig with protocol defaults.
func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		ChunkSize:  protocol.DefaultChunkSize,
		BaseDelay:  3 * time.Millisecond,
		AckTimeout: 30 * time.Second,
		AckEnabled: true,
		MaxRetries: 3,
	}
}

// Sender drives the announce, transmit, await-ACK, retransmit loop for
// outgoing transfers on one link.
type Sender struct {
	link   ports.Link
	cfg    SenderConfig
	pacer  *protocol.Pacer
	logger ports.Logger
}

// NewSender creates a sending engine over link.
func NewSender(link ports.Link, cfg SenderConfig, logger ports.Logger) *Sender {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = protocol.DefaultChunkSize
	}
	return &Sender{
		link:   link,
		cfg:    cfg,
		pacer:  protocol.NewPacer(cfg.BaseDelay),
		logger: logger,
	}
}

// Announce emits the OK|<length> response line that opens a transfer.
func (s *Sender) Announce(length uint32) error {
	return WriteLine(s.link, protocol.FormatOK(length))
}

// Reject emits a terminal BAD|<reason> response. No transfer follows.
func (s *Sender) Reject(reason string) error {
	return WriteLine(s.link, protocol.FormatBad(reason))
}

// Send announces and transfers payload, repairing partial loss until the
// receiver confirms full receipt or the retry budget is exhausted. The
// returned session always reflects the terminal state; there is no partial
// success.
func (s *Sender) Send(payload []byte) (*domain.TransferSession, error) {
	frame := domain.NewFrame(payload)
	session := domain.NewTransferSession(frame.DeclaredLength())

	s.logger.Info("transfer announced",
		ports.Uint32("bytes", session.DeclaredLength),
	)
	if err := s.Announce(session.DeclaredLength); err != nil {
		session.Fail()
		return session, err
	}

	session.State = domain.SessionTransmitting
	if err := s.writeFrame(frame); err != nil {
		session.Fail()
		return session, err
	}

	if !s.cfg.AckEnabled {
		session.Complete()
		s.logger.Info("transfer complete, acknowledgments disabled")
		return session, nil
	}

	for {
		session.State = domain.SessionAwaitingAck
		ack, err := s.awaitAck()

		switch {
		case err == nil && ack.OK:
			session.Complete()
			s.logger.Info("transfer verified",
				ports.Uint32("bytes", session.DeclaredLength),
				ports.Int("retries", session.RetryCount),
			)
			return session, nil

		case err == nil:
			session.RecordPartial(ack.Received)
			if session.Exhausted(s.cfg.MaxRetries) {
				session.Fail()
				return session, fmt.Errorf("%w: %d correction rounds", domain.ErrRetryExhausted, session.RetryCount)
			}
			if err := s.resendSuffix(frame, ack.Received); err != nil {
				session.Fail()
				return session, err
			}

		case errors.Is(err, domain.ErrTransportTimeout):
			session.RecordTimeout()
			if session.Exhausted(s.cfg.MaxRetries) {
				session.Fail()
				return session, fmt.Errorf("%w: %d acknowledgment timeouts", domain.ErrRetryExhausted, session.RetryCount)
			}
			s.logger.Warn("acknowledgment timeout, resending full frame",
				ports.Int("retry", session.RetryCount),
			)
			session.State = domain.SessionRetransmitting
			if err := s.writeFrame(frame); err != nil {
				session.Fail()
				return session, err
			}

		default:
			session.Fail()
			return session, err
		}
	}
}

// writeFrame writes the complete envelope: header, paced payload chunks,
// flush pause, advisory trailer.
func (s *Sender) writeFrame(frame domain.Frame) error {
	if _, err := s.link.Write(protocol.Header(frame.DeclaredLength())); err != nil {
		return err
	}
	if err := s.link.Drain(); err != nil {
		return err
	}
	time.Sleep(headerPause)

	if err := s.writeChunks(frame.Payload, s.cfg.ChunkSize); err != nil {
		return err
	}
	if err := s.link.Drain(); err != nil {
		return err
	}
	time.Sleep(s.pacer.FlushPause())

	if _, err := s.link.Write(protocol.Trailer()); err != nil {
		return err
	}
	return s.link.Drain()
}

// writeChunks streams p in chunkSize pieces, sleeping the pacer's delay
// between chunks.
func (s *Sender) writeChunks(p []byte, chunkSize int) error {
	logStep := len(p) / 10
	nextLog := logStep

	for sent := 0; sent < len(p); {
		end := sent + chunkSize
		if end > len(p) {
			end = len(p)
		}
		if _, err := s.link.Write(p[sent:end]); err != nil {
			return err
		}
		sent = end

		if logStep > 0 && sent >= nextLog {
			s.logger.Debug("transfer progress",
				ports.Int("sent", sent),
				ports.Int("total", len(p)),
			)
			nextLog += logStep
		}

		if remaining := len(p) - sent; remaining > 0 {
			time.Sleep(s.pacer.DelayFor(remaining))
		}
	}
	return nil
}

// resendSuffix retransmits the payload from the acknowledged offset to the
// end. No re-announcement and no preamble: the receiver knows exactly how
// many bytes are outstanding.
func (s *Sender) resendSuffix(frame domain.Frame, offset int) error {
	suffix := frame.Suffix(offset)
	s.logger.Warn("retransmitting suffix",
		ports.Int("offset", offset),
		ports.Int("bytes", len(suffix)),
	)
	if len(suffix) == 0 {
		return nil
	}
	if err := s.writeChunks(suffix, protocol.RetransmitChunkSize); err != nil {
		return err
	}
	return s.link.Drain()
}

// awaitAck blocks for an acknowledgment token, skipping unrecognized lines
// as wire noise.
func (s *Sender) awaitAck() (protocol.Ack, error) {
	deadline := time.Now().Add(s.cfg.AckTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return protocol.Ack{}, fmt.Errorf("%w: no acknowledgment within %s", domain.ErrTransportTimeout, s.cfg.AckTimeout)
		}
		line, err := ReadLine(s.link, remaining)
		if err != nil {
			return protocol.Ack{}, err
		}
		if ack, ok := protocol.ParseAck(line); ok {
			return ack, nil
		}
		s.logger.Debug("skipping non-ack line", ports.String("line", line))
	}
}
