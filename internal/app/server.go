package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/ports"
	"github.com/altiplano-labs/camlink/internal/protocol"
	"github.com/altiplano-labs/camlink/internal/transport"
)

// commandPoll bounds each wait for a command line so shutdown is noticed
// promptly.
const commandPoll = 1 * time.Second

// Server services commands arriving on one serial link.
type Server struct {
	link   ports.Link
	camera ports.Camera
	store  ports.ImageStore
	sender *transport.Sender
	logger ports.Logger
}

// NewServer creates the command-serving side of the link.
func NewServer(
	link ports.Link,
	camera ports.Camera,
	store ports.ImageStore,
	senderCfg transport.SenderConfig,
	logger ports.Logger,
) *Server {
	return &Server{
		link:   link,
		camera: camera,
		store:  store,
		sender: transport.NewSender(link, senderCfg, logger),
		logger: logger,
	}
}

// Run reads and dispatches command lines until the context is canceled.
// Command failures are answered on the wire and logged; only link-level
// errors abort the loop.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("awaiting commands")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := transport.ReadLine(s.link, commandPoll)
		if err != nil {
			if errors.Is(err, domain.ErrTransportTimeout) {
				continue
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.dispatch(ctx, line)
	}
}

// dispatch parses one command line and executes it. All coordination with
// the peer happens through the response and ACK exchange.
func (s *Server) dispatch(ctx context.Context, line string) {
	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		s.logger.Warn("malformed command",
			ports.String("line", line),
			ports.Err(err),
		)
		if err := s.sender.Reject(protocol.ReasonBadCommand); err != nil {
			s.logger.Error("failed to send rejection", ports.Err(err))
		}
		return
	}

	s.logger.Info("command received", ports.String("kind", cmd.Kind()))

	switch c := cmd.(type) {
	case domain.CaptureCommand:
		s.handleCapture(ctx, c)
	case domain.SendCommand:
		s.handleSend(c)
	case domain.CaptureAndSendCommand:
		s.handleCaptureAndSend(ctx, c)
	}
}

// handleCapture captures and stores an image, announcing its size without
// transferring it.
func (s *Server) handleCapture(ctx context.Context, cmd domain.CaptureCommand) {
	data, err := s.camera.Capture(ctx, cmd.Resolution)
	if err != nil {
		s.logger.Error("capture failed", ports.Err(err))
		s.reject(protocol.ReasonNoImage)
		return
	}
	handle, err := s.store.SaveLast(data)
	if err != nil {
		s.logger.Error("failed to store capture", ports.Err(err))
		s.reject(protocol.ReasonNoImage)
		return
	}
	s.logger.Info("capture stored",
		ports.String("handle", handle),
		ports.Int("bytes", len(data)),
	)
	if err := s.sender.Announce(uint32(len(data))); err != nil {
		s.logger.Error("failed to announce capture", ports.Err(err))
	}
}

// handleSend transfers a stored image, resolving the LAST sentinel through
// the store.
func (s *Server) handleSend(cmd domain.SendCommand) {
	handle, err := s.store.Resolve(cmd.Path)
	if err != nil {
		s.logger.Warn("cannot resolve image",
			ports.String("path", cmd.Path),
			ports.Err(err),
		)
		s.reject(protocol.ReasonNoFile)
		return
	}
	data, err := s.store.Load(handle)
	if err != nil {
		s.logger.Error("cannot load image",
			ports.String("handle", handle),
			ports.Err(err),
		)
		s.reject(protocol.ReasonNoFile)
		return
	}
	s.transfer(data)
}

// handleCaptureAndSend captures and transfers in one exchange. The capture
// becomes LAST only after the transfer is verified.
func (s *Server) handleCaptureAndSend(ctx context.Context, cmd domain.CaptureAndSendCommand) {
	data, err := s.camera.Capture(ctx, cmd.Resolution)
	if err != nil {
		s.logger.Error("capture failed", ports.Err(err))
		s.reject(protocol.ReasonNoImage)
		return
	}
	if !s.transfer(data) {
		return
	}
	if _, err := s.store.SaveLast(data); err != nil {
		s.logger.Warn("failed to store verified capture", ports.Err(err))
	}
}

// transfer runs one sender session and reports whether it completed.
func (s *Server) transfer(data []byte) bool {
	session, err := s.sender.Send(data)
	if err != nil {
		s.logger.Error("transfer failed",
			ports.Err(err),
			ports.String("state", session.State.String()),
			ports.Int("retries", session.RetryCount),
		)
		return false
	}
	return session.State == domain.SessionDone
}

func (s *Server) reject(reason string) {
	if err := s.sender.Reject(reason); err != nil {
		s.logger.Error("failed to send rejection", ports.Err(err))
	}
}
