package transport

import (
	"fmt"
	"strings"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/ports"
	"github.com/altiplano-labs/camlink/internal/protocol"
)

// pollInterval is the per-Read timeout used while waiting under a longer
// stage deadline. Short enough that deadlines are honored promptly, long
// enough not to spin.
const pollInterval = 50 * time.Millisecond

// ReadLine reads one text line from the link, bounded by an overall
// timeout. The trailing CR/LF is stripped. Returns
// domain.ErrTransportTimeout when the deadline passes first.
func ReadLine(link ports.Link, timeout time.Duration) (string, error) {
	if err := link.SetReadTimeout(pollInterval); err != nil {
		return "", err
	}

	deadline := time.Now().Add(timeout)
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := link.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			if time.Now().After(deadline) {
				return "", fmt.Errorf("%w: no line within %s", domain.ErrTransportTimeout, timeout)
			}
			continue
		}
		if buf[0] == '\n' {
			return strings.TrimRight(sb.String(), "\r"), nil
		}
		sb.WriteByte(buf[0])
	}
}

// scanStartMarker consumes bytes until the frame start marker is matched,
// bounded by an overall timeout. Noise before the marker is discarded.
func scanStartMarker(link ports.Link, timeout time.Duration) error {
	if err := link.SetReadTimeout(pollInterval); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	var scan protocol.MarkerScanner
	buf := make([]byte, 1)
	for {
		n, err := link.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			if time.Now().After(deadline) {
				return fmt.Errorf("%w: no frame start within %s", domain.ErrTransportTimeout, timeout)
			}
			continue
		}
		if scan.Feed(buf[0]) {
			return nil
		}
	}
}

// readExact reads exactly len(dst) bytes, bounded by an overall timeout.
func readExact(link ports.Link, dst []byte, timeout time.Duration) error {
	if err := link.SetReadTimeout(pollInterval); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	got := 0
	for got < len(dst) {
		n, err := link.Read(dst[got:])
		if err != nil {
			return err
		}
		if n == 0 {
			if time.Now().After(deadline) {
				return fmt.Errorf("%w: %d/%d bytes within %s", domain.ErrTransportTimeout, got, len(dst), timeout)
			}
			continue
		}
		got += n
	}
	return nil
}

// WriteLine writes a text line and drains the output buffer so the peer
// sees it before the next stage begins.
func WriteLine(link ports.Link, line string) error {
	if _, err := link.Write([]byte(line)); err != nil {
		return err
	}
	return link.Drain()
}
