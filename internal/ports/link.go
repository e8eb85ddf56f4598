package ports

import (
	"io"
	"time"
)

// Link is one serial channel shared by exactly one sender/receiver pair.
// The channel is a raw byte stream: all coordination happens through the
// wire protocol, never shared memory.
//
// Read honors the timeout set by SetReadTimeout and returns (0, nil) when
// it elapses with no data, matching serial port semantics. Callers that
// need a hard deadline loop over short reads and track inactivity
// themselves.
type Link interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds each subsequent Read call.
	SetReadTimeout(t time.Duration) error

	// Drain blocks until all written bytes have left the output buffer.
	Drain() error

	// ResetInputBuffer discards unread received bytes.
	ResetInputBuffer() error

	// ResetOutputBuffer discards unsent written bytes.
	ResetOutputBuffer() error
}
