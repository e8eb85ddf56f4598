package domain

import "fmt"

// ReceiveBuffer is the receiver-owned byte store for one incoming transfer.
// It maintains the invariant bytesReceived <= expectedLength; when the two
// are equal the transfer is complete pending verification.
type ReceiveBuffer struct {
	data     []byte
	expected int
}

// NewReceiveBuffer creates a buffer sized to the declared length.
func NewReceiveBuffer(expectedLength uint32) *ReceiveBuffer {
	return &ReceiveBuffer{
		data:     make([]byte, 0, expectedLength),
		expected: int(expectedLength),
	}
}

// Append adds received payload bytes. It rejects writes that would exceed
// the expected length.
func (b *ReceiveBuffer) Append(p []byte) error {
	if len(b.data)+len(p) > b.expected {
		return fmt.Errorf("receive buffer overflow: %d+%d > %d", len(b.data), len(p), b.expected)
	}
	b.data = append(b.data, p...)
	return nil
}

// Received returns the number of bytes accepted so far.
func (b *ReceiveBuffer) Received() int {
	return len(b.data)
}

// Expected returns the declared length of the transfer.
func (b *ReceiveBuffer) Expected() int {
	return b.expected
}

// Missing returns the number of outstanding bytes.
func (b *ReceiveBuffer) Missing() int {
	return b.expected - len(b.data)
}

// Complete reports whether every declared byte has been received.
func (b *ReceiveBuffer) Complete() bool {
	return len(b.data) == b.expected
}

// Bytes returns the accepted payload bytes.
func (b *ReceiveBuffer) Bytes() []byte {
	return b.data
}
