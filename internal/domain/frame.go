package domain

// Frame is the binary envelope carrying one transfer's payload.
// The declared length is always derived from the payload on the sender
// side; the receiver's job is to detect when transport loss makes reality
// diverge from that contract.
type Frame struct {
	Payload []byte
}

// NewFrame creates a frame around the given payload.
func NewFrame(payload []byte) Frame {
	return Frame{Payload: payload}
}

// DeclaredLength returns the byte count announced in the response line and
// carried in the frame header. It is authoritative over payload boundaries.
func (f Frame) DeclaredLength() uint32 {
	return uint32(len(f.Payload))
}

// Suffix returns the payload bytes from offset to the end. It is what gets
// retransmitted after an ACK_MISSING report. Offsets at or past the end
// yield an empty slice.
func (f Frame) Suffix(offset int) []byte {
	if offset < 0 || offset >= len(f.Payload) {
		return nil
	}
	return f.Payload[offset:]
}
