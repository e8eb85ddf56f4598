package protocol

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// Frame envelope constants. The start marker announces the header, the end
// marker and terminator text are advisory trailers for line-level debugging
// on the wire.
const (
	startMarkerByte = 0xAA
	endMarkerByte   = 0xBB

	// MarkerLen is the repetition count of both marker sentinels.
	MarkerLen = 10

	// LengthSize is the width of the big-endian payload length field.
	LengthSize = 4

	// EndText is the advisory human-readable terminator written after the
	// end marker.
	EndText = "<FIN_TRANSMISION>\r\n"

	// DefaultChunkSize is the write granularity for the initial send.
	// Not protocol-significant; the receiver only sees a byte stream.
	DefaultChunkSize = 512

	// RetransmitChunkSize is the smaller write granularity used when
	// resending a missing suffix.
	RetransmitChunkSize = 128
)

// StartMarker returns the start-marker byte pattern.
func StartMarker() []byte {
	return bytes.Repeat([]byte{startMarkerByte}, MarkerLen)
}

// EndMarker returns the advisory end-marker byte pattern.
func EndMarker() []byte {
	return bytes.Repeat([]byte{endMarkerByte}, MarkerLen)
}

// Header returns the frame preamble: start marker followed by the
// big-endian payload length.
func Header(payloadLen uint32) []byte {
	h := make([]byte, 0, MarkerLen+LengthSize)
	h = append(h, StartMarker()...)
	h = binary.BigEndian.AppendUint32(h, payloadLen)
	return h
}

// Trailer returns the advisory end marker and terminator text.
func Trailer() []byte {
	t := make([]byte, 0, MarkerLen+len(EndText))
	t = append(t, EndMarker()...)
	t = append(t, EndText...)
	return t
}

// EncodeFrame returns the complete envelope for payload:
// header, payload, trailer.
func EncodeFrame(payload []byte) []byte {
	buf := make([]byte, 0, MarkerLen+LengthSize+len(payload)+MarkerLen+len(EndText))
	buf = append(buf, Header(uint32(len(payload)))...)
	buf = append(buf, payload...)
	buf = append(buf, Trailer()...)
	return buf
}

// MarkerScanner matches the start-marker pattern in a byte stream fed one
// byte at a time. It tolerates arbitrary noise before the marker.
type MarkerScanner struct {
	matched int
}

// Feed consumes one byte and reports whether it completed the marker.
func (s *MarkerScanner) Feed(b byte) bool {
	if b != startMarkerByte {
		s.matched = 0
		return false
	}
	s.matched++
	if s.matched == MarkerLen {
		s.matched = 0
		return true
	}
	return false
}

// Reset clears any partial match.
func (s *MarkerScanner) Reset() {
	s.matched = 0
}

// Decoder reads frames from a byte stream. The declared length is
// authoritative: exactly that many payload bytes are read regardless of
// their values. The trailing markers are never used to find payload
// boundaries, since the sentinel patterns can legally occur inside
// compressed image data.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// ReadHeader scans for the start marker and returns the declared payload
// length that follows it.
func (d *Decoder) ReadHeader() (uint32, error) {
	var scan MarkerScanner
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if scan.Feed(b) {
			break
		}
	}

	var lenBuf [LengthSize]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(lenBuf[:]), nil
}

// ReadPayload reads exactly n payload bytes.
func (d *Decoder) ReadPayload(n uint32) ([]byte, error) {
	payload := make([]byte, n)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Decode reads one complete frame and returns its payload. Trailing
// advisory bytes are left in the stream.
func (d *Decoder) Decode() ([]byte, error) {
	n, err := d.ReadHeader()
	if err != nil {
		return nil, err
	}
	return d.ReadPayload(n)
}
