package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ackOKToken       = "ACK_OK"
	ackMissingPrefix = "ACK_MISSING:"
)

// Ack is a parsed receiver-to-sender acknowledgment token.
// OK means the full payload was accepted; otherwise Received carries the
// number of bytes the receiver actually accepted.
type Ack struct {
	OK       bool
	Received int
}

// FormatAckOK formats the full-receipt token line.
func FormatAckOK() string {
	return ackOKToken + "\r\n"
}

// FormatAckMissing formats the partial-receipt token line reporting how
// many bytes were accepted.
func FormatAckMissing(received int) string {
	return fmt.Sprintf("%s%d\r\n", ackMissingPrefix, received)
}

// ParseAck parses an acknowledgment line. The second return value is false
// for lines that are not well-formed ACK tokens; the sender skips those as
// wire noise.
func ParseAck(line string) (Ack, bool) {
	s := strings.TrimSpace(line)
	if s == ackOKToken {
		return Ack{OK: true}, true
	}
	if strings.HasPrefix(s, ackMissingPrefix) {
		n, err := strconv.ParseUint(s[len(ackMissingPrefix):], 10, 32)
		if err != nil {
			return Ack{}, false
		}
		return Ack{Received: int(n)}, true
	}
	return Ack{}, false
}
