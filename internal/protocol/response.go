package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	respOKPrefix  = "OK|"
	respBadPrefix = "BAD|"
)

// Failure reasons carried on BAD responses.
const (
	ReasonNoImage    = "NO_IMAGE"
	ReasonNoFile     = "NO_FILE"
	ReasonBadCommand = "BAD_CMD"
)

// Response is a parsed OK|<n> or BAD|<reason> line.
type Response struct {
	OK     bool
	Length uint32
	Reason string
}

// FormatOK formats the success response announcing the declared length.
func FormatOK(length uint32) string {
	return fmt.Sprintf("%s%d\r\n", respOKPrefix, length)
}

// FormatBad formats the terminal failure response.
func FormatBad(reason string) string {
	return fmt.Sprintf("%s%s\r\n", respBadPrefix, reason)
}

// ParseResponse parses a response line. The second return value is false
// for lines that are not responses at all (wire noise the caller should
// skip); a recognizable OK line with an unparsable length is reported as a
// BAD response rather than noise so the receiver fails fast.
func ParseResponse(line string) (Response, bool) {
	s := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(s, respOKPrefix):
		n, err := strconv.ParseUint(s[len(respOKPrefix):], 10, 32)
		if err != nil {
			return Response{Reason: "UNPARSABLE_LENGTH"}, true
		}
		return Response{OK: true, Length: uint32(n)}, true
	case strings.HasPrefix(s, respBadPrefix):
		return Response{Reason: s[len(respBadPrefix):]}, true
	default:
		return Response{}, false
	}
}
