package domain

// SessionState is the sender-side transfer state.
type SessionState int

const (
	SessionAnnounced SessionState = iota
	SessionTransmitting
	SessionAwaitingAck
	SessionRetransmitting
	SessionDone
	SessionFailed
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionAnnounced:
		return "Announced"
	case SessionTransmitting:
		return "Transmitting"
	case SessionAwaitingAck:
		return "AwaitingAck"
	case SessionRetransmitting:
		return "Retransmitting"
	case SessionDone:
		return "Done"
	case SessionFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// TransferSession tracks one outgoing transfer on the sender side.
// It lives from the OK|size response until a terminal ACK or terminal
// failure and is never persisted across transfers.
type TransferSession struct {
	DeclaredLength    uint32
	BytesAcknowledged int
	RetryCount        int
	State             SessionState
}

// NewTransferSession creates a session for a payload of the given length.
func NewTransferSession(declaredLength uint32) *TransferSession {
	return &TransferSession{
		DeclaredLength: declaredLength,
		State:          SessionAnnounced,
	}
}

// RecordPartial records a receiver report of n accepted bytes and counts
// the correction round it triggers.
func (s *TransferSession) RecordPartial(n int) {
	s.BytesAcknowledged = n
	s.RetryCount++
	s.State = SessionRetransmitting
}

// RecordTimeout counts a correction round triggered by an ACK timeout.
func (s *TransferSession) RecordTimeout() {
	s.RetryCount++
	s.State = SessionRetransmitting
}

// Exhausted reports whether the session has used more than maxRetries
// correction rounds.
func (s *TransferSession) Exhausted(maxRetries int) bool {
	return s.RetryCount > maxRetries
}

// Complete marks the session done with the full payload acknowledged.
func (s *TransferSession) Complete() {
	s.BytesAcknowledged = int(s.DeclaredLength)
	s.State = SessionDone
}

// Fail marks the session terminally failed.
func (s *TransferSession) Fail() {
	s.State = SessionFailed
}
