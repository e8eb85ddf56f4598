package domain

import "errors"

// Domain errors represent the protocol's failure taxonomy.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrMalformedCommand is returned when a command line does not match the
	// grammar. Recovered locally and answered with a BAD response.
	ErrMalformedCommand = errors.New("camlink: malformed command")

	// ErrCaptureFailure is returned when the capture collaborator failed and
	// no fallback image was available.
	ErrCaptureFailure = errors.New("camlink: capture failed")

	// ErrProtocolMismatch is returned when the declared length in the
	// response line disagrees with the frame header. Fatal for the transfer.
	ErrProtocolMismatch = errors.New("camlink: declared length mismatch")

	// ErrTransportTimeout is returned when no data or ACK arrived within the
	// configured window.
	ErrTransportTimeout = errors.New("camlink: transport timeout")

	// ErrRetryExhausted is returned when a transfer used more correction
	// rounds than allowed. The transfer is abandoned, never partially
	// reported as success.
	ErrRetryExhausted = errors.New("camlink: retries exhausted")

	// ErrRemoteRejected is returned on the receiving side when the remote
	// endpoint answered a command with a BAD response. Terminal for the
	// transfer.
	ErrRemoteRejected = errors.New("camlink: remote rejected command")

	// ErrInvalidConfig is returned when configuration validation fails,
	// before any I/O is attempted.
	ErrInvalidConfig = errors.New("camlink: invalid configuration")
)
