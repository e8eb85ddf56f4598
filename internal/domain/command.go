package domain

// PathLast is the sentinel path meaning "the most recently captured image".
// It is resolved by the image store, never by the parser.
const PathLast = "LAST"

// Command is a parsed wire command. The set of implementations is closed:
// CaptureCommand, SendCommand and CaptureAndSendCommand. Commands are
// immutable once parsed and discarded after dispatch.
type Command interface {
	// Kind returns the wire keyword the command was parsed from.
	Kind() string
}

// CaptureCommand requests a capture at the named resolution without
// transferring the result (wire keyword CAPTURAR).
type CaptureCommand struct {
	Resolution string
}

// Kind implements Command.
func (CaptureCommand) Kind() string { return "CAPTURAR" }

// SendCommand requests the transfer of a stored image (wire keyword ENVIAR).
// Path may be the PathLast sentinel.
type SendCommand struct {
	Path string
}

// Kind implements Command.
func (SendCommand) Kind() string { return "ENVIAR" }

// CaptureAndSendCommand requests a capture followed immediately by its
// transfer (wire keyword FOTO).
type CaptureAndSendCommand struct {
	Resolution string
}

// Kind implements Command.
func (CaptureAndSendCommand) Kind() string { return "FOTO" }
