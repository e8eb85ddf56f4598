package ports

import "context"

// Camera is the image capture collaborator. Implementations acquire a JPEG
// at the named resolution or fail; they may substitute a configured
// fallback image when live capture is unavailable.
type Camera interface {
	// Capture returns raw encoded image bytes for the named resolution.
	// A failure with no fallback available is reported as
	// domain.ErrCaptureFailure.
	Capture(ctx context.Context, resolution string) ([]byte, error)
}
