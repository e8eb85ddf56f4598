package protocol

import "time"

// Pacing bounds. The delay may rise mildly near the tail of a transfer but
// is capped at MaxDelayMultiplier times the base delay, so tail pacing can
// never stretch a transfer past the receiver's end-to-end timeout.
const (
	MaxDelayMultiplier = 3

	// minBaseDelay keeps a floor under the configured inter-chunk delay so
	// slow receivers are never overrun even when pacing is configured off.
	minBaseDelay = 3 * time.Millisecond

	// tailWindow is the bytes-remaining threshold below which pacing steps
	// up one multiple.
	tailWindow = 8 * DefaultChunkSize

	// flushPause is the single additional pause after the final chunk,
	// letting the receiver drain before the advisory trailer is written.
	flushPause = 200 * time.Millisecond
)

// Pacer computes the inter-chunk pacing delay for the sender.
type Pacer struct {
	base time.Duration
}

// NewPacer creates a pacer with the given base inter-chunk delay,
// clamped to a small floor.
func NewPacer(base time.Duration) *Pacer {
	if base < minBaseDelay {
		base = minBaseDelay
	}
	return &Pacer{base: base}
}

// Base returns the effective base delay.
func (p *Pacer) Base() time.Duration {
	return p.base
}

// DelayFor returns the delay to sleep before sending the next chunk given
// the bytes still to send. The result never exceeds
// MaxDelayMultiplier * Base.
func (p *Pacer) DelayFor(bytesRemaining int) time.Duration {
	switch {
	case bytesRemaining <= DefaultChunkSize:
		return MaxDelayMultiplier * p.base
	case bytesRemaining <= tailWindow:
		return 2 * p.base
	default:
		return p.base
	}
}

// FlushPause returns the fixed pause applied once after the last payload
// chunk.
func (p *Pacer) FlushPause() time.Duration {
	return flushPause
}
