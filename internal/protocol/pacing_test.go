package protocol

import (
	"testing"
	"time"
)

func TestPacerDelayBounded(t *testing.T) {
	p := NewPacer(5 * time.Millisecond)
	limit := MaxDelayMultiplier * p.Base()

	for _, remaining := range []int{1, 100, DefaultChunkSize, DefaultChunkSize + 1, tailWindow, tailWindow + 1, 1 << 20} {
		if d := p.DelayFor(remaining); d > limit {
			t.Fatalf("DelayFor(%d) = %v, exceeds %v", remaining, d, limit)
		}
	}
}

func TestPacerTiers(t *testing.T) {
	base := 10 * time.Millisecond
	p := NewPacer(base)

	tests := []struct {
		remaining int
		want      time.Duration
	}{
		{1 << 20, base},
		{tailWindow + 1, base},
		{tailWindow, 2 * base},
		{DefaultChunkSize + 1, 2 * base},
		{DefaultChunkSize, 3 * base},
		{1, 3 * base},
	}
	for _, tt := range tests {
		if got := p.DelayFor(tt.remaining); got != tt.want {
			t.Errorf("DelayFor(%d) = %v, want %v", tt.remaining, got, tt.want)
		}
	}
}

func TestPacerBaseFloor(t *testing.T) {
	p := NewPacer(0)
	if p.Base() < minBaseDelay {
		t.Fatalf("Base() = %v, want at least %v", p.Base(), minBaseDelay)
	}
	p = NewPacer(time.Second)
	if p.Base() != time.Second {
		t.Fatalf("Base() = %v, want 1s", p.Base())
	}
}
