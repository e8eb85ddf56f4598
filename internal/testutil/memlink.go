// Package testutil provides in-memory test doubles for the serial link.
package testutil

import (
	"io"
	"sync"
	"time"
)

// byteQueue is a growable FIFO shared by the two ends of a pair.
type byteQueue struct {
	mu     sync.Mutex
	buf    []byte
	closed bool
}

func (q *byteQueue) write(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0, io.ErrClosedPipe
	}
	q.buf = append(q.buf, p...)
	return len(p), nil
}

func (q *byteQueue) read(p []byte) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return 0, q.closed
	}
	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	return n, false
}

func (q *byteQueue) reset() {
	q.mu.Lock()
	q.buf = nil
	q.mu.Unlock()
}

func (q *byteQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// MemLink is one end of an in-memory duplex byte channel implementing the
// serial link contract, including the read-timeout semantics of a real
// port: Read returns (0, nil) when the timeout elapses with no data.
type MemLink struct {
	in  *byteQueue
	out *byteQueue

	mu      sync.Mutex
	timeout time.Duration
}

// NewLinkPair returns two connected ends. Bytes written to one are read
// from the other.
func NewLinkPair() (*MemLink, *MemLink) {
	a := &byteQueue{}
	b := &byteQueue{}
	return &MemLink{in: a, out: b, timeout: 100 * time.Millisecond},
		&MemLink{in: b, out: a, timeout: 100 * time.Millisecond}
}

func (l *MemLink) Read(p []byte) (int, error) {
	l.mu.Lock()
	timeout := l.timeout
	l.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for {
		n, closed := l.in.read(p)
		if n > 0 {
			return n, nil
		}
		if closed {
			return 0, io.EOF
		}
		if time.Now().After(deadline) {
			return 0, nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (l *MemLink) Write(p []byte) (int, error) {
	return l.out.write(p)
}

func (l *MemLink) Close() error {
	l.in.close()
	l.out.close()
	return nil
}

func (l *MemLink) SetReadTimeout(d time.Duration) error {
	l.mu.Lock()
	l.timeout = d
	l.mu.Unlock()
	return nil
}

// Drain is a no-op; in-memory writes are immediate.
func (l *MemLink) Drain() error { return nil }

func (l *MemLink) ResetInputBuffer() error {
	l.in.reset()
	return nil
}

func (l *MemLink) ResetOutputBuffer() error {
	l.out.reset()
	return nil
}
