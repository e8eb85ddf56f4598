package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/protocol"
	"github.com/altiplano-labs/camlink/internal/testutil"
	"github.com/altiplano-labs/camlink/internal/transport"
	"github.com/altiplano-labs/camlink/pkg/log"
)

// fakeCamera returns a fixed image or a scripted error.
type fakeCamera struct {
	image []byte
	err   error

	lastResolution string
}

func (c *fakeCamera) Capture(_ context.Context, resolution string) ([]byte, error) {
	c.lastResolution = resolution
	if c.err != nil {
		return nil, c.err
	}
	return c.image, nil
}

// fakeStore keeps images in memory keyed by handle. Safe for concurrent
// use; the server goroutine and the test goroutine both touch it.
type fakeStore struct {
	mu     sync.Mutex
	images map[string][]byte
	last   string
	saved  [][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{images: map[string][]byte{}}
}

func (s *fakeStore) SaveLast(data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = "/img/last.jpg"
	s.images[s.last] = data
	return s.last, nil
}

func (s *fakeStore) Resolve(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == domain.PathLast {
		if s.last == "" {
			return "", fmt.Errorf("no image captured yet")
		}
		return s.last, nil
	}
	if _, ok := s.images[path]; !ok {
		return "", fmt.Errorf("no such image: %s", path)
	}
	return path, nil
}

func (s *fakeStore) Load(handle string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.images[handle]
	if !ok {
		return nil, fmt.Errorf("no such image: %s", handle)
	}
	return data, nil
}

func (s *fakeStore) SaveReceived(data []byte, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" {
		path = "/img/received.jpg"
	}
	s.images[path] = data
	s.saved = append(s.saved, data)
	return path, nil
}

func (s *fakeStore) lastImage() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == "" {
		return nil
	}
	return s.images[s.last]
}

func testSenderConfig() transport.SenderConfig {
	return transport.SenderConfig{
		ChunkSize:  protocol.DefaultChunkSize,
		BaseDelay:  time.Millisecond,
		AckTimeout: 300 * time.Millisecond,
		AckEnabled: true,
		MaxRetries: 3,
	}
}

// startServer runs a server over one end of a fresh pair and returns the
// peer end. The server is stopped and awaited at test cleanup.
func startServer(t *testing.T, camera *fakeCamera, store *fakeStore) *testutil.MemLink {
	t.Helper()
	local, peer := testutil.NewLinkPair()
	srv := NewServer(local, camera, store, testSenderConfig(), log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("server exit: %v", err)
		}
	})
	return peer
}

// expectResponse reads lines until a response token arrives.
func expectResponse(t *testing.T, peer *testutil.MemLink) protocol.Response {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatal("no response from server")
		}
		line, err := transport.ReadLine(peer, remaining)
		if err != nil {
			t.Fatalf("read response: %v", err)
		}
		if resp, ok := protocol.ParseResponse(line); ok {
			return resp
		}
	}
}

// receiveFrame consumes one full envelope from the peer end.
func receiveFrame(t *testing.T, peer *testutil.MemLink, want int) []byte {
	t.Helper()
	buf := make([]byte, protocol.MarkerLen+protocol.LengthSize+want+protocol.MarkerLen+len(protocol.EndText))
	deadline := time.Now().Add(5 * time.Second)
	got := 0
	for got < len(buf) {
		if time.Now().After(deadline) {
			t.Fatalf("frame read stalled at %d/%d bytes", got, len(buf))
		}
		n, err := peer.Read(buf[got:])
		if err != nil {
			t.Fatalf("frame read: %v", err)
		}
		got += n
	}
	declared := binary.BigEndian.Uint32(buf[protocol.MarkerLen:])
	if int(declared) != want {
		t.Fatalf("frame declares %d bytes, want %d", declared, want)
	}
	return buf[protocol.MarkerLen+protocol.LengthSize : protocol.MarkerLen+protocol.LengthSize+want]
}

func TestServerCaptureAnnouncesSize(t *testing.T) {
	camera := &fakeCamera{image: []byte("jpegjpegjpeg")}
	store := newFakeStore()
	peer := startServer(t, camera, store)

	if err := transport.WriteLine(peer, "<CAPTURAR:{size_name:FULL_HD}>\r\n"); err != nil {
		t.Fatalf("write command: %v", err)
	}

	resp := expectResponse(t, peer)
	if !resp.OK || resp.Length != 12 {
		t.Fatalf("response = %+v", resp)
	}
	if camera.lastResolution != "FULL_HD" {
		t.Fatalf("camera resolution = %q", camera.lastResolution)
	}
	if !bytes.Equal(store.lastImage(), camera.image) {
		t.Fatal("capture not stored as last image")
	}
}

func TestServerSendLastImage(t *testing.T) {
	store := newFakeStore()
	image := []byte("stored image bytes")
	store.SaveLast(image)
	peer := startServer(t, &fakeCamera{}, store)

	if err := transport.WriteLine(peer, "<ENVIAR:{path:LAST}>\r\n"); err != nil {
		t.Fatalf("write command: %v", err)
	}

	resp := expectResponse(t, peer)
	if !resp.OK || int(resp.Length) != len(image) {
		t.Fatalf("response = %+v", resp)
	}
	payload := receiveFrame(t, peer, len(image))
	if !bytes.Equal(payload, image) {
		t.Fatal("transferred payload differs from stored image")
	}
	if err := transport.WriteLine(peer, protocol.FormatAckOK()); err != nil {
		t.Fatalf("write ack: %v", err)
	}
}

func TestServerRejectsMalformedCommand(t *testing.T) {
	peer := startServer(t, &fakeCamera{image: []byte("x")}, newFakeStore())

	if err := transport.WriteLine(peer, "<FOTO{size_name:HD_READY}>\r\n"); err != nil {
		t.Fatalf("write command: %v", err)
	}

	resp := expectResponse(t, peer)
	if resp.OK || resp.Reason != protocol.ReasonBadCommand {
		t.Fatalf("response = %+v, want BAD|BAD_CMD", resp)
	}
}

func TestServerRejectsMissingImage(t *testing.T) {
	peer := startServer(t, &fakeCamera{}, newFakeStore())

	// Nothing has been captured yet.
	if err := transport.WriteLine(peer, "<ENVIAR:{path:LAST}>\r\n"); err != nil {
		t.Fatalf("write command: %v", err)
	}

	resp := expectResponse(t, peer)
	if resp.OK || resp.Reason != protocol.ReasonNoFile {
		t.Fatalf("response = %+v, want BAD|NO_FILE", resp)
	}
}

func TestServerRejectsCaptureFailure(t *testing.T) {
	camera := &fakeCamera{err: domain.ErrCaptureFailure}
	peer := startServer(t, camera, newFakeStore())

	if err := transport.WriteLine(peer, "<CAPTURAR:{size_name:THUMBNAIL}>\r\n"); err != nil {
		t.Fatalf("write command: %v", err)
	}

	resp := expectResponse(t, peer)
	if resp.OK || resp.Reason != protocol.ReasonNoImage {
		t.Fatalf("response = %+v, want BAD|NO_IMAGE", resp)
	}
}

func TestServerSnapshotStoresAfterVerification(t *testing.T) {
	image := []byte("fresh capture bytes")
	camera := &fakeCamera{image: image}
	store := newFakeStore()
	peer := startServer(t, camera, store)

	if err := transport.WriteLine(peer, "<FOTO:{size_name:LOW_LIGHT}>\r\n"); err != nil {
		t.Fatalf("write command: %v", err)
	}

	resp := expectResponse(t, peer)
	if !resp.OK || int(resp.Length) != len(image) {
		t.Fatalf("response = %+v", resp)
	}
	if store.lastImage() != nil {
		t.Fatal("capture stored before the transfer was verified")
	}

	payload := receiveFrame(t, peer, len(image))
	if !bytes.Equal(payload, image) {
		t.Fatal("transferred payload differs from capture")
	}
	if err := transport.WriteLine(peer, protocol.FormatAckOK()); err != nil {
		t.Fatalf("write ack: %v", err)
	}

	// The verified capture becomes LAST shortly after the ACK.
	deadline := time.Now().Add(2 * time.Second)
	for store.lastImage() == nil {
		if time.Now().After(deadline) {
			t.Fatal("verified capture never stored as last image")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
