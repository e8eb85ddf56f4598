package app

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/protocol"
	"github.com/altiplano-labs/camlink/internal/testutil"
	"github.com/altiplano-labs/camlink/internal/transport"
	"github.com/altiplano-labs/camlink/pkg/log"
)

func testReceiverConfig() transport.ReceiverConfig {
	return transport.ReceiverConfig{
		ResponseTimeout: 300 * time.Millisecond,
		TransferTimeout: 5 * time.Second,
		AckEnabled:      true,
		MaxRetries:      3,
	}
}

func TestClientSnapshot(t *testing.T) {
	local, peer := testutil.NewLinkPair()
	store := newFakeStore()
	client := NewClient(local, store, testReceiverConfig(), log.NewNoopLogger())

	image := []byte("\xFF\xD8 image body \xFF\xD9")

	done := make(chan error, 1)
	var saved string
	go func() {
		var err error
		saved, _, err = client.Snapshot("full_hd", "")
		done <- err
	}()

	line, err := transport.ReadLine(peer, 2*time.Second)
	if err != nil {
		t.Fatalf("read command: %v", err)
	}
	// Resolution names are normalized to upper case on the wire.
	if line != "<FOTO:{size_name:FULL_HD}>" {
		t.Fatalf("command = %q", line)
	}

	if err := transport.WriteLine(peer, protocol.FormatOK(uint32(len(image)))); err != nil {
		t.Fatalf("write response: %v", err)
	}
	if _, err := peer.Write(protocol.EncodeFrame(image)); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if _, err := transport.ReadLine(peer, 2*time.Second); err != nil {
		t.Fatalf("await ack: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if saved == "" {
		t.Fatal("no saved path returned")
	}
	if len(store.saved) != 1 || !bytes.Equal(store.saved[0], image) {
		t.Fatal("received image not saved")
	}
}

func TestClientFetchSendsPath(t *testing.T) {
	local, peer := testutil.NewLinkPair()
	client := NewClient(local, newFakeStore(), testReceiverConfig(), log.NewNoopLogger())

	done := make(chan error, 1)
	go func() {
		_, _, err := client.Fetch("LAST", "")
		done <- err
	}()

	line, err := transport.ReadLine(peer, 2*time.Second)
	if err != nil {
		t.Fatalf("read command: %v", err)
	}
	if line != "<ENVIAR:{path:LAST}>" {
		t.Fatalf("command = %q", line)
	}

	if err := transport.WriteLine(peer, protocol.FormatBad(protocol.ReasonNoFile)); err != nil {
		t.Fatalf("write response: %v", err)
	}
	if err := <-done; !errors.Is(err, domain.ErrRemoteRejected) {
		t.Fatalf("Fetch error = %v, want ErrRemoteRejected", err)
	}
}

func TestClientRequestCapture(t *testing.T) {
	local, peer := testutil.NewLinkPair()
	client := NewClient(local, newFakeStore(), testReceiverConfig(), log.NewNoopLogger())

	done := make(chan error, 1)
	var size uint32
	go func() {
		var err error
		size, err = client.RequestCapture("THUMBNAIL")
		done <- err
	}()

	line, err := transport.ReadLine(peer, 2*time.Second)
	if err != nil {
		t.Fatalf("read command: %v", err)
	}
	if line != "<CAPTURAR:{size_name:THUMBNAIL}>" {
		t.Fatalf("command = %q", line)
	}
	if err := transport.WriteLine(peer, protocol.FormatOK(54321)); err != nil {
		t.Fatalf("write response: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("RequestCapture: %v", err)
	}
	if size != 54321 {
		t.Fatalf("size = %d, want 54321", size)
	}
}
