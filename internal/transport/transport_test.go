package transport

import (
	"bytes"
	"testing"
	"time"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/testutil"
	"github.com/altiplano-labs/camlink/pkg/log"
)

// Sender and receiver talking over one in-memory link, end to end.
func TestSenderReceiverEndToEnd(t *testing.T) {
	senderLink, receiverLink := testutil.NewLinkPair()

	sender := NewSender(senderLink, testSenderConfig(), log.NewNoopLogger())
	recv := NewReceiver(receiverLink, testReceiverConfig(), log.NewNoopLogger())

	payload := jpegPayload(20000)

	recvDone := make(chan error, 1)
	var res *Result
	go func() {
		var err error
		res, err = recv.Fetch()
		recvDone <- err
	}()

	session, err := sender.Send(payload)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := <-recvDone; err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if session.State != domain.SessionDone {
		t.Fatalf("sender state = %v, want Done", session.State)
	}
	if !bytes.Equal(res.Payload, payload) {
		t.Fatal("received payload differs from sent payload")
	}
	if !res.JPEGValid {
		t.Fatal("JPEG magic check failed")
	}
	if res.Corrections != 0 {
		t.Fatalf("corrections = %d on a clean link", res.Corrections)
	}
}

func TestReadLineStripsCarriageReturn(t *testing.T) {
	local, peer := testutil.NewLinkPair()

	if _, err := peer.Write([]byte("OK|123\r\nnext")); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err := ReadLine(local, time.Second)
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "OK|123" {
		t.Fatalf("line = %q", line)
	}
}

func TestReadLineTimeout(t *testing.T) {
	local, _ := testutil.NewLinkPair()

	start := time.Now()
	_, err := ReadLine(local, 150*time.Millisecond)
	if err == nil {
		t.Fatal("ReadLine on silent link succeeded")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout took %v", elapsed)
	}
}
