package gossip

import (
	"math/big"
	"testing"
	"time"

	"github.com/tmsim/consensus/messages"
)

func TestRegisterRejectsDuplicate(t *testing.T) {
	f := NewFabricWithDelay(time.Millisecond, 2*time.Millisecond)
	defer f.Close()

	if err := f.Register("A"); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := f.Register("A"); err == nil {
		t.Fatalf("expected ConfigurationError on duplicate registration")
	}
}

func TestInboxUnregisteredErrors(t *testing.T) {
	f := NewFabricWithDelay(time.Millisecond, 2*time.Millisecond)
	defer f.Close()

	if _, err := f.Inbox("ghost"); err == nil {
		t.Fatalf("expected ConfigurationError for unregistered pid")
	}
}

func TestBroadcastDeliversToEveryone(t *testing.T) {
	f := NewFabricWithDelay(time.Millisecond, 3*time.Millisecond)
	defer f.Close()

	ids := []string{"A", "B", "C"}
	inboxes := make(map[string]<-chan *messages.Message, len(ids))
	for _, id := range ids {
		if err := f.Register(id); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
		in, err := f.Inbox(id)
		if err != nil {
			t.Fatalf("inbox %s: %v", id, err)
		}
		inboxes[id] = in
	}

	msg := messages.NewProposal(big.NewInt(1), 0, "A", []byte("v"), -1, 1)
	if err := f.Broadcast("A", msg); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	for _, id := range ids {
		select {
		case got := <-inboxes[id]:
			if string(got.Payload) != "v" {
				t.Errorf("%s got wrong payload %q", id, got.Payload)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s never received the broadcast", id)
		}
	}
}

func TestCopiesAreIndependentAcrossRecipients(t *testing.T) {
	f := NewFabricWithDelay(time.Millisecond, 2*time.Millisecond)
	defer f.Close()

	for _, id := range []string{"A", "B"} {
		if err := f.Register(id); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	inA, _ := f.Inbox("A")
	inB, _ := f.Inbox("B")

	msg := messages.NewProposal(big.NewInt(1), 0, "A", []byte("v"), -1, 1)
	_ = f.Broadcast("A", msg)

	gotA := <-inA
	gotB := <-inB
	gotA.Payload[0] = 'X'
	if gotB.Payload[0] == 'X' {
		t.Fatalf("recipients share a backing array")
	}
}
