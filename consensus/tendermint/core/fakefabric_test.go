package core

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/tmsim/consensus/messages"
)

// fakeFabric is a zero-delay, zero-dependency stand-in for gossip.Fabric,
// used where a unit test wants synchronous, deterministic delivery
// instead of the real stochastic-delay bus.
type fakeFabric struct {
	mu    sync.Mutex
	boxes map[string]chan *messages.Message
	order []string
}

func newFakeFabric(ids ...string) *fakeFabric {
	f := &fakeFabric{boxes: make(map[string]chan *messages.Message)}
	for _, id := range ids {
		f.boxes[id] = make(chan *messages.Message, 256)
		f.order = append(f.order, id)
	}
	return f
}

func (f *fakeFabric) Inbox(pid string) (<-chan *messages.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.boxes[pid]
	if !ok {
		return nil, fmt.Errorf("unregistered: %s", pid)
	}
	return ch, nil
}

func (f *fakeFabric) Broadcast(from string, msg *messages.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		f.boxes[id] <- msg.Copy()
	}
	return nil
}

// noopSink discards every event; tests that only care about decisions use it.
type noopSink struct{}

func (noopSink) ProposalSent(string, *big.Int, int64, []byte)  {}
func (noopSink) PrevoteSent(string, *big.Int, int64, []byte)   {}
func (noopSink) PrecommitSent(string, *big.Int, int64, []byte) {}
func (noopSink) Locked(string, []byte, int64)                  {}
func (noopSink) Decided(string, []byte, *big.Int, int64)       {}
func (noopSink) TimeoutFired(string, string, *big.Int, int64)  {}
func (noopSink) RoundStarted(string, *big.Int, int64, string)  {}
