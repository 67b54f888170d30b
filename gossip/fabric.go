// Package gossip implements the in-process delay-injecting bus that stands
// in for a partially synchronous network (spec.md §4.2). Delivery is
// dispatched through a bounded worker pool, adapted from the teacher's
// TxSenderCacher (core/tx_cacher.go): a buffered task channel feeding
// runtime.NumCPU() background goroutines, with the same atomic
// compare-and-swap shutdown flag.
package gossip

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set"

	"github.com/tmsim/consensus/messages"
)

// MinDelay and MaxDelay bound the per-recipient stochastic delivery delay
// (spec.md §4.2: "stochastic delay drawn uniformly from [10ms, 50ms]").
const (
	MinDelay = 10 * time.Millisecond
	MaxDelay = 50 * time.Millisecond
)

// ConfigurationError reports a programmer error in fabric setup: duplicate
// registration or use of an unregistered validator id. Per spec.md §7 this
// is fatal, not a silent consensus-level anomaly.
type ConfigurationError struct {
	Op  string
	Pid string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gossip: %s: validator %q", e.Op, e.Pid)
}

type deliveryTask struct {
	to  string
	msg *messages.Message
}

// Fabric is the registry of per-validator inbound queues plus the
// broadcast primitive described in spec.md §4.2.
type Fabric struct {
	mu      sync.RWMutex
	queues  map[string]chan *messages.Message
	known   mapset.Set
	order   []string // fixed insertion order, for deterministic broadcast fan-out
	tasks   chan deliveryTask
	closed  *uint32
	wg      sync.WaitGroup
	sent    uint64 // diagnostic counter, atomic
	delayFn func() time.Duration
}

// NewFabric creates a fabric with a worker pool sized to runtime.NumCPU(), the
// same sizing rule tx_cacher.go applies to its recovery pool, using the
// default [MinDelay, MaxDelay] span.
func NewFabric() *Fabric {
	return NewFabricWithDelay(MinDelay, MaxDelay)
}

// NewFabricWithDelay is NewFabric with a caller-chosen delay span, so a
// run's config.GossipMinDelay/GossipMaxDelay can replace the package
// defaults without touching the delivery machinery.
func NewFabricWithDelay(min, max time.Duration) *Fabric {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	f := &Fabric{
		queues: make(map[string]chan *messages.Message),
		known:  mapset.NewSet(),
		tasks:  make(chan deliveryTask, 3*workers),
		closed: new(uint32),
	}
	f.delayFn = func() time.Duration { return randomDelay(min, max) }
	for i := 0; i < workers; i++ {
		f.wg.Add(1)
		go f.deliver()
	}
	return f
}

func randomDelay(min, max time.Duration) time.Duration {
	span := max - min
	if span <= 0 {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(span)+1))
}

// Register creates pid's inbound queue. It must be called once per
// participating validator before any Send/Broadcast targets it.
// Registering the same pid twice is a ConfigurationError.
func (f *Fabric) Register(pid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.known.Contains(pid) {
		return &ConfigurationError{Op: "duplicate registration", Pid: pid}
	}
	f.known.Add(pid)
	f.order = append(f.order, pid)
	f.queues[pid] = make(chan *messages.Message, 256)
	return nil
}

// Inbox returns pid's inbound queue for the validator's receive loop.
func (f *Fabric) Inbox(pid string) (<-chan *messages.Message, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ch, ok := f.queues[pid]
	if !ok {
		return nil, &ConfigurationError{Op: "inbox of unregistered validator", Pid: pid}
	}
	return ch, nil
}

// Send schedules msg for delivery to `to` after an independently drawn
// delay in the fabric's [min, max] span ([MinDelay, MaxDelay] for
// NewFabric, the caller's bounds for NewFabricWithDelay). Enqueue onto the task channel is FIFO and
// safe for concurrent callers; actual delivery order across distinct
// sends is not guaranteed, since each delivery sleeps for its own
// independently drawn delay (spec.md §5: "Validators MUST NOT assume
// causal delivery across pairs").
func (f *Fabric) Send(to string, msg *messages.Message) error {
	f.mu.RLock()
	_, ok := f.queues[to]
	f.mu.RUnlock()
	if !ok {
		return &ConfigurationError{Op: "send to unregistered validator", Pid: to}
	}
	if atomic.LoadUint32(f.closed) == 1 {
		return nil
	}
	atomic.AddUint64(&f.sent, 1)
	f.tasks <- deliveryTask{to: to, msg: msg.Copy()}
	return nil
}

// Broadcast sends msg to every registered validator, including from,
// drawing an independent delay per recipient (spec.md §4.2).
func (f *Fabric) Broadcast(from string, msg *messages.Message) error {
	f.mu.RLock()
	recipients := append([]string(nil), f.order...)
	f.mu.RUnlock()
	for _, pid := range recipients {
		if err := f.Send(pid, msg); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fabric) deliver() {
	defer f.wg.Done()
	for t := range f.tasks {
		time.Sleep(f.delayFn())
		f.mu.RLock()
		ch, ok := f.queues[t.to]
		f.mu.RUnlock()
		if ok {
			ch <- t.msg
		}
	}
}

// Close stops accepting new deliveries and waits for in-flight ones to
// drain, mirroring TxSenderCacher.Close()'s CAS-guarded channel close.
func (f *Fabric) Close() {
	if atomic.CompareAndSwapUint32(f.closed, 0, 1) {
		close(f.tasks)
		f.wg.Wait()
	}
}
