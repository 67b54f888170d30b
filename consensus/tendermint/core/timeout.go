package core

import (
	"math/big"
	"time"
)

// TimeoutConfig holds the base durations and the per-round growth factor
// spec.md §4.6 describes: delay = base + round*Delta.
type TimeoutConfig struct {
	Propose   time.Duration
	Prevote   time.Duration
	Precommit time.Duration
	Delta     time.Duration
}

// DefaultTimeouts matches the reference implementation's constants
// (spec.md §4.5, and init_prop/init_prev/init_pcom/delta in the original
// prototype's Node.__init__).
var DefaultTimeouts = TimeoutConfig{
	Propose:   200 * time.Millisecond,
	Prevote:   200 * time.Millisecond,
	Precommit: 200 * time.Millisecond,
	Delta:     50 * time.Millisecond,
}

func (c TimeoutConfig) propose(round int64) time.Duration {
	return c.Propose + time.Duration(round)*c.Delta
}

func (c TimeoutConfig) prevote(round int64) time.Duration {
	return c.Prevote + time.Duration(round)*c.Delta
}

func (c TimeoutConfig) precommit(round int64) time.Duration {
	return c.Precommit + time.Duration(round)*c.Delta
}

// timeoutEvent is what an armed timer posts back to the validator's main
// loop when it fires. The (h, r) it carries is the coordinate pair the
// timer was armed with; the main loop re-checks it against live state
// before acting (the "arm and check" pattern of spec.md §9), so a timer
// that outlives the round it was armed for is a silent no-op.
type timeoutEvent struct {
	kind   Step
	height *big.Int
	round  int64
}

// timer wraps time.AfterFunc so arming a new timeout implicitly
// invalidates a still-pending one of the same kind. Per spec.md §9 this
// "arm and check" discipline is preferred over bookkeeping cancellation:
// a stale fire is simply dropped by the (h, r, step) guard in handler.go.
type timer struct {
	t *time.Timer
}

func (tm *timer) schedule(d time.Duration, fire func()) {
	if tm.t != nil {
		tm.t.Stop()
	}
	tm.t = time.AfterFunc(d, fire)
}

func (tm *timer) stop() {
	if tm.t != nil {
		tm.t.Stop()
	}
}
