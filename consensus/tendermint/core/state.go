package core

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Step is the phase within a (height, round): spec.md §3.
type Step int

const (
	StepPropose Step = iota
	StepPrevote
	StepPrecommit
)

func (s Step) String() string {
	switch s {
	case StepPropose:
		return "propose"
	case StepPrevote:
		return "prevote"
	case StepPrecommit:
		return "precommit"
	default:
		return "unknown"
	}
}

// tallyKey is the (height, round, identifier-or-nil) triple spec.md §3
// keys prevote_tally/precommit_tally by. The identifier is stored as a
// hex string ("" stands for nil) so the key is comparable.
type tallyKey struct {
	height uint64
	round  int64
	id     string
}

func vidKey(vid []byte) string {
	if len(vid) == 0 {
		return ""
	}
	return fmt.Sprintf("%x", vid)
}

// ValueSource produces the opaque value a proposer broadcasts when it has
// no valid_value to re-propose. The reference implementation just needs
// any unique non-nil value (spec.md §4.5); this one encodes the proposing
// coordinates plus a UUID tail for uniqueness across rounds and runs.
type ValueSource func(height *big.Int, round int64, pid string) []byte

// DefaultValueSource is the ValueSource used unless the caller overrides
// it (e.g. in tests that need deterministic proposal values).
func DefaultValueSource(height *big.Int, round int64, pid string) []byte {
	return []byte(fmt.Sprintf("h=%s,r=%d,from=%s,rnd=%s", height.String(), round, pid, uuid.NewString()))
}

// Validator is one consensus participant's state machine: spec.md §3's
// "Validator state" table.
type Validator struct {
	ID        string
	committee *Committee
	fabric    Fabric
	sink      EventSink
	newValue  ValueSource
	timeouts  TimeoutConfig

	height *big.Int
	round  int64
	step   Step

	lockedValue []byte
	lockedRound int64
	validValue  []byte
	validRound  int64

	decisions map[uint64][]byte

	prevoteTally   map[tallyKey]uint64
	precommitTally map[tallyKey]uint64
	log            *MsgStore

	timeoutCh  chan timeoutEvent
	proposeT   *timer
	prevoteT   *timer
	precommitT *timer

	// fatal latches the first InternalInvariantViolation raised while
	// handling a message or timeout; Run checks it after every event and
	// aborts rather than continuing on state it can no longer trust.
	fatal error
}
