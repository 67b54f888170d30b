// Package core implements the per-validator Tendermint-family state
// machine: proposal/prevote/precommit with locking and valid-value
// tracking, round-robin proposer selection, weighted quorum tallying and
// the timeout discipline that drives round advancement. It is grounded on
// the teacher's consensus/tendermint/core package (handler.go, msg_store.go)
// generalized from a blockchain header pipeline down to opaque byte values.
package core

import (
	"context"
	"math/big"

	"github.com/tmsim/consensus/messages"
	"github.com/tmsim/consensus/tmcrypto"
)

// NewValidator builds a validator at height 0, round 0, step PROPOSE, with
// no lock and no valid value — the initial state spec.md §3 describes.
func NewValidator(id string, committee *Committee, fabric Fabric, sink EventSink, timeouts TimeoutConfig) *Validator {
	return &Validator{
		ID:             id,
		committee:      committee,
		fabric:         fabric,
		sink:           sink,
		newValue:       DefaultValueSource,
		timeouts:       timeouts,
		height:         big.NewInt(0),
		round:          0,
		step:           StepPropose,
		lockedRound:    -1,
		validRound:     -1,
		decisions:      make(map[uint64][]byte),
		prevoteTally:   make(map[tallyKey]uint64),
		precommitTally: make(map[tallyKey]uint64),
		log:            NewMsgStore(),
		timeoutCh:      make(chan timeoutEvent, 4),
		proposeT:       &timer{},
		prevoteT:       &timer{},
		precommitT:     &timer{},
	}
}

// WithValueSource overrides the function used to mint a fresh proposal
// value; tests use this for deterministic payloads.
func (v *Validator) WithValueSource(f ValueSource) *Validator {
	v.newValue = f
	return v
}

// HeightValue, RoundValue, StepValue, LockedValue, LockedRoundValue,
// ValidValueValue, ValidRoundValue and Decision expose read-only snapshots of validator state for tests
// and the launcher's observability layer. They are only safe to call from
// the goroutine that owns the validator (Run's caller) or after Run has
// returned — the state machine holds no internal lock by design
// (spec.md §5: "no internal locking required").
func (v *Validator) HeightValue() *big.Int    { return new(big.Int).Set(v.height) }
func (v *Validator) RoundValue() int64        { return v.round }
func (v *Validator) StepValue() Step          { return v.step }
func (v *Validator) LockedValue() []byte      { return v.lockedValue }
func (v *Validator) LockedRoundValue() int64  { return v.lockedRound }
func (v *Validator) ValidValueValue() []byte  { return v.validValue }
func (v *Validator) ValidRoundValue() int64   { return v.validRound }
func (v *Validator) Decision(h uint64) ([]byte, bool) {
	val, ok := v.decisions[h]
	return val, ok
}

// Run drives the validator's indefinite receive loop (spec.md §4.8) until
// ctx is cancelled. All state mutation happens on this single goroutine:
// the inbound queue and the timer channel are the only suspension points
// (spec.md §5).
func (v *Validator) Run(ctx context.Context) error {
	inbox, err := v.fabric.Inbox(v.ID)
	if err != nil {
		return err
	}

	v.startRound(0)

	for {
		select {
		case <-ctx.Done():
			v.stopTimers()
			return nil
		case m, ok := <-inbox:
			if !ok {
				return nil
			}
			v.handleMessage(m)
			if v.fatal != nil {
				v.stopTimers()
				return v.fatal
			}
		case ev := <-v.timeoutCh:
			v.handleTimeoutEvent(ev)
			if v.fatal != nil {
				v.stopTimers()
				return v.fatal
			}
		}
	}
}

func (v *Validator) stopTimers() {
	v.proposeT.stop()
	v.prevoteT.stop()
	v.precommitT.stop()
}

// startRound implements spec.md §4.5.
func (v *Validator) startRound(r int64) {
	v.round = r
	v.step = StepPropose

	proposer := v.committee.Proposer(v.height, r)
	v.sink.RoundStarted(v.ID, v.HeightValue(), r, proposer)

	if proposer == v.ID {
		value := v.validValue
		validRound := v.validRound
		if value == nil {
			value = v.newValue(v.height, r, v.ID)
			validRound = -1
		}
		msg := messages.NewProposal(v.height, r, v.ID, value, validRound, v.committee.Power(v.ID))
		v.bcast(msg)
	}

	v.armPropose(r)
}

func (v *Validator) armPropose(r int64) {
	h := v.HeightValue()
	v.proposeT.schedule(v.timeouts.propose(r), func() {
		v.timeoutCh <- timeoutEvent{kind: StepPropose, height: h, round: r}
	})
}

func (v *Validator) armPrevote(r int64) {
	h := v.HeightValue()
	v.prevoteT.schedule(v.timeouts.prevote(r), func() {
		v.timeoutCh <- timeoutEvent{kind: StepPrevote, height: h, round: r}
	})
}

func (v *Validator) armPrecommit(r int64) {
	h := v.HeightValue()
	v.precommitT.schedule(v.timeouts.precommit(r), func() {
		v.timeoutCh <- timeoutEvent{kind: StepPrecommit, height: h, round: r}
	})
}

// bcast broadcasts msg over the fabric and emits the matching sent event.
func (v *Validator) bcast(msg *messages.Message) {
	switch msg.Kind {
	case messages.Proposal:
		v.sink.ProposalSent(v.ID, msg.Height, msg.Round, tmcrypto.VID(msg.Payload))
	case messages.Prevote:
		v.sink.PrevoteSent(v.ID, msg.Height, msg.Round, msg.Payload)
	case messages.Precommit:
		v.sink.PrecommitSent(v.ID, msg.Height, msg.Round, msg.Payload)
	}
	_ = v.fabric.Broadcast(v.ID, msg)
}

func (v *Validator) sendPrevote(id []byte) {
	v.bcast(messages.NewPrevote(v.height, v.round, v.ID, id, v.committee.Power(v.ID)))
}

func (v *Validator) sendPrecommit(id []byte) {
	v.bcast(messages.NewPrecommit(v.height, v.round, v.ID, id, v.committee.Power(v.ID)))
}
