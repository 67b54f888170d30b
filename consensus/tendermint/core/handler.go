package core

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/tmsim/consensus/messages"
	"github.com/tmsim/consensus/tmcrypto"
)

var bigOne = big.NewInt(1)

// handleMessage is the single entry point for every inbound message
// (spec.md §4.7): the message is appended to the log unconditionally,
// before it is looked at, because a message's value may only become
// resolvable once a later PROPOSAL arrives (the deferred-resolution case
// spec.md §9 calls out).
func (v *Validator) handleMessage(m *messages.Message) {
	v.log.Save(m)

	switch m.Kind {
	case messages.Proposal:
		v.handleProposal(m)
	case messages.Prevote:
		v.handlePrevote(m)
	case messages.Precommit:
		v.handlePrecommit(m)
	}
}

// handleProposal implements the PROPOSAL branch of spec.md §4.7. A
// proposal for any other height or round than the validator's current
// one is ignored. A proposal for the current (height, round) casts this
// validator's own prevote only while still in the PROPOSE step; one that
// arrives after the step already moved past PROPOSE skips straight to the
// deferred-quorum retry below.
func (v *Validator) handleProposal(m *messages.Message) {
	if m.Height.Cmp(v.height) != 0 || m.Round != v.round {
		return
	}

	if v.step == StepPropose {
		valid := len(m.Payload) > 0
		if valid && v.lockedRound != -1 && !bytes.Equal(v.lockedValue, m.Payload) {
			valid = false
		}

		if valid {
			v.sendPrevote(tmcrypto.VID(m.Payload))
		} else {
			v.sendPrevote(nil)
		}
		v.step = StepPrevote
		v.armPrevote(v.round)
	}

	// A prevote or precommit quorum for this proposal's round may already
	// have arrived before the proposal itself did (messages race each
	// other over the fabric), including after this validator's own
	// propose-timeout already advanced its step past PROPOSE. Re-check
	// both now that the value is known, regardless of current step.
	id := vidKey(tmcrypto.VID(m.Payload))
	v.tryPrevoteQuorum(m.Round, id)
	v.tryPrecommitQuorum(m.Round, id)
}

// handlePrevote implements the PREVOTE branch of spec.md §4.7. Unlike
// PROPOSAL, a prevote is accepted at any round of the current height: a
// validator running behind still wants to count votes cast for rounds it
// has not reached yet.
func (v *Validator) handlePrevote(m *messages.Message) {
	if m.Height.Cmp(v.height) != 0 {
		return
	}
	id := vidKey(m.Payload)
	key := tallyKey{height: v.height.Uint64(), round: m.Round, id: id}
	v.prevoteTally[key] += m.VotingPower
	v.tryPrevoteQuorum(m.Round, id)
}

// tryPrevoteQuorum checks whether the prevote tally for (height, round,
// id) has reached quorum and, if so, attempts the lock transition
// (spec.md §4.7, step 2). A nil id (no-vote) never locks. The check is
// idempotent: once step advances past PREVOTE it becomes a no-op, so
// calling it redundantly from both handlePrevote and handleProposal is
// safe.
func (v *Validator) tryPrevoteQuorum(round int64, id string) {
	if id == "" || v.step != StepPrevote {
		return
	}
	key := tallyKey{height: v.height.Uint64(), round: round, id: id}
	if v.prevoteTally[key] < v.committee.Q() {
		return
	}

	value := v.findProposalValue(round, id)
	if value == nil {
		// Quorum reached but the proposal that would resolve it hasn't
		// arrived yet. Deferred: a later PROPOSAL retries this check.
		return
	}

	v.lockedValue = value
	v.lockedRound = v.round
	v.validValue = value
	v.validRound = v.round
	if (v.lockedValue == nil) != (v.lockedRound == -1) {
		v.raise("I3", fmt.Sprintf("lockedValue/lockedRound disagree on nil-ness: value=%x round=%d", v.lockedValue, v.lockedRound))
	}
	v.sink.Locked(v.ID, tmcrypto.VID(value), v.round)

	v.sendPrecommit(tmcrypto.VID(value))
	v.step = StepPrecommit
	v.armPrecommit(v.round)

	v.tryPrecommitQuorum(round, id)
}

// handlePrecommit implements the PRECOMMIT branch of spec.md §4.7.
func (v *Validator) handlePrecommit(m *messages.Message) {
	if m.Height.Cmp(v.height) != 0 {
		return
	}
	id := vidKey(m.Payload)
	key := tallyKey{height: v.height.Uint64(), round: m.Round, id: id}
	v.precommitTally[key] += m.VotingPower
	v.tryPrecommitQuorum(m.Round, id)
}

// tryPrecommitQuorum checks whether the precommit tally for (height,
// round, id) has reached quorum and, if so, decides and advances to the
// next height (spec.md §4.7, step 3). A height decides at most once (I1):
// a second quorum resolving to the same value is a harmless duplicate and
// is dropped, but one resolving to a different value is a broken safety
// invariant and raises a fatal InternalInvariantViolation.
func (v *Validator) tryPrecommitQuorum(round int64, id string) {
	if id == "" {
		return
	}
	h := v.height.Uint64()
	key := tallyKey{height: h, round: round, id: id}
	if v.precommitTally[key] < v.committee.Q() {
		return
	}

	value := v.findProposalValue(round, id)
	if value == nil {
		return
	}

	if prior, decided := v.decisions[h]; decided {
		if !bytes.Equal(prior, value) {
			v.raise("I1", fmt.Sprintf("height %d already decided %x, quorum now also resolves %x", h, prior, value))
		}
		return
	}

	v.decisions[h] = value
	v.sink.Decided(v.ID, tmcrypto.VID(value), v.HeightValue(), round)
	v.advanceHeight()
}

// findProposalValue resolves a vote identifier back to the proposal
// value it stands for by looking it up in the message store (spec.md
// §4.7's "search backwards through message_log").
func (v *Validator) findProposalValue(round int64, id string) []byte {
	return v.log.FindProposalValue(v.height.Uint64(), round, id)
}

// advanceHeight resets all per-height vote tallies and lock/valid-value
// state and starts round 0 of the next height (spec.md §4.7's "decide"
// action). The decided height's messages (and any older ones) are pruned
// from the message store right away via DeleteMsgsBeforeHeight; messages
// already buffered for the new height are kept.
func (v *Validator) advanceHeight() {
	decided := v.height.Uint64()
	v.height = new(big.Int).Add(v.height, bigOne)
	v.lockedValue = nil
	v.lockedRound = -1
	v.validValue = nil
	v.validRound = -1
	if (v.lockedValue == nil) != (v.lockedRound == -1) {
		v.raise("I3", fmt.Sprintf("lockedValue/lockedRound disagree on nil-ness after height advance: value=%x round=%d", v.lockedValue, v.lockedRound))
	}
	v.prevoteTally = make(map[tallyKey]uint64)
	v.precommitTally = make(map[tallyKey]uint64)
	v.log.DeleteMsgsBeforeHeight(decided)
	v.startRound(0)
}

// handleTimeoutEvent dispatches a fired timer to its step-specific
// handler (spec.md §4.6).
func (v *Validator) handleTimeoutEvent(ev timeoutEvent) {
	switch ev.kind {
	case StepPropose:
		v.handleTimeoutPropose(ev)
	case StepPrevote:
		v.handleTimeoutPrevote(ev)
	case StepPrecommit:
		v.handleTimeoutPrecommit(ev)
	}
}

// handleTimeoutPropose fires the nil prevote when no proposal arrived in
// time. Guarded on (height, round, step): a timer armed for a round the
// validator has since left is a silent no-op (spec.md §4.6).
func (v *Validator) handleTimeoutPropose(ev timeoutEvent) {
	if v.height.Cmp(ev.height) != 0 || v.round != ev.round || v.step != StepPropose {
		return
	}
	v.sink.TimeoutFired(v.ID, "PROPOSE", v.HeightValue(), v.round)
	v.sendPrevote(nil)
	v.step = StepPrevote
	v.armPrevote(v.round)
}

// handleTimeoutPrevote fires the nil precommit when prevoting stalled
// without quorum. Same (height, round, step) guard as propose.
func (v *Validator) handleTimeoutPrevote(ev timeoutEvent) {
	if v.height.Cmp(ev.height) != 0 || v.round != ev.round || v.step != StepPrevote {
		return
	}
	v.sink.TimeoutFired(v.ID, "PREVOTE", v.HeightValue(), v.round)
	v.sendPrecommit(nil)
	v.step = StepPrecommit
	v.armPrecommit(v.round)
}

// handleTimeoutPrecommit advances to the next round when precommitting
// stalled without quorum. Unlike the other two timeouts this guard
// ignores step: a stalled precommit round must advance even if a late
// message already pushed the step machinery further within the same
// round (spec.md §4.6).
func (v *Validator) handleTimeoutPrecommit(ev timeoutEvent) {
	if v.height.Cmp(ev.height) != 0 || v.round != ev.round {
		return
	}
	v.sink.TimeoutFired(v.ID, "PRECOMMIT", v.HeightValue(), v.round)
	v.startRound(v.round + 1)
}
