// Package messages defines the wire-shape of the three logical message
// kinds validators exchange: PROPOSAL, PREVOTE and PRECOMMIT. It mirrors
// the teacher's consensus/tendermint/messages package (tagged Go structs,
// RLP-free here since the fabric is in-process and never serializes).
package messages

import (
	"fmt"
	"math/big"
)

// Kind identifies which of the three logical messages a Message carries.
type Kind uint8

const (
	Proposal Kind = iota
	Prevote
	Precommit
)

func (k Kind) String() string {
	switch k {
	case Proposal:
		return "PROPOSAL"
	case Prevote:
		return "PREVOTE"
	case Precommit:
		return "PRECOMMIT"
	default:
		return "UNKNOWN"
	}
}

// Message is the tuple described in spec.md §3: (kind, height, round,
// sender, payload, valid_round, voting_power). For a Proposal, Payload is
// the full value; for Prevote/Precommit it is a value identifier, or nil.
// ValidRound is only meaningful on a Proposal.
type Message struct {
	Kind        Kind
	Height      *big.Int
	Round       int64
	Sender      string
	Payload     []byte
	ValidRound  int64
	VotingPower uint64
}

// NewProposal builds a PROPOSAL message. validRound is -1 for a fresh value.
func NewProposal(height *big.Int, round int64, sender string, value []byte, validRound int64, vp uint64) *Message {
	return &Message{
		Kind:        Proposal,
		Height:      height,
		Round:       round,
		Sender:      sender,
		Payload:     value,
		ValidRound:  validRound,
		VotingPower: vp,
	}
}

// NewPrevote builds a PREVOTE message. id is nil for a vote for nil.
func NewPrevote(height *big.Int, round int64, sender string, id []byte, vp uint64) *Message {
	return &Message{
		Kind:        Prevote,
		Height:      height,
		Round:       round,
		Sender:      sender,
		Payload:     id,
		ValidRound:  -1,
		VotingPower: vp,
	}
}

// NewPrecommit builds a PRECOMMIT message. id is nil for a vote for nil.
func NewPrecommit(height *big.Int, round int64, sender string, id []byte, vp uint64) *Message {
	return &Message{
		Kind:        Precommit,
		Height:      height,
		Round:       round,
		Sender:      sender,
		Payload:     id,
		ValidRound:  -1,
		VotingPower: vp,
	}
}

// Copy returns a value copy of m with its own Payload backing array, since
// the fabric copies messages on broadcast rather than sharing one instance
// across recipients (spec.md §3, "Ownership").
func (m *Message) Copy() *Message {
	cp := *m
	if m.Payload != nil {
		cp.Payload = append([]byte(nil), m.Payload...)
	}
	if m.Height != nil {
		cp.Height = new(big.Int).Set(m.Height)
	}
	return &cp
}

func (m *Message) String() string {
	return fmt.Sprintf("{%s h=%s r=%d from=%s vp=%d}", m.Kind, m.Height, m.Round, m.Sender, m.VotingPower)
}
