package core

import (
	"math/big"

	"github.com/pkg/errors"
)

// Committee is the fixed, fabric-wide mapping from validator identifier to
// voting power for the lifetime of a run (spec.md §3), plus the
// deterministic proposer-selection function of spec.md §4.3 and the
// quorum arithmetic of spec.md §4.4.
type Committee struct {
	order []string
	power map[string]uint64
	total uint64
}

// NewCommittee validates and builds a Committee. order fixes the
// insertion order spec.md §4.3 requires for proposer selection to be
// reproducible across validators that hold the same power map.
func NewCommittee(order []string, power map[string]uint64) (*Committee, error) {
	if len(order) == 0 {
		return nil, errors.Wrap(&ConfigurationError{Reason: "empty validator set"}, "build committee")
	}
	seen := make(map[string]bool, len(order))
	var total uint64
	for _, id := range order {
		if seen[id] {
			return nil, errors.Wrap(&ConfigurationError{Reason: "duplicate validator id " + id}, "build committee")
		}
		seen[id] = true
		p, ok := power[id]
		if !ok || p == 0 {
			return nil, errors.Wrap(&ConfigurationError{Reason: "zero or missing voting power for " + id}, "build committee")
		}
		total += p
	}
	return &Committee{
		order: append([]string(nil), order...),
		power: power,
		total: total,
	}, nil
}

// TotalPower is N in spec.md §4.4.
func (c *Committee) TotalPower() uint64 { return c.total }

// F is the classical one-third fault threshold: (N-1)/3, integer division.
func (c *Committee) F() uint64 { return (c.total - 1) / 3 }

// Q is the quorum size: 2F+1.
func (c *Committee) Q() uint64 { return 2*c.F() + 1 }

// Power returns id's voting power, or 0 if id is not a committee member.
func (c *Committee) Power(id string) uint64 { return c.power[id] }

// Members returns the committee's fixed insertion order.
func (c *Committee) Members() []string { return append([]string(nil), c.order...) }

// Proposer is the deterministic, stateless power-weighted round-robin
// function of spec.md §4.3: expand the power map into a flat list in
// fixed insertion order, repeating each id `power[id]` times, and index
// it with (height*1_000_003 + round) mod len(list).
func (c *Committee) Proposer(height *big.Int, round int64) string {
	expanded := make([]string, 0, c.total)
	for _, id := range c.order {
		for i := uint64(0); i < c.power[id]; i++ {
			expanded = append(expanded, id)
		}
	}

	n := big.NewInt(int64(len(expanded)))
	idx := new(big.Int).Mul(height, big.NewInt(1000003))
	idx.Add(idx, big.NewInt(round))
	idx.Mod(idx, n)
	return expanded[idx.Int64()]
}
