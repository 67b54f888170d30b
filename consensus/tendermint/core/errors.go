package core

import "fmt"

// ConfigurationError reports invalid startup configuration: duplicate
// validator registration, zero voting power, or an empty validator set.
// Fatal at startup (spec.md §7).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// InternalInvariantViolation reports a broken invariant from spec.md §3
// (e.g. a write to an already-decided height, or locked_round/locked_value
// disagreeing about nil-ness). Fatal; the offending validator aborts.
type InternalInvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InternalInvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violation (%s): %s", e.Invariant, e.Detail)
}

// raise latches a fatal InternalInvariantViolation on v. Run checks
// v.fatal after every handled event and aborts the validator rather than
// let it continue operating on state it can no longer trust (spec.md §7).
func (v *Validator) raise(invariant, detail string) {
	if v.fatal == nil {
		v.fatal = &InternalInvariantViolation{Invariant: invariant, Detail: detail}
	}
}

// StaleMessage, StaleTimeout and UnresolvableVote are not errors per
// spec.md §7 ("silently ignored ... not an error" / "silently dropped").
// They are represented in this package by plain early returns, never as
// Go error values, and nothing is logged for them — see handler.go.
