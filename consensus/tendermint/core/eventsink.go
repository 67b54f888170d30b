package core

import (
	"math/big"

	"github.com/tmsim/consensus/log"
)

// EventSink receives the structured, human-readable events spec.md §6
// enumerates. It is the seam between the core state machine and
// whatever renders events for a human (a terminal, a file, a test
// recorder) — the core never formats or prints anything itself.
type EventSink interface {
	ProposalSent(pid string, h *big.Int, r int64, vid []byte)
	PrevoteSent(pid string, h *big.Int, r int64, vid []byte)
	PrecommitSent(pid string, h *big.Int, r int64, vid []byte)
	Locked(pid string, vid []byte, r int64)
	Decided(pid string, vid []byte, h *big.Int, r int64)
	TimeoutFired(pid, step string, h *big.Int, r int64)
	RoundStarted(pid string, h *big.Int, r int64, proposer string)
}

// LogEventSink is the default EventSink: every event becomes a structured
// record through the log package, colorized by phase in an interactive
// terminal (log/handler.go).
type LogEventSink struct {
	logger log.Logger
}

// NewLogEventSink builds an EventSink backed by the package's structured
// logger.
func NewLogEventSink() *LogEventSink {
	return &LogEventSink{logger: log.New("component", "tendermint")}
}

func (s *LogEventSink) ProposalSent(pid string, h *big.Int, r int64, vid []byte) {
	s.logger.Info("sent", "phase", "PROPOSAL", "pid", pid, "h", h, "r", r, "vid", log.ShortVID(vid))
}

func (s *LogEventSink) PrevoteSent(pid string, h *big.Int, r int64, vid []byte) {
	s.logger.Info("sent", "phase", "PREVOTE", "pid", pid, "h", h, "r", r, "vid", log.ShortVID(vid))
}

func (s *LogEventSink) PrecommitSent(pid string, h *big.Int, r int64, vid []byte) {
	s.logger.Info("sent", "phase", "PRECOMMIT", "pid", pid, "h", h, "r", r, "vid", log.ShortVID(vid))
}

func (s *LogEventSink) Locked(pid string, vid []byte, r int64) {
	s.logger.Info("locked", "phase", "LOCKED", "pid", pid, "vid", log.ShortVID(vid), "r", r)
}

func (s *LogEventSink) Decided(pid string, vid []byte, h *big.Int, r int64) {
	s.logger.Info("decided", "phase", "DECIDED", "pid", pid, "vid", log.ShortVID(vid), "h", h, "r", r)
}

func (s *LogEventSink) TimeoutFired(pid, step string, h *big.Int, r int64) {
	s.logger.Debug("timeout", "phase", "TIMEOUT", "pid", pid, "step", step, "h", h, "r", r)
}

func (s *LogEventSink) RoundStarted(pid string, h *big.Int, r int64, proposer string) {
	s.logger.Info("round start", "phase", "ROUND", "pid", pid, "h", h, "r", r, "proposer", proposer)
}
