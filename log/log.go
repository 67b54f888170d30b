// Package log is the structured event sink the consensus core writes to.
// It follows the go-ethereum log15 lineage: leveled, key-value records
// flowing through a pluggable Handler, with a colorized terminal handler
// for interactive runs. The consensus core never calls fmt.Println; every
// phase transition, vote, lock and decision is a call into this package.
package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Lvl is a log severity level.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERRO"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DBUG"
	default:
		return "????"
	}
}

// Record is a single structured log event.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call stack.Call
}

// Handler processes a Record. Handlers must be safe for concurrent use.
type Handler interface {
	Log(r *Record) error
}

// Logger emits structured records, merging its own persistent context
// (set via New) with the context passed at the call site.
type Logger interface {
	New(ctx ...interface{}) Logger
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

type swapHandler struct {
	mu sync.RWMutex
	h  Handler
}

func (s *swapHandler) Log(r *Record) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.Log(r)
}

func (s *swapHandler) Swap(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h = h
}

var root = &logger{h: new(swapHandler)}

func init() {
	root.h.Swap(StreamHandler(os.Stderr))
}

// Root returns the root logger, pre-wired to a terminal handler on stderr.
func Root() Logger { return root }

// SetHandler replaces the root logger's handler. Used by the launcher to
// redirect events (e.g. to a file, or to a quieter level filter).
func SetHandler(h Handler) { root.h.Swap(h) }

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{h: l.h}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	r := &Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  append(append([]interface{}{}, l.ctx...), ctx...),
		Call: stack.Caller(2),
	}
	_ = l.h.Log(r)
}

func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

// New returns a logger with ctx merged into the root logger's context.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }

func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }

// ShortVID renders the first six hex characters of a value identifier, or
// the literal "nil" when v is empty — the format spec.md §6 calls for in
// every PROPOSAL/PREVOTE/PRECOMMIT log line.
func ShortVID(v []byte) string {
	if len(v) == 0 {
		return "nil"
	}
	s := fmt.Sprintf("%x", v)
	if len(s) > 6 {
		s = s[:6]
	}
	return s
}
