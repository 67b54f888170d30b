// Hand-written in MockGen's output shape.
// Source: consensus/tendermint/core (interfaces: Fabric, EventSink)

// Package mocks holds hand-maintained stand-ins for the generated mocks
// mockgen would otherwise produce for core.Fabric and core.EventSink,
// grounded on the teacher's backend_mock.go shape but written against
// go.uber.org/mock, the maintained successor to the golang/mock package
// the teacher vendors.
package mocks

import (
	"math/big"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	"github.com/tmsim/consensus/messages"
)

// MockFabric is a mock of the core.Fabric interface.
type MockFabric struct {
	ctrl     *gomock.Controller
	recorder *MockFabricMockRecorder
}

type MockFabricMockRecorder struct {
	mock *MockFabric
}

func NewMockFabric(ctrl *gomock.Controller) *MockFabric {
	mock := &MockFabric{ctrl: ctrl}
	mock.recorder = &MockFabricMockRecorder{mock}
	return mock
}

func (m *MockFabric) EXPECT() *MockFabricMockRecorder {
	return m.recorder
}

func (m *MockFabric) Broadcast(from string, msg *messages.Message) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Broadcast", from, msg)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockFabricMockRecorder) Broadcast(from, msg interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Broadcast", reflect.TypeOf((*MockFabric)(nil).Broadcast), from, msg)
}

func (m *MockFabric) Inbox(pid string) (<-chan *messages.Message, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Inbox", pid)
	ret0, _ := ret[0].(<-chan *messages.Message)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockFabricMockRecorder) Inbox(pid interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Inbox", reflect.TypeOf((*MockFabric)(nil).Inbox), pid)
}

// MockEventSink is a mock of the core.EventSink interface.
type MockEventSink struct {
	ctrl     *gomock.Controller
	recorder *MockEventSinkMockRecorder
}

type MockEventSinkMockRecorder struct {
	mock *MockEventSink
}

func NewMockEventSink(ctrl *gomock.Controller) *MockEventSink {
	mock := &MockEventSink{ctrl: ctrl}
	mock.recorder = &MockEventSinkMockRecorder{mock}
	return mock
}

func (m *MockEventSink) EXPECT() *MockEventSinkMockRecorder {
	return m.recorder
}

func (m *MockEventSink) ProposalSent(pid string, h *big.Int, r int64, vid []byte) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ProposalSent", pid, h, r, vid)
}

func (mr *MockEventSinkMockRecorder) ProposalSent(pid, h, r, vid interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ProposalSent", reflect.TypeOf((*MockEventSink)(nil).ProposalSent), pid, h, r, vid)
}

func (m *MockEventSink) PrevoteSent(pid string, h *big.Int, r int64, vid []byte) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "PrevoteSent", pid, h, r, vid)
}

func (mr *MockEventSinkMockRecorder) PrevoteSent(pid, h, r, vid interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PrevoteSent", reflect.TypeOf((*MockEventSink)(nil).PrevoteSent), pid, h, r, vid)
}

func (m *MockEventSink) PrecommitSent(pid string, h *big.Int, r int64, vid []byte) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "PrecommitSent", pid, h, r, vid)
}

func (mr *MockEventSinkMockRecorder) PrecommitSent(pid, h, r, vid interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PrecommitSent", reflect.TypeOf((*MockEventSink)(nil).PrecommitSent), pid, h, r, vid)
}

func (m *MockEventSink) Locked(pid string, vid []byte, r int64) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Locked", pid, vid, r)
}

func (mr *MockEventSinkMockRecorder) Locked(pid, vid, r interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Locked", reflect.TypeOf((*MockEventSink)(nil).Locked), pid, vid, r)
}

func (m *MockEventSink) Decided(pid string, vid []byte, h *big.Int, r int64) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Decided", pid, vid, h, r)
}

func (mr *MockEventSinkMockRecorder) Decided(pid, vid, h, r interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Decided", reflect.TypeOf((*MockEventSink)(nil).Decided), pid, vid, h, r)
}

func (m *MockEventSink) TimeoutFired(pid, step string, h *big.Int, r int64) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "TimeoutFired", pid, step, h, r)
}

func (mr *MockEventSinkMockRecorder) TimeoutFired(pid, step, h, r interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TimeoutFired", reflect.TypeOf((*MockEventSink)(nil).TimeoutFired), pid, step, h, r)
}

func (m *MockEventSink) RoundStarted(pid string, h *big.Int, r int64, proposer string) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "RoundStarted", pid, h, r, proposer)
}

func (mr *MockEventSinkMockRecorder) RoundStarted(pid, h, r, proposer interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RoundStarted", reflect.TypeOf((*MockEventSink)(nil).RoundStarted), pid, h, r, proposer)
}
