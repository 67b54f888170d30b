package core

import "github.com/tmsim/consensus/messages"

// Fabric is the subset of gossip.Fabric the state machine depends on. The
// core is written against this interface, not the concrete type, so tests
// can drive it with a fake or a mocks.MockFabric (see mocks/mocks.go)
// instead of a real delay-injecting bus.
type Fabric interface {
	Broadcast(from string, msg *messages.Message) error
	Inbox(pid string) (<-chan *messages.Message, error)
}
