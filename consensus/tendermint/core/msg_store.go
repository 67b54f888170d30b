package core

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tmsim/consensus/messages"
	"github.com/tmsim/consensus/tmcrypto"
)

// resolvedCacheSize bounds the proposal-resolution cache: a handful of
// in-flight (height, round, id) lookups per active round is plenty: the
// cache only exists to skip rescanning a round's proposal senders on every
// one of that round's prevotes/precommits, not to remember history.
const resolvedCacheSize = 256

// MsgStore indexes every message seen so far by height, round, kind and
// sender, so a proposal value can be looked up by its coordinates instead
// of scanned for linearly. Adapted from the teacher's nested-map message
// store (consensus/tendermint/core/msg_store.go), generalized from
// (height, round, type, address) keyed RLP messages down to this
// package's in-process Message type, and kept per-sender-list shaped so a
// byzantine sender's conflicting messages for the same slot are all
// retained rather than silently overwritten.
type MsgStore struct {
	mu          sync.RWMutex
	firstHeight uint64
	hasFirst    bool
	messages    map[uint64]map[int64]map[messages.Kind]map[string][]*messages.Message
	resolved    *lru.Cache[string, []byte]
}

// NewMsgStore returns an empty store.
func NewMsgStore() *MsgStore {
	cache, err := lru.New[string, []byte](resolvedCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// resolvedCacheSize never is.
		panic(err)
	}
	return &MsgStore{
		messages: make(map[uint64]map[int64]map[messages.Kind]map[string][]*messages.Message),
		resolved: cache,
	}
}

// Save appends m to the store under its own (height, round, kind, sender).
func (ms *MsgStore) Save(m *messages.Message) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	h := m.Height.Uint64()
	if !ms.hasFirst || h < ms.firstHeight {
		ms.firstHeight = h
		ms.hasFirst = true
	}

	roundMap, ok := ms.messages[h]
	if !ok {
		roundMap = make(map[int64]map[messages.Kind]map[string][]*messages.Message)
		ms.messages[h] = roundMap
	}
	kindMap, ok := roundMap[m.Round]
	if !ok {
		kindMap = make(map[messages.Kind]map[string][]*messages.Message)
		roundMap[m.Round] = kindMap
	}
	senderMap, ok := kindMap[m.Kind]
	if !ok {
		senderMap = make(map[string][]*messages.Message)
		kindMap[m.Kind] = senderMap
	}
	senderMap[m.Sender] = append(senderMap[m.Sender], m)
}

// FirstHeightBuffered reports the lowest height any message has been
// saved under.
func (ms *MsgStore) FirstHeightBuffered() uint64 {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.firstHeight
}

// DeleteMsgsBeforeHeight drops every height at or below height, bounding
// the store's size across a long-running simulation the way a real node
// prunes committed heights.
func (ms *MsgStore) DeleteMsgsBeforeHeight(height uint64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for h := range ms.messages {
		if h <= height {
			delete(ms.messages, h)
		}
	}
}

// Get returns every message at height satisfying query.
func (ms *MsgStore) Get(height uint64, query func(*messages.Message) bool) []*messages.Message {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var result []*messages.Message
	roundMap, ok := ms.messages[height]
	if !ok {
		return result
	}
	for _, kindMap := range roundMap {
		for _, senderMap := range kindMap {
			for _, msgs := range senderMap {
				for _, m := range msgs {
					if query(m) {
						result = append(result, m)
					}
				}
			}
		}
	}
	return result
}

// FindProposalValue returns the value of the most recently saved PROPOSAL
// at (height, round) whose value identifier equals id, or nil if none
// matches — the lookup handleProposal/handlePrevote/handlePrecommit use
// to resolve a vote identifier back to the value it stands for (spec.md
// §4.7's "search backwards through message_log"). A round's quorum check
// re-runs this lookup on every vote that arrives after quorum, so the
// result is cached: once a round's proposer is known, the senders map for
// that round never grows again except for a byzantine equivocation, which
// is rare enough that a stale cache hit costs nothing but a missed
// equivocation catch this function was never responsible for catching.
func (ms *MsgStore) FindProposalValue(height uint64, round int64, id string) []byte {
	cacheKey := fmt.Sprintf("%d:%d:%s", height, round, id)
	if v, ok := ms.resolved.Get(cacheKey); ok {
		return v
	}

	ms.mu.RLock()
	roundMap, ok := ms.messages[height]
	if !ok {
		ms.mu.RUnlock()
		return nil
	}
	senderMap, ok := roundMap[round][messages.Proposal]
	ms.mu.RUnlock()
	if !ok {
		return nil
	}

	var found []byte
	for _, msgs := range senderMap {
		for _, m := range msgs {
			if vidKey(tmcrypto.VID(m.Payload)) == id {
				found = m.Payload
			}
		}
	}
	if found != nil {
		ms.resolved.Add(cacheKey, found)
	}
	return found
}
