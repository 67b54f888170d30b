package core

import (
	"math/big"
	"testing"

	gomock "go.uber.org/mock/gomock"

	"github.com/tmsim/consensus/consensus/tendermint/core/mocks"
	"github.com/tmsim/consensus/messages"
)

// TestStartRoundEmitsRoundStarted exercises startRound against a mocked
// EventSink to check it reports the right (pid, height, round, proposer)
// tuple without depending on the log package's formatting.
func TestStartRoundEmitsRoundStarted(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)
	fabric := newFakeFabric("A", "B", "C", "D")
	c := fourValidatorCommittee(t)

	v := NewValidator("B", c, fabric, sink, DefaultTimeouts).WithValueSource(fixedValue([]byte("v")))

	sink.EXPECT().RoundStarted("B", gomock.Any(), int64(0), "A")
	sink.EXPECT().PrevoteSent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	sink.EXPECT().Locked(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	sink.EXPECT().PrecommitSent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	sink.EXPECT().Decided(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	v.startRound(0)
}

// TestBroadcastUsesMockFabric checks bcast routes through whatever Fabric
// it's given, using a MockFabric instead of the in-process one.
func TestBroadcastUsesMockFabric(t *testing.T) {
	ctrl := gomock.NewController(t)
	fabric := mocks.NewMockFabric(ctrl)
	c := fourValidatorCommittee(t)
	v := NewValidator("A", c, fabric, noopSink{}, DefaultTimeouts)

	fabric.EXPECT().Broadcast("A", gomock.Any()).Return(nil)

	v.bcast(messages.NewPrevote(big.NewInt(0), 0, "A", nil, v.committee.Power("A")))
}
