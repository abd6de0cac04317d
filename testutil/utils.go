package testutil

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/golang/mock/gomock"

	"github.com/stakepool/staking-pool/testutil/mocks"
	"github.com/stakepool/staking-pool/types"
)

// PrepareMockedStakingClient returns a staking client mock that accepts every
// instruction and reports the given delegation view.
func PrepareMockedStakingClient(t *testing.T, denom string, bonded, pendingReward sdkmath.Int) *mocks.MockStakingClient {
	ctl := gomock.NewController(t)
	mockStakingClient := mocks.NewMockStakingClient(ctl)

	mockStakingClient.EXPECT().Bond(denom, gomock.Any()).Return(nil).AnyTimes()
	mockStakingClient.EXPECT().Unbond(denom, gomock.Any()).Return(nil).AnyTimes()
	mockStakingClient.EXPECT().WithdrawRewards(denom).Return(pendingReward, nil).AnyTimes()
	mockStakingClient.EXPECT().SendToOwner(gomock.Any(), denom, gomock.Any()).Return(nil).AnyTimes()
	mockStakingClient.EXPECT().QueryDelegation(denom).Return(&types.Delegation{
		BondedAmount:  bonded,
		PendingReward: pendingReward,
	}, nil).AnyTimes()
	mockStakingClient.EXPECT().Close().Return(nil).AnyTimes()

	return mockStakingClient
}
