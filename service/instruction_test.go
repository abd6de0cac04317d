package service

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	sdkerrors "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stakepool/staking-pool/config"
	poolstore "github.com/stakepool/staking-pool/pool/store"
	"github.com/stakepool/staking-pool/stakingclient"
	"github.com/stakepool/staking-pool/testutil"
	"github.com/stakepool/staking-pool/testutil/mocks"
	"github.com/stakepool/staking-pool/types"
)

// newInstructionTestApp builds an app around the given staking client without
// starting the event loops, so instructions can be driven directly.
func newInstructionTestApp(t *testing.T, r *rand.Rand, sc stakingclient.StakingClient) (*PoolApp, string) {
	info := testutil.GenRandomInvestmentInfo(r)

	homeDir := t.TempDir()
	cfg := config.DefaultConfigWithHome(homeDir)
	cfg.Reinvest.Policy = config.ReinvestPolicyInterval
	cfg.Reinvest.Interval = time.Hour

	ps, err := poolstore.NewPoolStore(
		filepath.Join(homeDir, "spd.db"),
		cfg.DatabaseConfig.Name,
		cfg.DatabaseConfig.Backend,
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ps.Close())
	})

	app, err := NewPoolApp(&cfg, info, sc, ps, zap.NewNop())
	require.NoError(t, err)

	return app, info.BondDenom
}

// TestSubmitInstructionExpectedOutcome checks that an outcome the staking
// client flags as expected, such as the tx already sitting in the mempool
// from an earlier attempt, counts as success and is not retried.
func TestSubmitInstructionExpectedOutcome(t *testing.T) {
	r := rand.New(rand.NewSource(30))
	ctl := gomock.NewController(t)
	sc := mocks.NewMockStakingClient(ctl)
	app, denom := newInstructionTestApp(t, r, sc)

	sc.EXPECT().Bond(denom, gomock.Any()).
		Return(stakingclient.Expected(errors.New("tx already in mempool"))).
		Times(1)

	app.submitInstruction(types.Instruction{
		Type:   types.InstructionBond,
		Denom:  denom,
		Amount: sdkmath.NewInt(1000),
	})
}

// TestSubmitInstructionUnrecoverableError checks that errors no retry can fix
// abort the attempt loop immediately.
func TestSubmitInstructionUnrecoverableError(t *testing.T) {
	r := rand.New(rand.NewSource(31))
	ctl := gomock.NewController(t)
	sc := mocks.NewMockStakingClient(ctl)
	app, denom := newInstructionTestApp(t, r, sc)

	sc.EXPECT().Unbond(denom, gomock.Any()).
		Return(sdkerrors.Wrap(types.ErrInsufficientSupply, "nothing bonded")).
		Times(1)

	app.submitInstruction(types.Instruction{
		Type:   types.InstructionUnbond,
		Denom:  denom,
		Amount: sdkmath.NewInt(1000),
	})
}

// TestSubmitInstructionRetriesTransientFailures checks that transient staking
// module failures are retried until one attempt goes through.
func TestSubmitInstructionRetriesTransientFailures(t *testing.T) {
	r := rand.New(rand.NewSource(32))
	ctl := gomock.NewController(t)
	sc := mocks.NewMockStakingClient(ctl)
	app, denom := newInstructionTestApp(t, r, sc)

	sc.EXPECT().Bond(denom, gomock.Any()).
		Return(sdkerrors.Wrap(types.ErrExternalModuleFailure, "connection refused")).
		Times(2)
	sc.EXPECT().Bond(denom, gomock.Any()).
		Return(nil).
		Times(1)

	app.submitInstruction(types.Instruction{
		Type:   types.InstructionBond,
		Denom:  denom,
		Amount: sdkmath.NewInt(1000),
	})
}
