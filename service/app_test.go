package service_test

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stakepool/staking-pool/config"
	"github.com/stakepool/staking-pool/pool"
	poolstore "github.com/stakepool/staking-pool/pool/store"
	"github.com/stakepool/staking-pool/service"
	"github.com/stakepool/staking-pool/stakingclient"
	"github.com/stakepool/staking-pool/testutil"
	"github.com/stakepool/staking-pool/types"
)

func newTestApp(
	t *testing.T,
	homeDir string,
	info *types.InvestmentInfo,
	sc stakingclient.StakingClient,
) *service.PoolApp {
	cfg := config.DefaultConfigWithHome(homeDir)
	// keep the ticker out of the way so only explicit calls mutate state
	cfg.Reinvest.Policy = config.ReinvestPolicyInterval
	cfg.Reinvest.Interval = time.Hour

	ps, err := poolstore.NewPoolStore(
		filepath.Join(homeDir, "spd.db"),
		cfg.DatabaseConfig.Name,
		cfg.DatabaseConfig.Backend,
	)
	require.NoError(t, err)

	app, err := service.NewPoolApp(&cfg, info, sc, ps, zap.NewNop())
	require.NoError(t, err)

	return app
}

func FuzzDepositWithdraw(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))

		info := testutil.GenRandomInvestmentInfo(r)
		amount := info.MinWithdrawal.AddRaw(r.Int63n(1_000_000) + 1)

		sc := testutil.PrepareMockedStakingClient(t, info.BondDenom, amount, sdkmath.ZeroInt())
		app := newTestApp(t, t.TempDir(), info, sc)
		require.NoError(t, app.Start())
		defer func() {
			require.NoError(t, app.Stop())
		}()

		depositor := testutil.GenRandomAddress(r)
		depRes, err := app.Deposit(depositor, amount)
		require.NoError(t, err)
		// the first depositor mints shares one to one
		require.Equal(t, amount, depRes.MintedShares)
		require.Equal(t, amount, app.QueryBalance(depositor))

		supply := app.QuerySupply()
		require.Equal(t, amount, supply.TotalBonded)
		require.Equal(t, amount, supply.TotalShares)

		// a full exit is always allowed and drains the pool
		wRes, err := app.Withdraw(depositor, depRes.MintedShares)
		require.NoError(t, err)
		require.Equal(t, depRes.MintedShares, wRes.BurnedShares)

		net, tax := pool.ApplyExitTax(amount, info.ExitTax)
		require.Equal(t, net, wRes.NetValue)
		require.Equal(t, tax, app.QueryPendingOwnerTax())

		require.True(t, app.QueryBalance(depositor).IsZero())
		supply = app.QuerySupply()
		require.True(t, supply.TotalBonded.IsZero())
		require.True(t, supply.TotalShares.IsZero())
	})
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	r := rand.New(rand.NewSource(10))
	info := testutil.GenRandomInvestmentInfo(r)
	sc := testutil.PrepareMockedStakingClient(t, info.BondDenom, sdkmath.ZeroInt(), sdkmath.ZeroInt())

	app := newTestApp(t, t.TempDir(), info, sc)
	require.NoError(t, app.Start())
	defer func() {
		require.NoError(t, app.Stop())
	}()

	_, err := app.Deposit(testutil.GenRandomAddress(r), sdkmath.ZeroInt())
	require.Error(t, err)
}

func TestWithdrawUnknownInvestor(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	info := testutil.GenRandomInvestmentInfo(r)
	sc := testutil.PrepareMockedStakingClient(t, info.BondDenom, sdkmath.ZeroInt(), sdkmath.ZeroInt())

	app := newTestApp(t, t.TempDir(), info, sc)
	require.NoError(t, app.Start())
	defer func() {
		require.NoError(t, app.Stop())
	}()

	_, err := app.Withdraw(testutil.GenRandomAddress(r), sdkmath.NewInt(10))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
}

func FuzzReinvest(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))

		info := testutil.GenRandomInvestmentInfo(r)
		deposit := info.MinWithdrawal.AddRaw(r.Int63n(1_000_000) + 1)
		pending := info.MinWithdrawal.AddRaw(r.Int63n(10_000))

		sc := testutil.PrepareMockedStakingClient(t, info.BondDenom, deposit, pending)
		app := newTestApp(t, t.TempDir(), info, sc)
		require.NoError(t, app.Start())
		defer func() {
			require.NoError(t, app.Stop())
		}()

		depositor := testutil.GenRandomAddress(r)
		_, err := app.Deposit(depositor, deposit)
		require.NoError(t, err)

		res, err := app.Reinvest()
		require.NoError(t, err)
		require.False(t, res.Deferred)
		require.Equal(t, pending, res.Reinvested)

		// rewards raise the bonded total without minting shares
		supply := app.QuerySupply()
		require.Equal(t, deposit.Add(pending), supply.TotalBonded)
		require.Equal(t, deposit, supply.TotalShares)
		require.True(t, supply.ExchangeRate().GTE(sdkmath.LegacyOneDec()))
	})
}

func TestReinvestDefersDust(t *testing.T) {
	r := rand.New(rand.NewSource(12))
	info := testutil.GenRandomInvestmentInfo(r)
	info.MinWithdrawal = sdkmath.NewInt(100)
	pending := sdkmath.NewInt(99)

	sc := testutil.PrepareMockedStakingClient(t, info.BondDenom, sdkmath.NewInt(1000), pending)
	app := newTestApp(t, t.TempDir(), info, sc)
	require.NoError(t, app.Start())
	defer func() {
		require.NoError(t, app.Stop())
	}()

	_, err := app.Deposit(testutil.GenRandomAddress(r), sdkmath.NewInt(1000))
	require.NoError(t, err)

	res, err := app.Reinvest()
	require.NoError(t, err)
	require.True(t, res.Deferred)
	require.True(t, res.Reinvested.IsZero())

	supply := app.QuerySupply()
	require.Equal(t, sdkmath.NewInt(1000), supply.TotalBonded)
}

func TestCollectOwnerTax(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	info := testutil.GenRandomInvestmentInfo(r)
	info.ExitTax = sdkmath.LegacyNewDecWithPrec(5, 2) // 5%
	info.MinWithdrawal = sdkmath.NewInt(1)

	deposit := sdkmath.NewInt(10_000)
	sc := testutil.PrepareMockedStakingClient(t, info.BondDenom, deposit, sdkmath.ZeroInt())
	app := newTestApp(t, t.TempDir(), info, sc)
	require.NoError(t, app.Start())
	defer func() {
		require.NoError(t, app.Stop())
	}()

	depositor := testutil.GenRandomAddress(r)
	_, err := app.Deposit(depositor, deposit)
	require.NoError(t, err)

	// nothing accrued yet, collection is a no-op
	colRes, err := app.CollectOwnerTax()
	require.NoError(t, err)
	require.True(t, colRes.Collected.IsZero())

	_, err = app.Withdraw(depositor, sdkmath.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(50), app.QueryPendingOwnerTax())

	colRes, err = app.CollectOwnerTax()
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(50), colRes.Collected)
	require.True(t, app.QueryPendingOwnerTax().IsZero())
}

func TestStateSurvivesRestart(t *testing.T) {
	r := rand.New(rand.NewSource(14))
	info := testutil.GenRandomInvestmentInfo(r)
	deposit := info.MinWithdrawal.AddRaw(5000)
	homeDir := t.TempDir()

	sc := testutil.PrepareMockedStakingClient(t, info.BondDenom, deposit, sdkmath.ZeroInt())
	depositor := testutil.GenRandomAddress(r)

	app := newTestApp(t, homeDir, info, sc)
	require.NoError(t, app.Start())
	_, err := app.Deposit(depositor, deposit)
	require.NoError(t, err)
	require.NoError(t, app.Stop())

	restarted := newTestApp(t, homeDir, info, sc)
	require.NoError(t, restarted.Start())
	defer func() {
		require.NoError(t, restarted.Stop())
	}()

	require.Equal(t, deposit, restarted.QueryBalance(depositor))
	require.Equal(t, deposit, restarted.QuerySupply().TotalBonded)
}
