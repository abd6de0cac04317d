package store_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	poolstore "github.com/stakepool/staking-pool/pool/store"
	"github.com/stakepool/staking-pool/testutil"
)

// FuzzPoolStore tests that committed states round-trip through the db.
func FuzzPoolStore(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))

		dbPath := filepath.Join(t.TempDir(), "db")
		ps, err := poolstore.NewPoolStore(dbPath, "pool-test", "bbolt")
		require.NoError(t, err)
		defer func() {
			require.NoError(t, ps.Close())
			require.NoError(t, os.RemoveAll(dbPath))
		}()

		info := testutil.GenRandomInvestmentInfo(r)
		require.NoError(t, ps.SaveInvestmentInfo(info))

		// the info is write-once
		err = ps.SaveInvestmentInfo(info)
		require.Error(t, err)

		stored, err := ps.GetInvestmentInfo()
		require.NoError(t, err)
		require.Equal(t, info.Owner, stored.Owner)
		require.Equal(t, info.Validator, stored.Validator)
		require.True(t, info.ExitTax.Equal(stored.ExitTax))
		require.True(t, info.MinWithdrawal.Equal(stored.MinWithdrawal))

		// an empty db loads as a fresh state
		st, err := ps.LoadState()
		require.NoError(t, err)
		require.True(t, st.Supply.TotalBonded.IsZero())
		require.True(t, st.Supply.TotalShares.IsZero())
		require.Empty(t, st.Balances)

		// build a random state and commit it
		next := st.Clone()
		investorNum := r.Intn(10) + 1
		for i := 0; i < investorNum; i++ {
			addr := testutil.GenRandomAddress(r)
			amount := testutil.RandPositiveInt(r, 1_000_000)
			next.Balances[addr] = amount
			next.Supply = next.Supply.Bond(amount, amount)
		}
		next.PendingOwnerTax = testutil.RandPositiveInt(r, 1000)
		require.NoError(t, ps.CommitState(st, next))

		loaded, err := ps.LoadState()
		require.NoError(t, err)
		require.True(t, loaded.Supply.TotalBonded.Equal(next.Supply.TotalBonded))
		require.True(t, loaded.Supply.TotalShares.Equal(next.Supply.TotalShares))
		require.True(t, loaded.PendingOwnerTax.Equal(next.PendingOwnerTax))
		require.Equal(t, len(next.Balances), len(loaded.Balances))
		for addr, shares := range next.Balances {
			require.True(t, loaded.SharesOf(addr).Equal(shares))
		}

		// dropping an investor must delete its record
		final := next.Clone()
		for addr := range final.Balances {
			sharesGone := final.Balances[addr]
			delete(final.Balances, addr)
			final.Supply = final.Supply.Unbond(sharesGone, sharesGone)
			break
		}
		require.NoError(t, ps.CommitState(next, final))

		loaded, err = ps.LoadState()
		require.NoError(t, err)
		require.Equal(t, len(final.Balances), len(loaded.Balances))
		require.True(t, loaded.TotalInvestorShares().Equal(loaded.Supply.TotalShares))
	})
}
