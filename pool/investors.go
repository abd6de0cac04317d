package pool

import (
	sdkerrors "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/stakepool/staking-pool/types"
)

// credit adds shares to the investor's balance, creating the account if needed.
// A zero credit never creates an entry, keeping the map free of zero balances.
func (s *State) credit(addr string, shares sdkmath.Int) {
	if shares.IsZero() {
		return
	}
	s.Balances[addr] = s.SharesOf(addr).Add(shares)
}

// debit subtracts shares from the investor's balance. The balance can never go
// negative; asking for more than held fails the whole operation.
func (s *State) debit(addr string, shares sdkmath.Int) error {
	held := s.SharesOf(addr)
	if shares.GT(held) {
		return sdkerrors.Wrapf(types.ErrInsufficientBalance,
			"%s holds %s shares, tried to debit %s", addr, held, shares)
	}

	remaining := held.Sub(shares)
	if remaining.IsZero() {
		// storage hygiene only, an explicit zero entry would behave the same
		delete(s.Balances, addr)
		return nil
	}
	s.Balances[addr] = remaining
	return nil
}
