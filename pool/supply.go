package pool

import (
	sdkmath "cosmossdk.io/math"

	"github.com/stakepool/staking-pool/types"
)

// Supply tracks the pool-wide totals: the bonded value the pool believes it has
// staked (plus any not-yet-reinvested reward float) and the derivative shares
// outstanding against it.
type Supply struct {
	TotalBonded sdkmath.Int `json:"total_bonded"`
	TotalShares sdkmath.Int `json:"total_shares"`
}

func NewSupply() Supply {
	return Supply{
		TotalBonded: sdkmath.ZeroInt(),
		TotalShares: sdkmath.ZeroInt(),
	}
}

// ExchangeRate returns the bonded value per share, defined as 1 when no shares
// are outstanding so that the first depositor mints 1:1.
func (s Supply) ExchangeRate() sdkmath.LegacyDec {
	if s.TotalShares.IsZero() {
		return sdkmath.LegacyOneDec()
	}
	return sdkmath.LegacyNewDecFromInt(s.TotalBonded).QuoInt(s.TotalShares)
}

// SharesForValue returns the shares minted for a deposit of the given value at
// the current exchange rate. The division truncates so that a deposit can never
// mint shares unbacked by deposited value.
func (s Supply) SharesForValue(value sdkmath.Int) sdkmath.Int {
	if s.TotalShares.IsZero() {
		return value
	}
	return value.Mul(s.TotalShares).Quo(s.TotalBonded)
}

// ValueForShares returns the bonded value the given shares represent at the
// current exchange rate. The division truncates so that a withdrawal can never
// extract more value than its shares are backed by.
func (s Supply) ValueForShares(shares sdkmath.Int) (sdkmath.Int, error) {
	if shares.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	if s.TotalShares.IsZero() {
		// unreachable while the ledger invariants hold: no investor can hold
		// shares when none are outstanding
		return sdkmath.Int{}, types.ErrInsufficientSupply
	}
	return shares.Mul(s.TotalBonded).Quo(s.TotalShares), nil
}

// Bond adds newly staked value and the shares minted for it.
func (s Supply) Bond(value, shares sdkmath.Int) Supply {
	return Supply{
		TotalBonded: s.TotalBonded.Add(value),
		TotalShares: s.TotalShares.Add(shares),
	}
}

// Unbond removes withdrawn value and the shares burned for it.
func (s Supply) Unbond(value, shares sdkmath.Int) Supply {
	return Supply{
		TotalBonded: s.TotalBonded.Sub(value),
		TotalShares: s.TotalShares.Sub(shares),
	}
}

// AddReward grows the bonded value without minting shares, which is what raises
// the exchange rate for every holder.
func (s Supply) AddReward(amount sdkmath.Int) Supply {
	return Supply{
		TotalBonded: s.TotalBonded.Add(amount),
		TotalShares: s.TotalShares,
	}
}
