package pool

import (
	sdkmath "cosmossdk.io/math"
)

// State is the pool's complete mutable state. Engine operations never mutate
// the state they are given; they work on a clone and hand the result back to
// the caller, which commits it atomically. A failed operation therefore leaves
// no partial effects behind.
type State struct {
	Supply Supply
	// Balances maps investor address to held shares. Accounts are created
	// implicitly on first deposit; zero balances are pruned on write since
	// their presence has no semantic effect.
	Balances map[string]sdkmath.Int
	// PendingOwnerTax is exit tax computed on past withdrawals that has not yet
	// been disbursed to the owner.
	PendingOwnerTax sdkmath.Int
}

func NewState() *State {
	return &State{
		Supply:          NewSupply(),
		Balances:        make(map[string]sdkmath.Int),
		PendingOwnerTax: sdkmath.ZeroInt(),
	}
}

func (s *State) Clone() *State {
	balances := make(map[string]sdkmath.Int, len(s.Balances))
	for addr, shares := range s.Balances {
		balances[addr] = shares
	}
	return &State{
		Supply:          s.Supply,
		Balances:        balances,
		PendingOwnerTax: s.PendingOwnerTax,
	}
}

// SharesOf returns the shares held by the given address, zero for unknown addresses.
func (s *State) SharesOf(addr string) sdkmath.Int {
	if shares, ok := s.Balances[addr]; ok {
		return shares
	}
	return sdkmath.ZeroInt()
}

// TotalInvestorShares sums all individual balances. It must always equal
// Supply.TotalShares.
func (s *State) TotalInvestorShares() sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, shares := range s.Balances {
		total = total.Add(shares)
	}
	return total
}
