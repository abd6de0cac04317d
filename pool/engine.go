package pool

import (
	"fmt"

	sdkerrors "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/stakepool/staking-pool/types"
)

// Engine is the bonding coordinator: it sequences share minting and burning
// against the supply ledger and emits the staking instructions that keep the
// external module in line with the pool's own accounting.
//
// Every operation is pure over the given state: it clones, mutates the clone,
// and returns it in a Result together with the instructions to execute once the
// new state has been committed.
type Engine struct {
	info *types.InvestmentInfo
}

// Result carries the state produced by an engine operation and the outgoing
// instructions for the external staking module. Instructions must only be
// executed after State has been committed.
type Result struct {
	State        *State
	Instructions []types.Instruction
}

func NewEngine(info *types.InvestmentInfo) (*Engine, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &Engine{info: info}, nil
}

func (e *Engine) Info() *types.InvestmentInfo {
	return e.info
}

// Deposit converts incoming bonded-token value into newly minted shares at the
// current exchange rate and instructs the external module to stake the value.
func (e *Engine) Deposit(st *State, depositor string, amount sdkmath.Int) (*Result, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return nil, fmt.Errorf("deposit amount must be positive, got %s", amount)
	}
	if amount.GT(types.MaxAmount) {
		return nil, fmt.Errorf("deposit amount %s exceeds the maximum of %s", amount, types.MaxAmount)
	}
	if st.Supply.TotalBonded.Add(amount).GT(types.MaxAmount) {
		return nil, fmt.Errorf("deposit of %s would push the total bonded value past the maximum of %s",
			amount, types.MaxAmount)
	}

	next := st.Clone()
	minted := next.Supply.SharesForValue(amount)
	if minted.IsZero() {
		// at a high exchange rate a tiny deposit can floor to zero shares;
		// accepting it would silently donate the value to the pool
		return nil, sdkerrors.Wrapf(types.ErrBelowMinimum,
			"deposit of %s%s mints no shares at the current exchange rate", amount, e.info.BondDenom)
	}
	next.Supply = next.Supply.Bond(amount, minted)
	next.credit(depositor, minted)

	return &Result{
		State:        next,
		Instructions: []types.Instruction{types.BondInstruction(e.info.BondDenom, amount)},
	}, nil
}

// ReinvestRewards folds pending rewards into the pool. The reward raises the
// total bonded value without minting shares, which is exactly what raises the
// exchange rate for every holder, and is then re-staked. Batches below
// MinWithdrawal are deferred to a later tick rather than rejected: staking dust
// is uneconomical, not wrong. A pool with no shares outstanding also defers, so
// that bonded value can never exist without shares backing it.
func (e *Engine) ReinvestRewards(st *State, pending sdkmath.Int) (*Result, error) {
	if pending.IsNil() || pending.IsNegative() {
		return nil, fmt.Errorf("pending reward must not be negative, got %s", pending)
	}

	if pending.LT(e.info.MinWithdrawal) || st.Supply.TotalShares.IsZero() {
		return &Result{State: st.Clone()}, nil
	}
	if st.Supply.TotalBonded.Add(pending).GT(types.MaxAmount) {
		return nil, fmt.Errorf("reinvesting %s would push the total bonded value past the maximum of %s",
			pending, types.MaxAmount)
	}

	next := st.Clone()
	next.Supply = next.Supply.AddReward(pending)

	return &Result{
		State: next,
		Instructions: []types.Instruction{
			types.WithdrawRewardsInstruction(),
			types.BondInstruction(e.info.BondDenom, pending),
		},
	}, nil
}

// Withdraw burns the investor's shares, applies the exit tax to the value they
// represent and instructs unbonding of the net amount. Partial withdrawals
// below MinWithdrawal are rejected; a full exit is always permitted regardless
// of size so no investor is ever stranded with dust.
func (e *Engine) Withdraw(st *State, investor string, shares sdkmath.Int) (*Result, error) {
	if shares.IsNil() || !shares.IsPositive() {
		return nil, fmt.Errorf("withdrawal shares must be positive, got %s", shares)
	}

	held := st.SharesOf(investor)
	if shares.GT(held) {
		return nil, sdkerrors.Wrapf(types.ErrInsufficientBalance,
			"%s holds %s shares, requested %s", investor, held, shares)
	}

	value, err := st.Supply.ValueForShares(shares)
	if err != nil {
		return nil, err
	}

	fullExit := shares.Equal(held)
	if value.LT(e.info.MinWithdrawal) && !fullExit {
		return nil, sdkerrors.Wrapf(types.ErrBelowMinimum,
			"withdrawal of %s%s is below the minimum of %s%s",
			value, e.info.BondDenom, e.info.MinWithdrawal, e.info.BondDenom)
	}

	net, tax := ApplyExitTax(value, e.info.ExitTax)

	next := st.Clone()
	if err := next.debit(investor, shares); err != nil {
		return nil, err
	}
	next.Supply = next.Supply.Unbond(value, shares)
	next.PendingOwnerTax = next.PendingOwnerTax.Add(tax)

	res := &Result{State: next}
	if net.IsPositive() {
		res.Instructions = append(res.Instructions, types.UnbondInstruction(e.info.BondDenom, net))
	}
	return res, nil
}

// CollectOwnerTax unbonds the accumulated exit tax and routes it to the owner.
// The transfer instruction only lands once the external module's unbonding
// completes; the engine just clears its own ledger and emits the effects.
func (e *Engine) CollectOwnerTax(st *State) (*Result, error) {
	if st.PendingOwnerTax.IsZero() {
		return &Result{State: st.Clone()}, nil
	}

	next := st.Clone()
	tax := next.PendingOwnerTax
	next.PendingOwnerTax = sdkmath.ZeroInt()

	return &Result{
		State: next,
		Instructions: []types.Instruction{
			types.UnbondInstruction(e.info.BondDenom, tax),
			types.PayOwnerInstruction(e.info.BondDenom, tax),
		},
	}, nil
}
