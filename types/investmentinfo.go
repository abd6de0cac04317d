package types

import (
	sdkerrors "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// InvestmentInfo is the immutable configuration of the pool, fixed at creation.
// All amounts are denominated in base units of BondDenom.
type InvestmentInfo struct {
	// Owner receives the exit tax
	Owner string `json:"owner"`
	// Validator is the operator the pool delegates to. Validator identifiers use a
	// chain-specific encoding distinct from account addresses, so it is kept opaque here.
	Validator string `json:"validator"`
	// BondDenom is the single token denomination accepted and bonded
	BondDenom string `json:"bond_denom"`
	// ExitTax is the fraction in [0, 1] retained for the owner on every withdrawal
	ExitTax sdkmath.LegacyDec `json:"exit_tax"`
	// MinWithdrawal is the smallest amount that can be unbonded in one withdrawal
	// or pulled from accumulated rewards in one reinvestment batch
	MinWithdrawal sdkmath.Int `json:"min_withdrawal"`
}

// Validate checks the investment info at creation time. Every failure wraps ErrInvalidConfig.
func (info *InvestmentInfo) Validate() error {
	if _, err := sdk.AccAddressFromBech32(info.Owner); err != nil {
		return sdkerrors.Wrapf(ErrInvalidConfig, "invalid owner address %s: %s", info.Owner, err.Error())
	}

	if info.Validator == "" {
		return sdkerrors.Wrap(ErrInvalidConfig, "empty validator")
	}

	if err := sdk.ValidateDenom(info.BondDenom); err != nil {
		return sdkerrors.Wrapf(ErrInvalidConfig, "invalid bond denom: %s", err.Error())
	}

	if info.ExitTax.IsNil() || info.ExitTax.IsNegative() || info.ExitTax.GT(sdkmath.LegacyOneDec()) {
		return sdkerrors.Wrapf(ErrInvalidConfig, "exit tax must be in [0, 1], got %s", info.ExitTax)
	}

	if info.MinWithdrawal.IsNil() || info.MinWithdrawal.IsNegative() {
		return sdkerrors.Wrapf(ErrInvalidConfig, "min withdrawal must not be negative, got %s", info.MinWithdrawal)
	}

	if info.MinWithdrawal.GT(MaxAmount) {
		return sdkerrors.Wrapf(ErrInvalidConfig, "min withdrawal %s exceeds the maximum amount of %s", info.MinWithdrawal, MaxAmount)
	}

	return nil
}
