package config

import (
	sdkerrors "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/stakepool/staking-pool/types"
)

// InvestmentConfig carries the pool's immutable economic parameters as
// strings, the way they arrive from the config file. ExitTax is an
// 18-fractional-digit decimal and MinWithdrawal a base-unit integer, both kept
// as decimal strings to preserve the full unsigned 128-bit range.
type InvestmentConfig struct {
	Owner         string `long:"owner" description:"The address that receives the exit tax"`
	Validator     string `long:"validator" description:"The validator the pool delegates to"`
	BondDenom     string `long:"bonddenom" description:"The token denomination accepted and bonded"`
	ExitTax       string `long:"exittax" description:"Fraction in [0, 1] retained for the owner on withdrawal, e.g. 0.05"`
	MinWithdrawal string `long:"minwithdrawal" description:"The minimum amount for one withdrawal or one reinvestment batch, in base units"`
}

func DefaultInvestmentConfig() InvestmentConfig {
	return InvestmentConfig{
		BondDenom:     "ustake",
		ExitTax:       "0",
		MinWithdrawal: "1",
	}
}

// ToInvestmentInfo parses and validates the configured parameters.
func (cfg *InvestmentConfig) ToInvestmentInfo() (*types.InvestmentInfo, error) {
	exitTax, err := sdkmath.LegacyNewDecFromStr(cfg.ExitTax)
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrInvalidConfig, "invalid exit tax %q: %s", cfg.ExitTax, err.Error())
	}

	minWithdrawal, ok := sdkmath.NewIntFromString(cfg.MinWithdrawal)
	if !ok {
		return nil, sdkerrors.Wrapf(types.ErrInvalidConfig, "invalid min withdrawal %q", cfg.MinWithdrawal)
	}

	info := &types.InvestmentInfo{
		Owner:         cfg.Owner,
		Validator:     cfg.Validator,
		BondDenom:     cfg.BondDenom,
		ExitTax:       exitTax,
		MinWithdrawal: minWithdrawal,
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	return info, nil
}
