package types

import (
	"errors"
)

var (
	// ErrInvalidConfig is returned when the investment info provided at creation is malformed
	ErrInvalidConfig = errors.New("the investment configuration is invalid")
	// ErrInsufficientBalance is returned when a withdrawal requests more shares than the investor holds
	ErrInsufficientBalance = errors.New("the investor does not hold enough shares")
	// ErrBelowMinimum is returned when a partial withdrawal or a reinvestment batch is below min_withdrawal
	ErrBelowMinimum = errors.New("the amount is below the minimum withdrawal")
	// ErrInsufficientSupply indicates an internal invariant breach of the supply ledger
	ErrInsufficientSupply = errors.New("the pool has no outstanding shares to redeem against")
	// ErrExternalModuleFailure is returned when a call to the external staking module fails
	ErrExternalModuleFailure = errors.New("the external staking module call failed")
)
