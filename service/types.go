package service

import (
	sdkmath "cosmossdk.io/math"

	"github.com/stakepool/staking-pool/types"
)

type depositResponse struct {
	MintedShares sdkmath.Int
	Instructions []types.Instruction
}

type depositRequest struct {
	depositor       string
	amount          sdkmath.Int
	errResponse     chan error
	successResponse chan *depositResponse
}

type withdrawResponse struct {
	BurnedShares sdkmath.Int
	NetValue     sdkmath.Int
	Instructions []types.Instruction
}

type withdrawRequest struct {
	investor        string
	shares          sdkmath.Int
	errResponse     chan error
	successResponse chan *withdrawResponse
}

type reinvestResponse struct {
	Reinvested sdkmath.Int
	// Deferred is set when the pending reward was below the minimum batch
	// size (or the pool is empty) and nothing was staked this tick
	Deferred bool
}

type reinvestRequest struct {
	errResponse     chan error
	successResponse chan *reinvestResponse
}

type collectTaxResponse struct {
	Collected sdkmath.Int
}

type collectTaxRequest struct {
	errResponse     chan error
	successResponse chan *collectTaxResponse
}

// DepositResult is returned to the depositor once the state commit succeeded.
type DepositResult struct {
	MintedShares sdkmath.Int
}

type WithdrawResult struct {
	BurnedShares sdkmath.Int
	NetValue     sdkmath.Int
}

type ReinvestResult struct {
	Reinvested sdkmath.Int
	Deferred   bool
}

type CollectTaxResult struct {
	Collected sdkmath.Int
}
