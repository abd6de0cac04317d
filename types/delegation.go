package types

import (
	sdkmath "cosmossdk.io/math"
)

// Delegation is the external staking module's view of the pool's position
// with its validator.
type Delegation struct {
	// Validator the pool delegates to
	Validator string
	// BondedAmount is the amount currently delegated, in bond denom base units
	BondedAmount sdkmath.Int
	// PendingReward is the reward accumulated since the last withdrawal,
	// truncated to bond denom base units
	PendingReward sdkmath.Int
}
