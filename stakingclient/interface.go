package stakingclient

import (
	sdkmath "cosmossdk.io/math"

	"github.com/stakepool/staking-pool/types"
)

// StakingClient is the pool's window to the host chain's staking module. The
// engine never calls it directly: it emits instructions, and the service layer
// executes them here after the state commit. Implementations are expected to be
// synchronous at the transport level but must not be assumed to settle
// immediately on chain (unbonding in particular completes much later).
type StakingClient interface {
	// Bond delegates the given amount to the pool's validator
	Bond(denom string, amount sdkmath.Int) error

	// Unbond undelegates the given amount from the pool's validator
	Unbond(denom string, amount sdkmath.Int) error

	// WithdrawRewards claims all pending delegation rewards and returns the
	// claimed amount in bond denom base units
	WithdrawRewards(denom string) (sdkmath.Int, error)

	// QueryDelegation returns the staking module's view of the pool's position
	QueryDelegation(denom string) (*types.Delegation, error)

	// SendToOwner transfers unbonded funds to the pool owner
	SendToOwner(owner string, denom string, amount sdkmath.Int) error

	Close() error
}
