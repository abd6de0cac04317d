package types

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// MaxAmount is the largest value any ledger amount may take, 2^128 - 1.
// sdkmath.Int is backed by a 256-bit integer, so keeping every amount within
// the unsigned 128-bit range guarantees the products inside the share
// conversions cannot overflow. The bound is enforced at the config and
// message boundaries; everything past them can rely on it.
var MaxAmount = sdkmath.NewIntFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
)
