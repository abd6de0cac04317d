package pool_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/stakepool/staking-pool/pool"
)

func TestApplyExitTax(t *testing.T) {
	testCases := []struct {
		name        string
		value       int64
		rate        string
		expectedNet int64
		expectedTax int64
	}{
		{"five percent", 1000, "0.05", 950, 50},
		{"zero rate", 1000, "0", 1000, 0},
		{"full rate", 1000, "1", 0, 1000},
		{"tax truncates in the withdrawer's favor", 999, "0.05", 950, 49},
		{"tiny value rounds to no tax", 10, "0.05", 10, 0},
		{"zero value", 0, "0.05", 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rate := sdkmath.LegacyMustNewDecFromStr(tc.rate)
			net, tax := pool.ApplyExitTax(sdkmath.NewInt(tc.value), rate)
			require.True(t, net.Equal(sdkmath.NewInt(tc.expectedNet)))
			require.True(t, tax.Equal(sdkmath.NewInt(tc.expectedTax)))
			require.True(t, net.Add(tax).Equal(sdkmath.NewInt(tc.value)))
		})
	}
}
