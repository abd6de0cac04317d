package pool

import (
	sdkmath "cosmossdk.io/math"
)

// ApplyExitTax splits a withdrawal value into the investor's net amount and the
// owner's tax. The tax truncates toward zero, so the withdrawer is never
// overcharged by rounding and the owner only receives whole base units.
func ApplyExitTax(value sdkmath.Int, rate sdkmath.LegacyDec) (net, tax sdkmath.Int) {
	tax = rate.MulInt(value).TruncateInt()
	net = value.Sub(tax)
	return net, tax
}
