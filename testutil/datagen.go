package testutil

import (
	"encoding/hex"
	"math/rand"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/stakepool/staking-pool/types"
)

func GenRandomByteArray(r *rand.Rand, length uint64) []byte {
	newHeaderBytes := make([]byte, length)
	r.Read(newHeaderBytes)
	return newHeaderBytes
}

func GenRandomHexStr(r *rand.Rand, length uint64) string {
	randBytes := GenRandomByteArray(r, length)
	return hex.EncodeToString(randBytes)
}

func AddRandomSeedsToFuzzer(f *testing.F, num uint) {
	// Seed based on the current time
	r := rand.New(rand.NewSource(time.Now().Unix()))
	var idx uint
	for idx = 0; idx < num; idx++ {
		f.Add(r.Int63())
	}
}

// GenRandomAddress returns a random bech32 account address.
func GenRandomAddress(r *rand.Rand) string {
	return sdk.AccAddress(GenRandomByteArray(r, 20)).String()
}

// GenRandomValidator returns a random validator operator identifier.
func GenRandomValidator(r *rand.Rand) string {
	return sdk.ValAddress(GenRandomByteArray(r, 20)).String()
}

// RandPositiveInt returns a random amount in [1, max].
func RandPositiveInt(r *rand.Rand, max int64) sdkmath.Int {
	return sdkmath.NewInt(r.Int63n(max) + 1)
}

// GenRandomInvestmentInfo returns a valid investment info with a random owner
// and validator, an exit tax below 100% and a small min withdrawal.
func GenRandomInvestmentInfo(r *rand.Rand) *types.InvestmentInfo {
	return &types.InvestmentInfo{
		Owner:         GenRandomAddress(r),
		Validator:     GenRandomValidator(r),
		BondDenom:     "ustake",
		ExitTax:       sdkmath.LegacyNewDecWithPrec(r.Int63n(1000), 3),
		MinWithdrawal: RandPositiveInt(r, 1000),
	}
}
