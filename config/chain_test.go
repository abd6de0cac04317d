package config_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stakepool/staking-pool/config"
	"github.com/stakepool/staking-pool/testutil"
)

func TestChainConfigValidate(t *testing.T) {
	r := rand.New(rand.NewSource(41))

	valid := func() config.ChainConfig {
		cfg := config.DefaultChainConfig()
		cfg.Delegator = testutil.GenRandomAddress(r)
		cfg.KeyDirectory = t.TempDir()
		return cfg
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Key = ""
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.KeyringBackend = ""
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.GasLimit = 0
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Fees = "not-a-coin-amount"
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Fees = "400ustake"
	require.NoError(t, cfg.Validate())
}
