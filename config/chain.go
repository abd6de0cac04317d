package config

import (
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	defaultChainID        = "stakepool-devnet"
	defaultGRPCAddr       = "127.0.0.1:9090"
	defaultChainTimeout   = 20 * time.Second
	defaultKey            = "delegator"
	defaultKeyringBackend = "test"
	defaultGasLimit       = 300_000
)

// ChainConfig points the staking client at the host chain and holds what it
// needs to sign transactions on behalf of the delegator account.
type ChainConfig struct {
	ChainID        string        `long:"chainid" description:"The chain id of the host chain"`
	GRPCAddr       string        `long:"grpcaddr" description:"The gRPC address of a host chain node"`
	Delegator      string        `long:"delegator" description:"The pool's own account address that holds the delegation"`
	Key            string        `long:"key" description:"The name of the delegator key in the keyring"`
	KeyringBackend string        `long:"keyring-type" description:"The type of keyring to use"`
	KeyDirectory   string        `long:"key-dir" description:"The directory holding the keyring"`
	GasLimit       uint64        `long:"gas-limit" description:"The gas limit set on every transaction"`
	Fees           string        `long:"fees" description:"The flat fee attached to every transaction, e.g. 400ustake"`
	Timeout        time.Duration `long:"timeout" description:"The timeout for calls to the host chain"`
}

func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		ChainID:        defaultChainID,
		GRPCAddr:       defaultGRPCAddr,
		Key:            defaultKey,
		KeyringBackend: defaultKeyringBackend,
		GasLimit:       defaultGasLimit,
		Timeout:        defaultChainTimeout,
	}
}

func (cfg *ChainConfig) Validate() error {
	if cfg.GRPCAddr == "" {
		return fmt.Errorf("grpc address not specified")
	}

	if cfg.Delegator == "" {
		return fmt.Errorf("delegator address not specified")
	}
	if _, err := sdk.AccAddressFromBech32(cfg.Delegator); err != nil {
		return fmt.Errorf("delegator: invalid bech32 address: %w", err)
	}

	if cfg.Key == "" {
		return fmt.Errorf("key name not specified")
	}

	if cfg.KeyringBackend == "" {
		return fmt.Errorf("keyring backend not specified")
	}

	if cfg.GasLimit == 0 {
		return fmt.Errorf("gas limit must be positive")
	}

	if cfg.Fees != "" {
		if _, err := sdk.ParseCoinsNormalized(cfg.Fees); err != nil {
			return fmt.Errorf("fees: %w", err)
		}
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}
