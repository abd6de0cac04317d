package stakingclient

import (
	"context"
	"fmt"
	"strings"

	sdkerrors "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdkclient "github.com/cosmos/cosmos-sdk/client"
	clienttx "github.com/cosmos/cosmos-sdk/client/tx"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	cryptocodec "github.com/cosmos/cosmos-sdk/crypto/codec"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrortypes "github.com/cosmos/cosmos-sdk/types/errors"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
	authtx "github.com/cosmos/cosmos-sdk/x/auth/tx"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	distrtypes "github.com/cosmos/cosmos-sdk/x/distribution/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/stakepool/staking-pool/config"
	"github.com/stakepool/staking-pool/types"
)

var _ StakingClient = &CosmosStakingClient{}

// CosmosStakingClient submits the pool's staking, distribution and bank
// messages to a cosmos-sdk chain as signed transactions, broadcast through the
// node's tx service, and reads state back through the module query services.
// Msg services only exist on the app-side message router, so writes always go
// through a full sign-and-broadcast round trip.
type CosmosStakingClient struct {
	conn *grpc.ClientConn

	cdc      codec.Codec
	txConfig sdkclient.TxConfig
	kr       keyring.Keyring

	txService    txtypes.ServiceClient
	authQuery    authtypes.QueryClient
	stakingQuery stakingtypes.QueryClient
	distrQuery   distrtypes.QueryClient

	cfg       *config.ChainConfig
	validator string
	logger    *zap.Logger
}

func NewCosmosStakingClient(cfg *config.ChainConfig, validator string, logger *zap.Logger) (*CosmosStakingClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chain config: %w", err)
	}

	// establish grpc connection
	conn, err := grpc.NewClient(cfg.GRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to build gRPC connection to %s: %w", cfg.GRPCAddr, err)
	}

	registry := codectypes.NewInterfaceRegistry()
	cryptocodec.RegisterInterfaces(registry)
	authtypes.RegisterInterfaces(registry)
	stakingtypes.RegisterInterfaces(registry)
	distrtypes.RegisterInterfaces(registry)
	banktypes.RegisterInterfaces(registry)
	cdc := codec.NewProtoCodec(registry)

	kr, err := keyring.New("spd", cfg.KeyringBackend, cfg.KeyDirectory, strings.NewReader(""), cdc)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	return &CosmosStakingClient{
		conn:         conn,
		cdc:          cdc,
		txConfig:     authtx.NewTxConfig(cdc, authtx.DefaultSignModes),
		kr:           kr,
		txService:    txtypes.NewServiceClient(conn),
		authQuery:    authtypes.NewQueryClient(conn),
		stakingQuery: stakingtypes.NewQueryClient(conn),
		distrQuery:   distrtypes.NewQueryClient(conn),
		cfg:          cfg,
		validator:    validator,
		logger:       logger,
	}, nil
}

func (c *CosmosStakingClient) reqContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.cfg.Timeout)
}

// delegatorAccount fetches the delegator's account number and sequence from
// the auth module.
func (c *CosmosStakingClient) delegatorAccount(ctx context.Context) (sdk.AccountI, error) {
	res, err := c.authQuery.Account(ctx, &authtypes.QueryAccountRequest{Address: c.cfg.Delegator})
	if err != nil {
		return nil, fmt.Errorf("query account %s: %w", c.cfg.Delegator, err)
	}

	var acc sdk.AccountI
	if err := c.cdc.UnpackAny(res.Account, &acc); err != nil {
		return nil, fmt.Errorf("unpack account %s: %w", c.cfg.Delegator, err)
	}
	return acc, nil
}

// signAndBroadcast wraps the messages in a transaction signed by the
// delegator key and hands it to the node's tx service. Sync broadcast mode
// only waits for CheckTx, so a nil error means the transaction was accepted
// into the mempool, not that it has settled.
func (c *CosmosStakingClient) signAndBroadcast(ctx context.Context, msgs ...sdk.Msg) error {
	acc, err := c.delegatorAccount(ctx)
	if err != nil {
		return err
	}

	txf := clienttx.Factory{}.
		WithKeybase(c.kr).
		WithTxConfig(c.txConfig).
		WithChainID(c.cfg.ChainID).
		WithAccountNumber(acc.GetAccountNumber()).
		WithSequence(acc.GetSequence()).
		WithGas(c.cfg.GasLimit).
		WithFees(c.cfg.Fees).
		WithSignMode(signing.SignMode_SIGN_MODE_DIRECT)

	txb, err := txf.BuildUnsignedTx(msgs...)
	if err != nil {
		return fmt.Errorf("build tx: %w", err)
	}

	if err := clienttx.Sign(ctx, txf, c.cfg.Key, txb, true); err != nil {
		return fmt.Errorf("sign tx with key %s: %w", c.cfg.Key, err)
	}

	raw, err := c.txConfig.TxEncoder()(txb.GetTx())
	if err != nil {
		return fmt.Errorf("encode tx: %w", err)
	}

	res, err := c.txService.BroadcastTx(ctx, &txtypes.BroadcastTxRequest{
		TxBytes: raw,
		Mode:    txtypes.BroadcastMode_BROADCAST_MODE_SYNC,
	})
	if err != nil {
		return fmt.Errorf("broadcast tx: %w", err)
	}

	tr := res.TxResponse
	if err := checkBroadcastResult(tr); err != nil {
		return err
	}

	c.logger.Debug("successfully broadcast tx", zap.String("tx_hash", tr.TxHash))

	return nil
}

// checkBroadcastResult maps a CheckTx result onto the retry taxonomy.
func checkBroadcastResult(tr *sdk.TxResponse) error {
	if tr.Code == 0 {
		return nil
	}
	// the same tx sitting in the mempool from an earlier attempt means the
	// submission already succeeded
	if tr.Codespace == sdkerrortypes.ErrTxInMempoolCache.Codespace() &&
		tr.Code == sdkerrortypes.ErrTxInMempoolCache.ABCICode() {
		return Expected(fmt.Errorf("tx %s already in mempool", tr.TxHash))
	}
	return fmt.Errorf("tx %s rejected with code %d: %s", tr.TxHash, tr.Code, tr.RawLog)
}

func (c *CosmosStakingClient) Bond(denom string, amount sdkmath.Int) error {
	ctx, cancel := c.reqContext()
	defer cancel()

	msg := &stakingtypes.MsgDelegate{
		DelegatorAddress: c.cfg.Delegator,
		ValidatorAddress: c.validator,
		Amount:           sdk.NewCoin(denom, amount),
	}
	if err := c.signAndBroadcast(ctx, msg); err != nil {
		if IsExpected(err) {
			return err
		}
		return sdkerrors.Wrapf(types.ErrExternalModuleFailure, "delegate: %s", err.Error())
	}

	c.logger.Debug("successfully bonded",
		zap.String("validator", c.validator), zap.String("amount", amount.String()))

	return nil
}

func (c *CosmosStakingClient) Unbond(denom string, amount sdkmath.Int) error {
	ctx, cancel := c.reqContext()
	defer cancel()

	msg := &stakingtypes.MsgUndelegate{
		DelegatorAddress: c.cfg.Delegator,
		ValidatorAddress: c.validator,
		Amount:           sdk.NewCoin(denom, amount),
	}
	if err := c.signAndBroadcast(ctx, msg); err != nil {
		if IsExpected(err) {
			return err
		}
		return sdkerrors.Wrapf(types.ErrExternalModuleFailure, "undelegate: %s", err.Error())
	}

	c.logger.Debug("successfully requested unbonding",
		zap.String("validator", c.validator), zap.String("amount", amount.String()))

	return nil
}

func (c *CosmosStakingClient) WithdrawRewards(denom string) (sdkmath.Int, error) {
	ctx, cancel := c.reqContext()
	defer cancel()

	// sync broadcast returns before the tx executes, so the claimed amount
	// is read from the distribution module ahead of the withdrawal
	rewardRes, err := c.distrQuery.DelegationRewards(ctx, &distrtypes.QueryDelegationRewardsRequest{
		DelegatorAddress: c.cfg.Delegator,
		ValidatorAddress: c.validator,
	})
	if err != nil {
		return sdkmath.Int{}, sdkerrors.Wrapf(types.ErrExternalModuleFailure, "query delegation rewards: %s", err.Error())
	}
	claimed := rewardRes.Rewards.AmountOf(denom).TruncateInt()

	msg := &distrtypes.MsgWithdrawDelegatorReward{
		DelegatorAddress: c.cfg.Delegator,
		ValidatorAddress: c.validator,
	}
	if err := c.signAndBroadcast(ctx, msg); err != nil {
		if IsExpected(err) {
			return claimed, err
		}
		return sdkmath.Int{}, sdkerrors.Wrapf(types.ErrExternalModuleFailure, "withdraw rewards: %s", err.Error())
	}

	c.logger.Debug("successfully withdrawn rewards", zap.String("amount", claimed.String()))

	return claimed, nil
}

func (c *CosmosStakingClient) QueryDelegation(denom string) (*types.Delegation, error) {
	ctx, cancel := c.reqContext()
	defer cancel()

	bonded := sdkmath.ZeroInt()
	delRes, err := c.stakingQuery.Delegation(ctx, &stakingtypes.QueryDelegationRequest{
		DelegatorAddr: c.cfg.Delegator,
		ValidatorAddr: c.validator,
	})
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrExternalModuleFailure, "query delegation: %s", err.Error())
	}
	if delRes.DelegationResponse != nil {
		bonded = delRes.DelegationResponse.Balance.Amount
	}

	rewardRes, err := c.distrQuery.DelegationRewards(ctx, &distrtypes.QueryDelegationRewardsRequest{
		DelegatorAddress: c.cfg.Delegator,
		ValidatorAddress: c.validator,
	})
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrExternalModuleFailure, "query delegation rewards: %s", err.Error())
	}

	return &types.Delegation{
		Validator:    c.validator,
		BondedAmount: bonded,
		// rewards accrue as decimals, only whole base units can be restaked
		PendingReward: rewardRes.Rewards.AmountOf(denom).TruncateInt(),
	}, nil
}

func (c *CosmosStakingClient) SendToOwner(owner string, denom string, amount sdkmath.Int) error {
	ctx, cancel := c.reqContext()
	defer cancel()

	msg := &banktypes.MsgSend{
		FromAddress: c.cfg.Delegator,
		ToAddress:   owner,
		Amount:      sdk.NewCoins(sdk.NewCoin(denom, amount)),
	}
	if err := c.signAndBroadcast(ctx, msg); err != nil {
		if IsExpected(err) {
			return err
		}
		return sdkerrors.Wrapf(types.ErrExternalModuleFailure, "send to owner: %s", err.Error())
	}

	return nil
}

func (c *CosmosStakingClient) Close() error {
	return c.conn.Close()
}
