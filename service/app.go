package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/stakepool/staking-pool/config"
	"github.com/stakepool/staking-pool/metrics"
	"github.com/stakepool/staking-pool/pool"
	poolstore "github.com/stakepool/staking-pool/pool/store"
	"github.com/stakepool/staking-pool/stakingclient"
	"github.com/stakepool/staking-pool/types"
)

var (
	RtyAttNum = uint(5)
	RtyAtt    = retry.Attempts(RtyAttNum)
	RtyDel    = retry.Delay(time.Millisecond * 400)
	RtyErr    = retry.LastErrorOnly(true)
)

const instructionQueueSize = 256

// PoolApp is the daemon core. All ledger mutations flow through a single
// event loop so that deposits, withdrawals, reinvestments and tax collection
// are strictly serialized against the persisted state. Staking instructions
// produced by a mutation are handed to a separate submission loop and executed
// only after the state change has been committed to the database.
type PoolApp struct {
	startOnce sync.Once
	stopOnce  sync.Once

	eventWg   sync.WaitGroup
	eventQuit chan struct{}

	sentWg   sync.WaitGroup
	sentQuit chan struct{}

	wg   sync.WaitGroup
	quit chan struct{}

	sc     stakingclient.StakingClient
	ps     *poolstore.PoolStore
	engine *pool.Engine
	config *config.Config
	logger *zap.Logger

	metrics *metrics.PoolMetrics

	// stateMu guards state for readers; the event loop is the only writer
	stateMu sync.RWMutex
	state   *pool.State

	depositRequestChan    chan *depositRequest
	withdrawRequestChan   chan *withdrawRequest
	reinvestRequestChan   chan *reinvestRequest
	collectTaxRequestChan chan *collectTaxRequest

	instructionChan chan types.Instruction
}

func NewPoolAppFromConfig(
	homePath string,
	cfg *config.Config,
	logger *zap.Logger,
) (*PoolApp, error) {
	info, err := cfg.Investment.ToInvestmentInfo()
	if err != nil {
		return nil, err
	}

	sc, err := stakingclient.NewCosmosStakingClient(cfg.ChainConfig, info.Validator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create staking client for chain %s: %w", cfg.ChainConfig.ChainID, err)
	}

	ps, err := poolstore.NewPoolStore(
		config.DBPath(homePath),
		cfg.DatabaseConfig.Name,
		cfg.DatabaseConfig.Backend,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open the pool store: %w", err)
	}

	return NewPoolApp(cfg, info, sc, ps, logger)
}

func NewPoolApp(
	cfg *config.Config,
	info *types.InvestmentInfo,
	sc stakingclient.StakingClient,
	ps *poolstore.PoolStore,
	logger *zap.Logger,
) (*PoolApp, error) {
	engine, err := pool.NewEngine(info)
	if err != nil {
		return nil, err
	}

	// the investment terms are fixed at first start; later starts must agree
	// with what the ledger was built under
	stored, err := ps.GetInvestmentInfo()
	switch {
	case err == nil:
		if stored.Owner != info.Owner ||
			stored.Validator != info.Validator ||
			stored.BondDenom != info.BondDenom ||
			!stored.ExitTax.Equal(info.ExitTax) ||
			!stored.MinWithdrawal.Equal(info.MinWithdrawal) {
			return nil, fmt.Errorf("the configured investment terms disagree with the ones the ledger was created under")
		}
	case errors.Is(err, poolstore.ErrInvestmentInfoNotFound):
		if err := ps.SaveInvestmentInfo(info); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	st, err := ps.LoadState()
	if err != nil {
		return nil, fmt.Errorf("failed to load the pool state: %w", err)
	}

	return &PoolApp{
		sc:                    sc,
		ps:                    ps,
		engine:                engine,
		config:                cfg,
		logger:                logger,
		metrics:               metrics.NewPoolMetrics(),
		state:                 st,
		quit:                  make(chan struct{}),
		sentQuit:              make(chan struct{}),
		eventQuit:             make(chan struct{}),
		depositRequestChan:    make(chan *depositRequest),
		withdrawRequestChan:   make(chan *withdrawRequest),
		reinvestRequestChan:   make(chan *reinvestRequest),
		collectTaxRequestChan: make(chan *collectTaxRequest),
		instructionChan:       make(chan types.Instruction, instructionQueueSize),
	}, nil
}

func (app *PoolApp) Start() error {
	var startErr error
	app.startOnce.Do(func() {
		app.logger.Info("Starting PoolApp")

		app.metrics.RecordPoolState(app.currentState())

		app.eventWg.Add(1)
		go app.eventLoop()

		app.sentWg.Add(1)
		go app.instructionSubmissionLoop()

		if app.config.Reinvest.Policy == config.ReinvestPolicyInterval {
			app.wg.Add(1)
			go app.rewardTickLoop()
		}
	})

	return startErr
}

func (app *PoolApp) Stop() error {
	var stopErr error
	app.stopOnce.Do(func() {
		app.logger.Info("Stopping PoolApp")

		// Stop the reward ticker first to not generate additional events
		app.logger.Debug("Stopping reward tick loop")
		close(app.quit)
		app.wg.Wait()

		app.logger.Debug("Stopping main eventLoop")
		close(app.eventQuit)
		app.eventWg.Wait()

		// drain what the event loop already enqueued before shutting down
		app.logger.Debug("Stopping instruction submission loop")
		close(app.sentQuit)
		app.sentWg.Wait()

		app.logger.Debug("Closing the pool store")
		if err := app.ps.Close(); err != nil {
			stopErr = err
			return
		}

		app.logger.Debug("Closing the staking client")
		if err := app.sc.Close(); err != nil {
			stopErr = err
			return
		}

		app.logger.Debug("PoolApp successfully stopped")
	})
	return stopErr
}

func (app *PoolApp) InvestmentInfo() *types.InvestmentInfo {
	return app.engine.Info()
}

// Deposit mints shares for the given bonded-token amount and schedules the
// delegation with the external staking module.
func (app *PoolApp) Deposit(depositor string, amount sdkmath.Int) (*DepositResult, error) {
	req := &depositRequest{
		depositor:       depositor,
		amount:          amount,
		errResponse:     make(chan error, 1),
		successResponse: make(chan *depositResponse, 1),
	}

	select {
	case app.depositRequestChan <- req:
	case <-app.eventQuit:
		return nil, fmt.Errorf("pool app is shutting down")
	}

	select {
	case err := <-req.errResponse:
		return nil, err
	case successResponse := <-req.successResponse:
		return &DepositResult{MintedShares: successResponse.MintedShares}, nil
	case <-app.eventQuit:
		return nil, fmt.Errorf("pool app is shutting down")
	}
}

// Withdraw burns the investor's shares and schedules the unbonding of their
// after-tax value.
func (app *PoolApp) Withdraw(investor string, shares sdkmath.Int) (*WithdrawResult, error) {
	req := &withdrawRequest{
		investor:        investor,
		shares:          shares,
		errResponse:     make(chan error, 1),
		successResponse: make(chan *withdrawResponse, 1),
	}

	select {
	case app.withdrawRequestChan <- req:
	case <-app.eventQuit:
		return nil, fmt.Errorf("pool app is shutting down")
	}

	select {
	case err := <-req.errResponse:
		return nil, err
	case successResponse := <-req.successResponse:
		return &WithdrawResult{
			BurnedShares: successResponse.BurnedShares,
			NetValue:     successResponse.NetValue,
		}, nil
	case <-app.eventQuit:
		return nil, fmt.Errorf("pool app is shutting down")
	}
}

// Reinvest triggers a reward tick right now, independent of the configured
// reinvest policy.
func (app *PoolApp) Reinvest() (*ReinvestResult, error) {
	req := &reinvestRequest{
		errResponse:     make(chan error, 1),
		successResponse: make(chan *reinvestResponse, 1),
	}

	select {
	case app.reinvestRequestChan <- req:
	case <-app.eventQuit:
		return nil, fmt.Errorf("pool app is shutting down")
	}

	select {
	case err := <-req.errResponse:
		return nil, err
	case successResponse := <-req.successResponse:
		return &ReinvestResult{
			Reinvested: successResponse.Reinvested,
			Deferred:   successResponse.Deferred,
		}, nil
	case <-app.eventQuit:
		return nil, fmt.Errorf("pool app is shutting down")
	}
}

// CollectOwnerTax disburses the accumulated exit tax to the pool owner.
func (app *PoolApp) CollectOwnerTax() (*CollectTaxResult, error) {
	req := &collectTaxRequest{
		errResponse:     make(chan error, 1),
		successResponse: make(chan *collectTaxResponse, 1),
	}

	select {
	case app.collectTaxRequestChan <- req:
	case <-app.eventQuit:
		return nil, fmt.Errorf("pool app is shutting down")
	}

	select {
	case err := <-req.errResponse:
		return nil, err
	case successResponse := <-req.successResponse:
		return &CollectTaxResult{Collected: successResponse.Collected}, nil
	case <-app.eventQuit:
		return nil, fmt.Errorf("pool app is shutting down")
	}
}

// QueryBalance returns the investor's share balance from the committed state.
func (app *PoolApp) QueryBalance(addr string) sdkmath.Int {
	return app.currentState().SharesOf(addr)
}

func (app *PoolApp) QuerySupply() pool.Supply {
	return app.currentState().Supply
}

func (app *PoolApp) QueryPendingOwnerTax() sdkmath.Int {
	return app.currentState().PendingOwnerTax
}

func (app *PoolApp) QueryExchangeRate() sdkmath.LegacyDec {
	return app.currentState().Supply.ExchangeRate()
}

// QueryDelegation asks the external staking module for its view of the pool's
// position. It reflects chain state, not the pool ledger, so the two can
// disagree while instructions are in flight.
func (app *PoolApp) QueryDelegation() (*types.Delegation, error) {
	return app.queryDelegationWithRetry()
}

func (app *PoolApp) currentState() *pool.State {
	app.stateMu.RLock()
	defer app.stateMu.RUnlock()
	return app.state
}

// commit persists the state transition and publishes it to readers. The
// instructions are enqueued only after the commit succeeded, so the external
// module never sees effects of a state the pool did not keep.
func (app *PoolApp) commit(res *pool.Result) error {
	prev := app.currentState()
	if err := app.ps.CommitState(prev, res.State); err != nil {
		return fmt.Errorf("failed to commit the pool state: %w", err)
	}

	app.stateMu.Lock()
	app.state = res.State
	app.stateMu.Unlock()

	app.metrics.RecordPoolState(res.State)

	for _, in := range res.Instructions {
		app.instructionChan <- in
	}

	return nil
}

func (app *PoolApp) handleDepositRequest(req *depositRequest) (*depositResponse, error) {
	res, err := app.engine.Deposit(app.currentState(), req.depositor, req.amount)
	if err != nil {
		return nil, err
	}

	minted := res.State.SharesOf(req.depositor).Sub(app.currentState().SharesOf(req.depositor))

	if err := app.commit(res); err != nil {
		return nil, err
	}

	app.metrics.IncrementTotalDeposits()
	app.logger.Info(
		"accepted deposit",
		zap.String("depositor", req.depositor),
		zap.String("amount", req.amount.String()),
		zap.String("minted_shares", minted.String()),
	)

	return &depositResponse{MintedShares: minted, Instructions: res.Instructions}, nil
}

func (app *PoolApp) handleWithdrawRequest(req *withdrawRequest) (*withdrawResponse, error) {
	res, err := app.engine.Withdraw(app.currentState(), req.investor, req.shares)
	if err != nil {
		return nil, err
	}

	net := sdkmath.ZeroInt()
	for _, in := range res.Instructions {
		if in.Type == types.InstructionUnbond {
			net = in.Amount
		}
	}
	taxCharged := res.State.PendingOwnerTax.Sub(app.currentState().PendingOwnerTax)

	if err := app.commit(res); err != nil {
		return nil, err
	}

	app.metrics.IncrementTotalWithdrawals()
	app.metrics.AddTotalTaxCharged(taxCharged)
	app.logger.Info(
		"accepted withdrawal",
		zap.String("investor", req.investor),
		zap.String("burned_shares", req.shares.String()),
		zap.String("net_value", net.String()),
		zap.String("tax", taxCharged.String()),
	)

	return &withdrawResponse{
		BurnedShares: req.shares,
		NetValue:     net,
		Instructions: res.Instructions,
	}, nil
}

// handleRewardTick is a full reward tick: query the pending reward, fold it
// into the supply ledger if it clears the minimum batch, and schedule the
// claim and re-delegation.
func (app *PoolApp) handleRewardTick() (*reinvestResponse, error) {
	del, err := app.queryDelegationWithRetry()
	if err != nil {
		return nil, err
	}

	res, err := app.engine.ReinvestRewards(app.currentState(), del.PendingReward)
	if err != nil {
		return nil, err
	}

	if len(res.Instructions) == 0 {
		app.logger.Debug(
			"deferring reinvestment",
			zap.String("pending_reward", del.PendingReward.String()),
			zap.String("min_batch", app.engine.Info().MinWithdrawal.String()),
		)
		return &reinvestResponse{Reinvested: sdkmath.ZeroInt(), Deferred: true}, nil
	}

	if err := app.commit(res); err != nil {
		return nil, err
	}

	app.metrics.AddTotalReinvested(del.PendingReward)
	app.logger.Info(
		"reinvesting rewards",
		zap.String("amount", del.PendingReward.String()),
	)

	return &reinvestResponse{Reinvested: del.PendingReward}, nil
}

func (app *PoolApp) handleCollectTaxRequest() (*collectTaxResponse, error) {
	cur := app.currentState()
	res, err := app.engine.CollectOwnerTax(cur)
	if err != nil {
		return nil, err
	}

	collected := cur.PendingOwnerTax

	if len(res.Instructions) == 0 {
		return &collectTaxResponse{Collected: sdkmath.ZeroInt()}, nil
	}

	if err := app.commit(res); err != nil {
		return nil, err
	}

	app.logger.Info(
		"collecting owner tax",
		zap.String("owner", app.engine.Info().Owner),
		zap.String("amount", collected.String()),
	)

	return &collectTaxResponse{Collected: collected}, nil
}

// main event loop for the pool app; every ledger mutation happens here
func (app *PoolApp) eventLoop() {
	defer app.eventWg.Done()

	for {
		select {
		case req := <-app.depositRequestChan:
			res, err := app.handleDepositRequest(req)
			if err != nil {
				req.errResponse <- err
				continue
			}

			req.successResponse <- res
			app.maybeTickOnCall()

		case req := <-app.withdrawRequestChan:
			res, err := app.handleWithdrawRequest(req)
			if err != nil {
				req.errResponse <- err
				continue
			}

			req.successResponse <- res
			app.maybeTickOnCall()

		case req := <-app.reinvestRequestChan:
			res, err := app.handleRewardTick()
			if err != nil {
				req.errResponse <- err
				continue
			}

			req.successResponse <- res

		case req := <-app.collectTaxRequestChan:
			res, err := app.handleCollectTaxRequest()
			if err != nil {
				req.errResponse <- err
				continue
			}

			req.successResponse <- res

		case <-app.eventQuit:
			app.logger.Debug("exiting main event loop")
			return
		}
	}
}

// maybeTickOnCall amortizes reinvestment over depositor traffic when the
// oncall policy is configured.
func (app *PoolApp) maybeTickOnCall() {
	if app.config.Reinvest.Policy != config.ReinvestPolicyOnCall {
		return
	}

	if _, err := app.handleRewardTick(); err != nil {
		app.logger.Error("on-call reward tick failed", zap.Error(err))
	}
}

func (app *PoolApp) rewardTickLoop() {
	defer app.wg.Done()

	ticker := time.NewTicker(app.config.Reinvest.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			req := &reinvestRequest{
				errResponse:     make(chan error, 1),
				successResponse: make(chan *reinvestResponse, 1),
			}

			select {
			case app.reinvestRequestChan <- req:
			case <-app.quit:
				app.logger.Debug("exiting reward tick loop")
				return
			}

			select {
			case err := <-req.errResponse:
				app.logger.Error("reward tick failed", zap.Error(err))
			case <-req.successResponse:
			case <-app.quit:
				app.logger.Debug("exiting reward tick loop")
				return
			}

		case <-app.quit:
			app.logger.Debug("exiting reward tick loop")
			return
		}
	}
}

// instructionSubmissionLoop drains the instruction queue and executes each
// instruction against the external staking module with retries. The pool state
// is already committed at this point, so failed instructions are logged and
// surfaced through metrics rather than rolled back; the chain position catches
// up on a later tick.
func (app *PoolApp) instructionSubmissionLoop() {
	defer app.sentWg.Done()

	for {
		select {
		case in := <-app.instructionChan:
			app.submitInstruction(in)
		case <-app.sentQuit:
			// drain the queue so committed effects are not dropped on shutdown
			for {
				select {
				case in := <-app.instructionChan:
					app.submitInstruction(in)
				default:
					app.logger.Debug("exiting instruction submission loop")
					return
				}
			}
		}
	}
}

func (app *PoolApp) submitInstruction(in types.Instruction) {
	app.metrics.IncrementInstructionSubmissions(in.Type.String())

	if err := retry.Do(func() error {
		if err := app.executeInstruction(in); err != nil {
			if stakingclient.IsExpected(err) {
				// a benign outcome, e.g. the tx is already in the mempool
				// from an earlier attempt
				app.logger.Debug(
					"expected error while executing a staking instruction",
					zap.String("instruction", in.String()),
					zap.Error(err),
				)
				return nil
			}
			if stakingclient.IsUnrecoverable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		}
		return nil
	}, RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		app.logger.Debug(
			"failed to execute a staking instruction",
			zap.String("instruction", in.String()),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		app.metrics.IncrementInstructionFailures(in.Type.String())
		app.logger.Error(
			"giving up on a staking instruction",
			zap.String("instruction", in.String()),
			zap.Error(err),
		)
	}
}

func (app *PoolApp) executeInstruction(in types.Instruction) error {
	info := app.engine.Info()

	switch in.Type {
	case types.InstructionBond:
		return app.sc.Bond(in.Denom, in.Amount)
	case types.InstructionUnbond:
		return app.sc.Unbond(in.Denom, in.Amount)
	case types.InstructionWithdrawRewards:
		claimed, err := app.sc.WithdrawRewards(info.BondDenom)
		if err != nil {
			return err
		}
		app.logger.Debug("claimed delegation rewards", zap.String("amount", claimed.String()))
		return nil
	case types.InstructionPayOwner:
		return app.sc.SendToOwner(info.Owner, in.Denom, in.Amount)
	default:
		return fmt.Errorf("unknown instruction type: %d", in.Type)
	}
}

func (app *PoolApp) queryDelegationWithRetry() (*types.Delegation, error) {
	var response *types.Delegation

	if err := retry.Do(func() error {
		del, err := app.sc.QueryDelegation(app.engine.Info().BondDenom)
		if err != nil {
			return err
		}
		response = del
		return nil
	}, RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		app.logger.Debug(
			"failed to query the staking module for the pool delegation",
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return nil, err
	}
	return response, nil
}
