package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/stakepool/staking-pool/schema"
	"github.com/stakepool/staking-pool/types"
)

// rpcServer exposes the depositor-facing JSON API over HTTP. The wire shapes
// live in the schema package; the server only translates between them and the
// PoolApp, which does all the real work on its event loop.
type rpcServer struct {
	app    *PoolApp
	logger *zap.Logger
}

func newRPCServer(app *PoolApp, logger *zap.Logger) *rpcServer {
	return &rpcServer{
		app:    app,
		logger: logger,
	}
}

func (r *rpcServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/execute", r.handleExecute)
	mux.HandleFunc("/v1/query", r.handleQuery)
	return mux
}

func (r *rpcServer) handleExecute(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("execute requires POST"))
		return
	}

	var msg schema.ExecuteMsg
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed execute message: %w", err))
		return
	}

	switch {
	case msg.Deposit != nil:
		r.execDeposit(w, msg.Deposit)
	case msg.Withdraw != nil:
		r.execWithdraw(w, msg.Withdraw)
	case msg.Reinvest != nil:
		r.execReinvest(w)
	case msg.CollectTax != nil:
		r.execCollectTax(w)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("empty execute message"))
	}
}

func (r *rpcServer) execDeposit(w http.ResponseWriter, msg *schema.Deposit) {
	amount, err := parseAmount(msg.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid deposit amount: %w", err))
		return
	}

	res, err := r.app.Deposit(msg.Sender, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, &schema.ExecuteResponse{Shares: res.MintedShares.String()})
}

func (r *rpcServer) execWithdraw(w http.ResponseWriter, msg *schema.Withdraw) {
	shares, err := parseAmount(msg.Shares)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid share amount: %w", err))
		return
	}

	res, err := r.app.Withdraw(msg.Sender, shares)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, &schema.ExecuteResponse{
		Shares: res.BurnedShares.String(),
		Instructions: []string{
			types.UnbondInstruction(r.app.InvestmentInfo().BondDenom, res.NetValue).String(),
		},
	})
}

func (r *rpcServer) execReinvest(w http.ResponseWriter) {
	res, err := r.app.Reinvest()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := &schema.ExecuteResponse{}
	if !res.Deferred {
		resp.Instructions = []string{
			types.WithdrawRewardsInstruction().String(),
			types.BondInstruction(r.app.InvestmentInfo().BondDenom, res.Reinvested).String(),
		}
	}
	writeJSON(w, resp)
}

func (r *rpcServer) execCollectTax(w http.ResponseWriter) {
	res, err := r.app.CollectOwnerTax()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := &schema.ExecuteResponse{}
	if res.Collected.IsPositive() {
		info := r.app.InvestmentInfo()
		resp.Instructions = []string{
			types.UnbondInstruction(info.BondDenom, res.Collected).String(),
			types.PayOwnerInstruction(info.BondDenom, res.Collected).String(),
		}
	}
	writeJSON(w, resp)
}

func (r *rpcServer) handleQuery(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("query requires POST"))
		return
	}

	var msg schema.QueryMsg
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed query message: %w", err))
		return
	}

	switch {
	case msg.Balance != nil:
		shares := r.app.QueryBalance(msg.Balance.Address)
		writeJSON(w, &schema.BalanceResponse{Shares: shares.String()})

	case msg.ExchangeRate != nil:
		writeJSON(w, &schema.ExchangeRateResponse{Rate: r.app.QueryExchangeRate().String()})

	case msg.InvestmentInfo != nil:
		info := r.app.InvestmentInfo()
		writeJSON(w, &schema.InvestmentInfoResponse{
			Owner:         info.Owner,
			Validator:     info.Validator,
			BondDenom:     info.BondDenom,
			ExitTax:       info.ExitTax.String(),
			MinWithdrawal: info.MinWithdrawal.String(),
		})

	case msg.Supply != nil:
		supply := r.app.QuerySupply()
		writeJSON(w, &schema.SupplyResponse{
			TotalBonded:     supply.TotalBonded.String(),
			TotalShares:     supply.TotalShares.String(),
			PendingOwnerTax: r.app.QueryPendingOwnerTax().String(),
		})

	case msg.Delegation != nil:
		del, err := r.app.QueryDelegation()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, &schema.DelegationResponse{
			Validator:     del.Validator,
			BondedAmount:  del.BondedAmount.String(),
			PendingReward: del.PendingReward.String(),
		})

	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("empty query message"))
	}
}

// parseAmount decodes a decimal-string amount and enforces the unsigned
// 128-bit range no ledger amount may leave. sdkmath.NewIntFromString alone
// admits 256-bit values, which the share conversions cannot safely multiply.
func parseAmount(s string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("%q is not a decimal integer", s)
	}
	if !amount.IsPositive() {
		return sdkmath.Int{}, fmt.Errorf("%s is not positive", s)
	}
	if amount.GT(types.MaxAmount) {
		return sdkmath.Int{}, fmt.Errorf("%s exceeds the maximum amount of %s", s, types.MaxAmount)
	}
	return amount, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&schema.ErrorResponse{Error: err.Error()})
}

// writeDomainError maps the pool's error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidConfig),
		errors.Is(err, types.ErrBelowMinimum),
		errors.Is(err, types.ErrInsufficientBalance),
		errors.Is(err, types.ErrInsufficientSupply):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, types.ErrExternalModuleFailure):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
