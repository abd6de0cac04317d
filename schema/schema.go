// Package schema fixes the JSON wire shapes of the depositor-facing API.
// All amounts are unsigned 128-bit integers serialized as decimal strings and
// the exit tax is an 18-fractional-digit decimal string, so no transport ever
// loses precision.
package schema

type ExecuteMsg struct {
	Deposit    *Deposit    `json:"deposit,omitempty"`
	Withdraw   *Withdraw   `json:"withdraw,omitempty"`
	Reinvest   *Reinvest   `json:"reinvest,omitempty"`
	CollectTax *CollectTax `json:"collect_tax,omitempty"`
}

type Deposit struct {
	Sender string `json:"sender"`
	Amount string `json:"amount"`
}

type Withdraw struct {
	Sender string `json:"sender"`
	Shares string `json:"shares"`
}

// Reinvest asks for an immediate reward-tick, regardless of the configured
// reinvest policy. Dust below the minimum batch is still deferred.
type Reinvest struct {
}

// CollectTax asks for disbursement of the accumulated exit tax to the owner.
type CollectTax struct {
}

type QueryMsg struct {
	Balance        *Balance        `json:"balance,omitempty"`
	ExchangeRate   *ExchangeRate   `json:"exchange_rate,omitempty"`
	InvestmentInfo *InvestmentInfo `json:"investment_info,omitempty"`
	Supply         *Supply         `json:"supply,omitempty"`
	Delegation     *Delegation     `json:"delegation,omitempty"`
}

type Balance struct {
	Address string `json:"address"`
}

type ExchangeRate struct {
}

type InvestmentInfo struct {
}

type Supply struct {
}

type Delegation struct {
}

type BalanceResponse struct {
	Shares string `json:"shares"`
}

type ExchangeRateResponse struct {
	Rate string `json:"rate"`
}

type InvestmentInfoResponse struct {
	Owner         string `json:"owner"`
	Validator     string `json:"validator"`
	BondDenom     string `json:"bond_denom"`
	ExitTax       string `json:"exit_tax"`
	MinWithdrawal string `json:"min_withdrawal"`
}

type SupplyResponse struct {
	TotalBonded     string `json:"total_bonded"`
	TotalShares     string `json:"total_shares"`
	PendingOwnerTax string `json:"pending_owner_tax"`
}

type DelegationResponse struct {
	Validator     string `json:"validator"`
	BondedAmount  string `json:"bonded_amount"`
	PendingReward string `json:"pending_reward"`
}

type ExecuteResponse struct {
	// Instructions echoes the staking instructions the operation produced,
	// mostly for operator visibility
	Instructions []string `json:"instructions,omitempty"`
	// Shares is the minted (deposit) or burned (withdraw) share count
	Shares string `json:"shares,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
