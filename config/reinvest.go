package config

import (
	"fmt"
	"time"
)

const (
	// ReinvestPolicyInterval reinvests on a dedicated ticker
	ReinvestPolicyInterval = "interval"
	// ReinvestPolicyOnCall amortizes reinvestment over depositor traffic: a
	// tick is attempted after every accepted deposit or withdrawal
	ReinvestPolicyOnCall = "oncall"
)

var defaultReinvestInterval = 10 * time.Minute

// ReinvestConfig decides when accumulated rewards are checked against the
// minimum batch size and re-staked. The schema does not fix the trigger, so it
// is a deployment choice.
type ReinvestConfig struct {
	Policy   string        `long:"policy" description:"When to attempt reinvestment of accrued rewards" choice:"interval" choice:"oncall"`
	Interval time.Duration `long:"interval" description:"The interval between reinvestment attempts (interval policy only)"`
}

func DefaultReinvestConfig() ReinvestConfig {
	return ReinvestConfig{
		Policy:   ReinvestPolicyInterval,
		Interval: defaultReinvestInterval,
	}
}

func (cfg *ReinvestConfig) Validate() error {
	switch cfg.Policy {
	case ReinvestPolicyInterval:
		if cfg.Interval <= 0 {
			return fmt.Errorf("reinvest interval must be positive")
		}
	case ReinvestPolicyOnCall:
	default:
		return fmt.Errorf("unsupported reinvest policy: %s", cfg.Policy)
	}

	return nil
}
