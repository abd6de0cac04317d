package metrics

import (
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stakepool/staking-pool/pool"
)

type PoolMetrics struct {
	// supply ledger metrics
	totalBondedGauge     prometheus.Gauge
	totalSharesGauge     prometheus.Gauge
	exchangeRateGauge    prometheus.Gauge
	pendingOwnerTaxGauge prometheus.Gauge
	investorCountGauge   prometheus.Gauge
	// operation metrics
	totalDepositsCounter    prometheus.Counter
	totalWithdrawalsCounter prometheus.Counter
	totalReinvestedCounter  prometheus.Counter
	totalTaxCharged         prometheus.Counter
	// instruction metrics
	instructionSubmissions *prometheus.CounterVec
	instructionFailures    *prometheus.CounterVec
}

// Declare a package-level variable for sync.Once to ensure metrics are registered only once
var poolMetricsRegisterOnce sync.Once

// Declare a variable to hold the instance of PoolMetrics
var poolMetricsInstance *PoolMetrics

// NewPoolMetrics initializes and registers the metrics, using sync.Once to ensure it's done only once
func NewPoolMetrics() *PoolMetrics {
	poolMetricsRegisterOnce.Do(func() {
		poolMetricsInstance = &PoolMetrics{
			totalBondedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_total_bonded",
				Help: "The total bonded value the pool accounts for, in bond denom base units",
			}),
			totalSharesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_total_shares",
				Help: "The total derivative shares outstanding",
			}),
			exchangeRateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_exchange_rate",
				Help: "The current bonded value per share",
			}),
			pendingOwnerTaxGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_pending_owner_tax",
				Help: "Exit tax computed but not yet disbursed to the owner",
			}),
			investorCountGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_investor_count",
				Help: "The number of addresses holding a non-zero share balance",
			}),
			totalDepositsCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_total_deposits",
				Help: "The total number of accepted deposits",
			}),
			totalWithdrawalsCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_total_withdrawals",
				Help: "The total number of accepted withdrawals",
			}),
			totalReinvestedCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_total_reinvested",
				Help: "The total reward value folded back into the pool, in bond denom base units",
			}),
			totalTaxCharged: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_total_tax_charged",
				Help: "The total exit tax charged, in bond denom base units",
			}),
			instructionSubmissions: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "pool_instruction_submissions",
					Help: "The total number of staking instructions submitted to the external module",
				},
				[]string{"instruction"},
			),
			instructionFailures: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "pool_instruction_failures",
					Help: "The total number of staking instructions that failed after retries",
				},
				[]string{"instruction"},
			),
		}

		// Register the metrics with Prometheus
		prometheus.MustRegister(poolMetricsInstance.totalBondedGauge)
		prometheus.MustRegister(poolMetricsInstance.totalSharesGauge)
		prometheus.MustRegister(poolMetricsInstance.exchangeRateGauge)
		prometheus.MustRegister(poolMetricsInstance.pendingOwnerTaxGauge)
		prometheus.MustRegister(poolMetricsInstance.investorCountGauge)
		prometheus.MustRegister(poolMetricsInstance.totalDepositsCounter)
		prometheus.MustRegister(poolMetricsInstance.totalWithdrawalsCounter)
		prometheus.MustRegister(poolMetricsInstance.totalReinvestedCounter)
		prometheus.MustRegister(poolMetricsInstance.totalTaxCharged)
		prometheus.MustRegister(poolMetricsInstance.instructionSubmissions)
		prometheus.MustRegister(poolMetricsInstance.instructionFailures)
	})

	return poolMetricsInstance
}

// RecordPoolState refreshes all supply-level gauges from a committed state.
func (pm *PoolMetrics) RecordPoolState(st *pool.State) {
	pm.totalBondedGauge.Set(intToFloat(st.Supply.TotalBonded))
	pm.totalSharesGauge.Set(intToFloat(st.Supply.TotalShares))
	pm.pendingOwnerTaxGauge.Set(intToFloat(st.PendingOwnerTax))
	pm.investorCountGauge.Set(float64(len(st.Balances)))

	rate, err := st.Supply.ExchangeRate().Float64()
	if err == nil {
		pm.exchangeRateGauge.Set(rate)
	}
}

func (pm *PoolMetrics) IncrementTotalDeposits() {
	pm.totalDepositsCounter.Inc()
}

func (pm *PoolMetrics) IncrementTotalWithdrawals() {
	pm.totalWithdrawalsCounter.Inc()
}

func (pm *PoolMetrics) AddTotalReinvested(amount sdkmath.Int) {
	pm.totalReinvestedCounter.Add(intToFloat(amount))
}

func (pm *PoolMetrics) AddTotalTaxCharged(amount sdkmath.Int) {
	pm.totalTaxCharged.Add(intToFloat(amount))
}

func (pm *PoolMetrics) IncrementInstructionSubmissions(instruction string) {
	pm.instructionSubmissions.WithLabelValues(instruction).Inc()
}

func (pm *PoolMetrics) IncrementInstructionFailures(instruction string) {
	pm.instructionFailures.WithLabelValues(instruction).Inc()
}

// intToFloat is lossy for amounts beyond 2^53 base units, which is acceptable
// for gauges.
func intToFloat(i sdkmath.Int) float64 {
	f, err := sdkmath.LegacyNewDecFromInt(i).Float64()
	if err != nil {
		return 0
	}
	return f
}
