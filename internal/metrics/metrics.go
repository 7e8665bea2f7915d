// Package metrics exposes Prometheus collectors for the settlement engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SettleRuns counts engine invocations by outcome: ok,
	// invalid_obligation, unbalanced_ledger.
	SettleRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tallyup",
		Name:      "settle_runs_total",
		Help:      "Settlement engine invocations by outcome.",
	}, []string{"status"})

	// SettleTransactions observes how many payment instructions one run
	// emitted. Bounded by group size, so the linear buckets stay small.
	SettleTransactions = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tallyup",
		Name:      "settle_transactions",
		Help:      "Payment instructions emitted per settlement run.",
		Buckets:   prometheus.LinearBuckets(0, 2, 10),
	})

	// SettleDuration observes the wall time of one engine run.
	SettleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tallyup",
		Name:      "settle_duration_seconds",
		Help:      "Wall time of one settlement engine run.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(SettleRuns, SettleTransactions, SettleDuration)
}
