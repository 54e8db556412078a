package processor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusInstructions        *prometheus.CounterVec
	prometheusInstructionErrors   *prometheus.CounterVec
	prometheusInstructionDuration *prometheus.HistogramVec
	prometheusDeposited           prometheus.Counter
	prometheusWithdrawn           prometheus.Counter

	// only init the metrics once
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusInstructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utxo_instructions",
			Help: "Number of instructions processed",
		},
		[]string{
			"instruction", // instruction name
		},
	)
	prometheusInstructionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utxo_instruction_errors",
			Help: "Number of instructions that failed and were rolled back",
		},
		[]string{
			"instruction", // instruction name
			"error",       // error kind returned
		},
	)
	prometheusInstructionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "utxo_instruction_duration_seconds",
			Help:    "Duration of instruction processing including the ledger commit",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{
			"instruction", // instruction name
		},
	)
	prometheusDeposited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "utxo_deposited_lamports",
			Help: "Native value locked by successful deposits",
		},
	)
	prometheusWithdrawn = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "utxo_withdrawn_lamports",
			Help: "Native value released by successful withdrawals",
		},
	)
}
