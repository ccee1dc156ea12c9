package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type TxRejectedReason string

var (
	TxInvalidSignature TxRejectedReason = "invalid_signature"
	TxInvalidNonce     TxRejectedReason = "invalid_nonce"
	TxProgramError     TxRejectedReason = "program_error"
	TxCommitFailed     TxRejectedReason = "commit_failed"
)

type ledgerPromMetrics struct {
	executedTxCount *prometheus.CounterVec
	rejectedTxCount *prometheus.CounterVec
	executeDuration prometheus.Histogram
	sessionWrites   prometheus.Histogram
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		executedTxCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vault_ledger_executed_tx_count",
				Help: "The total number of committed transactions",
			},
			[]string{"instruction"},
		),
		rejectedTxCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vault_ledger_rejected_tx_count",
				Help: "The total number of rejected transactions",
			},
			[]string{"instruction", "reason"},
		),
		executeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "vault_ledger_execute_seconds",
				Help: "Duration in second of one transaction from signature check to commit",
			},
		),
		sessionWrites: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vault_ledger_session_writes",
				Help:    "Number of records a committed transaction wrote",
				Buckets: prometheus.LinearBuckets(1, 1, 8),
			},
		),
	}
}

var ledgerMetrics = newLedgerPromMetrics()

func RecordExecutedTx(instruction string, writes int, duration time.Duration) {
	ledgerMetrics.executedTxCount.With(prometheus.Labels{
		"instruction": instruction,
	}).Inc()
	ledgerMetrics.sessionWrites.Observe(float64(writes))
	ledgerMetrics.executeDuration.Observe(duration.Seconds())
}

func RecordRejectedTx(instruction string, reason TxRejectedReason) {
	ledgerMetrics.rejectedTxCount.With(prometheus.Labels{
		"instruction": instruction,
		"reason":      string(reason),
	}).Inc()
}
