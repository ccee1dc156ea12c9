package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecordExecutedTx(t *testing.T) {
	labels := map[string]string{"instruction": "metrics_test_deposit"}
	before := counterValue(t, "vault_ledger_executed_tx_count", labels)
	RecordExecutedTx("metrics_test_deposit", 2, time.Millisecond)
	RecordExecutedTx("metrics_test_deposit", 3, time.Millisecond)
	assert.Equal(t, before+2, counterValue(t, "vault_ledger_executed_tx_count", labels))
}

func TestRecordRejectedTx(t *testing.T) {
	labels := map[string]string{"instruction": "metrics_test_withdraw", "reason": string(TxProgramError)}
	before := counterValue(t, "vault_ledger_rejected_tx_count", labels)
	RecordRejectedTx("metrics_test_withdraw", TxProgramError)
	assert.Equal(t, before+1, counterValue(t, "vault_ledger_rejected_tx_count", labels))
}
