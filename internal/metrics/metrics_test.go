package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRPC("/splitledger.v1.GroupService/GetGroup", "ok", 10*time.Millisecond)
	m.ObserveRPC("/splitledger.v1.GroupService/GetGroup", "ok", 20*time.Millisecond)
	m.SettlementTransitions("initiate", 3)
	m.SettlementTransitions("confirm", 0)
	m.SoftFailure("counterparty_lookup")
	m.BankAdjustment("debit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("/splitledger.v1.GroupService/GetGroup", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.settlementTransitions.WithLabelValues("initiate")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.settlementTransitions.WithLabelValues("confirm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.softFailures.WithLabelValues("counterparty_lookup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bankAdjustments.WithLabelValues("debit")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rpcDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRPC("p", "ok", time.Second)
		m.SettlementTransitions("initiate", 1)
		m.SoftFailure("step")
		m.BankAdjustment("credit")
	})
}
