// Package metrics defines the Prometheus collectors of the ledger service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

type Metrics struct {
	rpcRequests           *prometheus.CounterVec
	rpcDuration           *prometheus.HistogramVec
	settlementTransitions *prometheus.CounterVec
	softFailures          *prometheus.CounterVec
	bankAdjustments       *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and Connect code.",
		}, []string{"procedure", "code"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		settlementTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_transitions_total",
			Help:      "Settlements moved by a settle-up action.",
		}, []string{"action"}),
		softFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "soft_failures_total",
			Help:      "Best-effort side effects that failed without failing the request.",
		}, []string{"step"}),
		bankAdjustments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bank_adjustments_total",
			Help:      "Bank balance adjustments applied, by direction.",
		}, []string{"direction"}),
	}
}

func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

func (m *Metrics) SettlementTransitions(action string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.settlementTransitions.WithLabelValues(action).Add(float64(n))
}

func (m *Metrics) SoftFailure(step string) {
	if m == nil {
		return
	}
	m.softFailures.WithLabelValues(step).Inc()
}

// BankAdjustment counts one adjustment; direction is "debit" or "credit".
func (m *Metrics) BankAdjustment(direction string) {
	if m == nil {
		return
	}
	m.bankAdjustments.WithLabelValues(direction).Inc()
}
