package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for wallet relay connections and pairings.
// All methods are safe on a nil receiver.
type Metrics struct {
	RelayAttempts   *prometheus.CounterVec
	PairingOutcomes *prometheus.CounterVec
	ActiveSession   prometheus.Gauge
	SignRequests    *prometheus.CounterVec
}

// New creates a new Metrics instance with all wallet metrics registered.
func New() *Metrics {
	return &Metrics{
		RelayAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "truetrace_wallet_relay_attempts_total",
			Help: "Relay connection attempts by endpoint and result",
		}, []string{"endpoint", "result"}),
		PairingOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "truetrace_wallet_pairings_total",
			Help: "Pairing outcomes (paired, timeout, deleted, failed)",
		}, []string{"outcome"}),
		ActiveSession: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "truetrace_wallet_session_active",
			Help: "1 while a wallet session is active",
		}),
		SignRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "truetrace_wallet_sign_requests_total",
			Help: "Sign requests forwarded to the wallet by result",
		}, []string{"result"}),
	}
}

// IncrementRelayAttempt records one connect attempt against endpoint.
func (m *Metrics) IncrementRelayAttempt(endpoint string, ok bool) {
	if m == nil {
		return
	}
	m.RelayAttempts.WithLabelValues(endpoint, result(ok)).Inc()
}

// IncrementPairing records how a pending pairing resolved.
func (m *Metrics) IncrementPairing(outcome string) {
	if m == nil {
		return
	}
	m.PairingOutcomes.WithLabelValues(outcome).Inc()
}

// SetSessionActive flips the active session gauge.
func (m *Metrics) SetSessionActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.ActiveSession.Set(1)
		return
	}
	m.ActiveSession.Set(0)
}

// IncrementSignRequest records a forwarded sign request.
func (m *Metrics) IncrementSignRequest(ok bool) {
	if m == nil {
		return
	}
	m.SignRequests.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
