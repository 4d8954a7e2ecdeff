package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registration and verification.
// Methods are no-ops on a nil receiver.
type Metrics struct {
	Registrations    *prometheus.CounterVec
	Verifications    *prometheus.CounterVec
	RegisterDuration prometheus.Histogram
	VerifyDuration   prometheus.Histogram
	PersistFailures  prometheus.Counter
}

var durationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// New creates a new Metrics instance with all qrcode metrics registered.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "truetrace_registrations_total",
			Help: "Registration attempts by outcome code",
		}, []string{"outcome"}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "truetrace_verifications_total",
			Help: "Verification attempts by role and outcome code",
		}, []string{"role", "outcome"}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "truetrace_register_duration_seconds",
			Help:    "Duration of Register including the wallet round trip",
			Buckets: durationBuckets,
		}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "truetrace_verify_duration_seconds",
			Help:    "Duration of Verify including the wallet round trip",
			Buckets: durationBuckets,
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "truetrace_record_persist_failures_total",
			Help: "Record inserts that failed after the event reached the ledger",
		}),
	}
}

// ObserveRegistration records one Register call. Call with time.Now() at
// the start of the operation.
func (m *Metrics) ObserveRegistration(start time.Time, outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveVerification records one Verify call.
func (m *Metrics) ObserveVerification(start time.Time, role, outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(role, outcome).Inc()
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}

// IncrementPersistFailure records a store failure after a successful submit.
func (m *Metrics) IncrementPersistFailure() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}
