package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the registration service.
type Metrics struct {
	RegistrationsStarted   prometheus.Counter
	RegistrationsCompleted prometheus.Counter
	VerificationFailures   prometheus.Counter
	Compensations          prometheus.Counter
	TokensSwept            prometheus.Counter
	RequestDuration        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tablegenie_registrations_started_total",
			Help: "Registrations that created a pending restaurant and a token",
		}),
		RegistrationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tablegenie_registrations_completed_total",
			Help: "Registrations that finished with an active restaurant and user",
		}),
		VerificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tablegenie_verification_failures_total",
			Help: "Verification code checks that did not match",
		}),
		Compensations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tablegenie_registration_compensations_total",
			Help: "Completion attempts rolled back after a partial write",
		}),
		TokensSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tablegenie_registration_tokens_swept_total",
			Help: "Expired registration tokens removed by the background sweep",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tablegenie_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	m.RequestDuration.WithLabelValues(route, status).Observe(seconds)
}
