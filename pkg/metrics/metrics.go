package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scope filtering
	ScopeDenials   *prometheus.CounterVec
	RecordsVisible *prometheus.HistogramVec

	// Sessions
	SessionsStarted  prometheus.Counter
	SessionsRejected *prometheus.CounterVec
	SessionsExpired  prometheus.Counter
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		ScopeDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_denials_total",
			Help:      "Fail-closed scope denials by reason",
		}, []string{"reason"}),
		RecordsVisible: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_visible",
			Help:      "Number of records returned after scope filtering",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		}, []string{"collection"}),
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Successful logins",
		}),
		SessionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_rejected_total",
			Help:      "Rejected login attempts by reason",
		}, []string{"reason"}),
		SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Sessions discarded by the expiry sweeper",
		}),
	}
}
