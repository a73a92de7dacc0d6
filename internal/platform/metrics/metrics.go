package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the onboarding pipeline.
type Metrics struct {
	GrantsIssued        prometheus.Counter
	UploadsAccepted     prometheus.Counter
	UploadsRejected     *prometheus.CounterVec
	SessionsStarted     prometheus.Counter
	SecondFactorResults *prometheus.CounterVec
	ApplicationsScored  *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all metrics on the given registerer. Tests pass a fresh
// prometheus.NewRegistry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GrantsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "provet_upload_grants_issued_total",
			Help: "Total number of signed upload grants issued",
		}),
		UploadsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "provet_uploads_accepted_total",
			Help: "Total number of uploads that passed all checks and were persisted",
		}),
		UploadsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provet_uploads_rejected_total",
			Help: "Total number of rejected uploads by reason",
		}, []string{"reason"}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "provet_sessions_started_total",
			Help: "Total number of sessions created after password verification",
		}),
		SecondFactorResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provet_second_factor_results_total",
			Help: "Second factor verification outcomes",
		}, []string{"outcome"}),
		ApplicationsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provet_applications_scored_total",
			Help: "Applications scored at intake by resulting level",
		}, []string{"level"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "provet_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}
