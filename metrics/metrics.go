package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for provider dispatch and the HTTP front door
var (
	ProviderOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvgateway_provider_operations_total",
			Help: "Total number of provider operations by canonical status",
		},
		[]string{"provider", "operation", "status"},
	)

	ProviderOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cvgateway_provider_operation_seconds",
			Help:    "Duration of provider operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	PushPollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cvgateway_pushpoll_attempts",
			Help:    "Trigger attempts made per push-poll retrieval",
			Buckets: []float64{1, 2, 3, 4, 5, 8, 10},
		},
	)

	FreshnessHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvgateway_freshness_hits_total",
			Help: "Total number of reads answered from a fresh audit record",
		},
		[]string{"provider"},
	)

	AuditWriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvgateway_audit_write_failures_total",
			Help: "Total number of swallowed audit write failures",
		},
		[]string{"provider"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvgateway_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	OutboxPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cvgateway_outbox_published_total",
			Help: "Total number of audit events published from the outbox",
		},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry. Safe to
// call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ProviderOperationsTotal)
		prometheus.MustRegister(ProviderOperationDuration)
		prometheus.MustRegister(PushPollAttempts)
		prometheus.MustRegister(FreshnessHitsTotal)
		prometheus.MustRegister(AuditWriteFailuresTotal)
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(OutboxPublishedTotal)
	})
}

// ObserveOperation records one provider operation outcome.
func ObserveOperation(provider, operation, status string, elapsed time.Duration) {
	ProviderOperationsTotal.WithLabelValues(provider, operation, status).Inc()
	ProviderOperationDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}
