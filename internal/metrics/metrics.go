package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Per-platform attempts
	platformAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syndication_platform_attempts_total",
			Help: "Total number of platform attempts by operation and outcome",
		},
		[]string{"platform", "operation", "outcome"},
	)

	platformAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syndication_platform_attempt_duration_seconds",
			Help:    "Platform attempt duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"platform", "operation"},
	)

	// Log persistence
	logWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syndication_log_write_failures_total",
			Help: "Total number of publication log rows that could not be written",
		},
		[]string{"platform"},
	)

	// Domain events
	domainEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syndication_domain_events_total",
			Help: "Total number of domain events emitted by outcome",
		},
		[]string{"routing_key", "outcome"},
	)

	// Identity lookups (facebook page, eventbrite organization)
	identityLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syndication_identity_lookups_total",
			Help: "Platform identity lookups by cache result",
		},
		[]string{"platform", "result"},
	)
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// RecordAttempt records one platform attempt and its duration
func RecordAttempt(platform, operation string, success bool, duration time.Duration) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeError
	}
	platformAttemptsTotal.WithLabelValues(platform, operation, outcome).Inc()
	platformAttemptDuration.WithLabelValues(platform, operation).Observe(duration.Seconds())
}

func RecordLogWriteFailure(platform string) {
	logWriteFailuresTotal.WithLabelValues(platform).Inc()
}

func RecordDomainEvent(routingKey string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	domainEventsTotal.WithLabelValues(routingKey, outcome).Inc()
}

// RecordIdentityLookup records whether a page/organization lookup was served from cache
func RecordIdentityLookup(platform string, cached bool) {
	result := "miss"
	if cached {
		result = "hit"
	}
	identityLookupsTotal.WithLabelValues(platform, result).Inc()
}

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
