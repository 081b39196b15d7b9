// Package metrics exposes Prometheus instrumentation for the intake
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Requests counts handled requests by route and response status.
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formgate_requests_total",
		Help: "Handled requests by route and status code.",
	}, []string{"route", "status"})

	// SpamRejections counts hard spam verdicts by route and reason.
	SpamRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formgate_spam_rejections_total",
		Help: "Submissions rejected by the spam screen.",
	}, []string{"route", "reason"})

	// RelayAttempts counts individual webhook attempts by outcome.
	RelayAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formgate_relay_attempts_total",
		Help: "Webhook relay attempts by outcome.",
	}, []string{"outcome"})

	// RelayDuration observes total relay call duration, retries included.
	RelayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "formgate_relay_duration_seconds",
		Help:    "Webhook relay call duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler serves the default registry for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
