// Package metrics defines HTTP server metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// HTTP counter vectors
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trio_ev",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trio_ev",
		Name:      "http_rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter",
	})
)

// HTTP histogram vectors
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trio_ev",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(route, method, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(durationSeconds)
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}
