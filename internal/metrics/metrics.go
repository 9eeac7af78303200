// Package metrics provides centralized Prometheus metrics registry for the calculator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trio_ev",
		Name:      "evaluations_total",
		Help:      "Total number of expected value evaluations by feasibility",
	}, []string{"feasible"})
	StepTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trio_ev",
		Name:      "step_transitions_total",
		Help:      "Total number of form submissions by wizard step",
	}, []string{"step"})
	InvalidInputsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trio_ev",
		Name:      "invalid_inputs_total",
		Help:      "Total number of rejected form submissions by field",
	}, []string{"field"})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trio_ev",
		Name:      "cache_hit_ratio",
		Help:      "Evaluation cache hit ratio",
	})
	CacheItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trio_ev",
		Name:      "cache_items",
		Help:      "Number of evaluations held in the cache",
	})
)

// Histogram metrics
var (
	ExpectedValue = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trio_ev",
		Name:      "expected_value",
		Help:      "Distribution of computed expected values",
		Buckets:   []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 2, 3, 5, 10},
	})
	ExcludedHorses = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trio_ev",
		Name:      "excluded_horses",
		Help:      "Number of horses excluded per evaluation",
		Buckets:   prometheus.LinearBuckets(0, 2, 10),
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(StepTransitionsTotal)
		registry.MustRegister(InvalidInputsTotal)

		// Register gauge metrics
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(CacheItems)

		// Register histogram metrics
		registry.MustRegister(ExpectedValue)
		registry.MustRegister(ExcludedHorses)

		// Register HTTP metrics
		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(HTTPRequestDuration)
		registry.MustRegister(RateLimitedTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEvaluation records an evaluation and, when feasible, its expected value.
func RecordEvaluation(feasible bool, excluded int, expectedValue float64) {
	if feasible {
		EvaluationsTotal.WithLabelValues("true").Inc()
		ExpectedValue.Observe(expectedValue)
	} else {
		EvaluationsTotal.WithLabelValues("false").Inc()
	}
	ExcludedHorses.Observe(float64(excluded))
}

// RecordStepTransition records a form submission for the given step.
func RecordStepTransition(step string) {
	StepTransitionsTotal.WithLabelValues(step).Inc()
}

// RecordInvalidInput records a rejected form field.
func RecordInvalidInput(field string) {
	InvalidInputsTotal.WithLabelValues(field).Inc()
}

// UpdateCacheHitRatio updates the cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	CacheHitRatio.Set(ratio)
}

// UpdateCacheItems updates the cache size gauge.
func UpdateCacheItems(count float64) {
	CacheItems.Set(count)
}
