package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	reviewDecisionsTotal   *prometheus.CounterVec
	unlockRecomputeSeconds prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bootcamp_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bootcamp_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bootcamp_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		reviewDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bootcamp_review_decisions_total",
			Help: "Review decisions applied to submissions, by outcome.",
		}, []string{"decision"})

		unlockRecomputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bootcamp_unlock_recompute_seconds",
			Help:    "Time spent recomputing track progress and unlock state.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, reviewDecisionsTotal, unlockRecomputeSeconds)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ReviewDecisions exposes the counter for review outcomes.
func ReviewDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewDecisionsTotal
}

// UnlockRecomputeLatency exposes the histogram for unlock recomputation.
func UnlockRecomputeLatency() prometheus.Histogram {
	RegisterMetrics()
	return unlockRecomputeSeconds
}
