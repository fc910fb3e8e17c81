package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "allocator"
	subsystem = "engine"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Allocation requests by mode and result.",
		},
		[]string{"mode", "result"},
	)

	plansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plans_total",
			Help:      "Region plans returned by mode and feasibility.",
		},
		[]string{"mode", "feasibility"},
	)

	excludedRegionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "excluded_regions_total",
			Help:      "Regions dropped from results by mode.",
		},
		[]string{"mode"},
	)

	durationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Time spent allocating across all regions.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
		[]string{"mode"},
	)
)

func recordResult(mode string, result string, seconds float64) {
	requestsTotal.WithLabelValues(mode, result).Inc()
	durationSeconds.WithLabelValues(mode).Observe(seconds)
}
