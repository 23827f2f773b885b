package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Total number of domain events processed, by type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	ProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_processing_duration_seconds",
			Help:    "End-to-end processing duration per event in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type"},
	)

	EventAge = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_event_age_seconds",
			Help:    "Age of events at processing time in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	// Suppression metrics
	SuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_suppressed_total",
			Help: "Total number of events dropped by the admission gate, by reason",
		},
		[]string{"reason"},
	)

	// Read model metrics
	ReadModelDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_readmodel_request_duration_seconds",
			Help:    "Duration of read model requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReadModelErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_readmodel_errors_total",
			Help: "Total number of read model transport errors",
		},
	)

	ProjectionWaitAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_projection_wait_attempts",
			Help:    "Read model poll attempts spent waiting for lagging projections",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		},
	)

	// Publish metrics
	PublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_publish_errors_total",
			Help: "Total number of outbound publish failures",
		},
	)

	// Role cache metrics
	RoleCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_role_cache_hits_total",
			Help: "Total number of role directory cache hits",
		},
	)

	RoleCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_role_cache_misses_total",
			Help: "Total number of role directory cache misses",
		},
	)
)
