package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analytics ingestion metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlight_events_total",
			Help: "Total number of analytics events received",
		},
		[]string{"event", "status"},
	)

	// Gift response metrics
	ResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlight_gift_responses_total",
			Help: "Total number of gift response submissions",
		},
		[]string{"outcome"},
	)

	// Geolocation enrichment metrics
	GeoLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardlight_geoip_lookup_duration_seconds",
			Help:    "Duration of geolocation lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	GeoLookupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardlight_geoip_lookup_errors_total",
			Help: "Total number of failed geolocation lookups",
		},
	)

	// Visitor log metrics
	VisitorLogDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardlight_visitorlog_deduped_total",
			Help: "Requests suppressed by the visitor log seen-cache",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlight_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"key"},
	)
)
