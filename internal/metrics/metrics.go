// Package metrics defines the Prometheus instruments for the listing
// pipeline. Everything is promauto-registered on the default registry and
// exposed via /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ListingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_requests_total",
			Help: "Total listing requests by response status",
		},
		[]string{"status"},
	)

	ListingStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_stage_duration_seconds",
			Help:    "Duration of each listing pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	ListingCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_requests_total",
			Help: "Listing response cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	PlanCacheRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_derivation_refreshes_total",
			Help: "Number of plan weight derivation refreshes",
		},
	)
)
