// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bibliodesk",
		Name:      "http_requests_total",
		Help:      "Console requests received, by method and status code.",
	}, []string{"method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bibliodesk",
		Name:      "http_request_duration_seconds",
		Help:      "Console request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	HTTPResponseBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bibliodesk",
		Name:      "http_response_bytes_total",
		Help:      "Bytes written in console responses.",
	})

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bibliodesk",
		Name:      "api_requests_total",
		Help:      "Requests sent to the library API, by method and outcome.",
	}, []string{"method", "outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bibliodesk",
		Name:      "cache_hits_total",
		Help:      "Queries answered from the cache without a fetch.",
	})

	CacheFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bibliodesk",
		Name:      "cache_fetches_total",
		Help:      "Query fetches, by outcome.",
	}, []string{"outcome"})

	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bibliodesk",
		Name:      "cache_invalidations_total",
		Help:      "Tags invalidated by mutations, by tag type.",
	}, []string{"tag"})

	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bibliodesk",
		Name:      "cache_entries",
		Help:      "Entries currently held by the query cache.",
	})
)
