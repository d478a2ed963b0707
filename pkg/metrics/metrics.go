// Package metrics exposes Prometheus instrumentation for the cache and
// search paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts snapshot requests served without touching upstream.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "message_cache_hits_total",
		Help: "Number of snapshot reads served from the in-memory cache.",
	})

	// CacheMisses counts snapshot requests that triggered an upstream fetch.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "message_cache_misses_total",
		Help: "Number of snapshot reads that required an upstream fetch.",
	})

	// CacheRefreshFailures counts refresh attempts that returned an error.
	CacheRefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "message_cache_refresh_failures_total",
		Help: "Number of failed cache refresh attempts.",
	})

	// SnapshotSize records the message count of the last published snapshot.
	SnapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "message_cache_snapshot_size",
		Help: "Messages held by the current cache snapshot.",
	})

	// UpstreamRequests counts calls to the upstream messages API by outcome.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Calls to the upstream messages API, labelled by outcome.",
	}, []string{"outcome"})

	// SearchDuration tracks the search+pagination latency in seconds.
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_duration_seconds",
		Help:    "Latency of the search and pagination step.",
		Buckets: prometheus.DefBuckets,
	})
)

// Upstream request outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
)
