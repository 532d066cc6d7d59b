// Package metrics holds the Prometheus collectors for tool calls, cache
// lookups and upstream requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saturday_night_tool_calls_total",
			Help: "Total number of tool calls by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saturday_night_tool_call_duration_seconds",
			Help:    "Duration of tool calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saturday_night_cache_lookups_total",
			Help: "Total number of cache lookups by memoized operation and result",
		},
		[]string{"name", "result"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saturday_night_upstream_request_duration_seconds",
			Help:    "Duration of requests to remote backends in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "outcome"},
	)
)

// ObserveToolCall records one tool call. Its signature matches
// services.CallObserver.
func ObserveToolCall(tool, outcome string, elapsed time.Duration) {
	ToolCalls.WithLabelValues(tool, outcome).Inc()
	ToolCallDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records one cache lookup. Its signature matches
// services.CacheObserver.
func ObserveCacheLookup(name, result string) {
	CacheLookups.WithLabelValues(name, result).Inc()
}

// ObserveUpstream records one request to a remote backend.
func ObserveUpstream(backend string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamDuration.WithLabelValues(backend, outcome).Observe(time.Since(start).Seconds())
}
