package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	KindTopics  = "topics"
	KindVideos  = "videos"
	KindKeyword = "keyword"
)

var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trend_cache_lookups_total",
	Help: "Trend store reads by kind and result (hit or miss)",
}, []string{"kind", "result"})

var ProviderFetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trend_provider_fetches_total",
	Help: "Provider fetches by kind and outcome",
}, []string{"kind", "outcome"})

var ProviderFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "trend_provider_fetch_duration_seconds",
	Help:    "Time spent waiting on trend providers",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
}, []string{"kind"})

var EvictedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trend_evicted_records_total",
	Help: "Records removed by the eviction sweep",
}, []string{"kind"})

var EvictionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trend_eviction_failures_total",
	Help: "Failed eviction deletes",
}, []string{"kind"})

var EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trend_event_publish_failures_total",
	Help: "Trend events a sink failed to accept",
}, []string{"sink"})

func CacheHit(kind string)  { CacheLookups.WithLabelValues(kind, "hit").Inc() }
func CacheMiss(kind string) { CacheLookups.WithLabelValues(kind, "miss").Inc() }

// ObserveFetch records the outcome and latency of a provider call started at start.
func ObserveFetch(kind string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderFetches.WithLabelValues(kind, outcome).Inc()
	ProviderFetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
