package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks outbound calls to upstream market APIs.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_upstream_requests_total",
			Help: "Total number of upstream API requests (by upstream and status).",
		},
		[]string{"upstream", "status"},
	)

	// Measures duration of upstream API requests.
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radar_upstream_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"upstream"},
	)

	// Counts markets produced by the normalizer.
	MarketsNormalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_markets_normalized_total",
			Help: "Total number of raw records normalized into markets.",
		},
	)

	// Counts fetch cycles by result.
	RefreshCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_refresh_cycles_total",
			Help: "Number of refresh cycles by result.",
		},
		[]string{"result"}, // ok | error
	)

	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radar_refresh_duration_seconds",
			Help:    "Time taken by one refresh cycle.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	// Size of the snapshot currently served.
	SnapshotMarkets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "radar_snapshot_markets",
			Help: "Number of markets in the latest snapshot.",
		},
	)

	// Gauges the last successful refresh time (seconds since epoch).
	LastRefreshTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "radar_last_refresh_timestamp",
			Help: "Timestamp (unix seconds) of the last successful refresh.",
		},
	)

	// Tracks NATS messages processed by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages processed.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks snapshot cache reads.
	SnapshotCacheAccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_snapshot_cache_access_total",
			Help: "Number of hits/misses reading the cached snapshot.",
		},
		[]string{"result"}, // hit | miss
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_errors_total",
			Help: "Count of errors by component.",
		},
		[]string{"component", "reason"},
	)
)

// ObserveDuration records the time taken for a function and updates the given histogram.
func ObserveDuration(v interface{}, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// counters are not meant for duration tracking
	}
}

func IncUpstreamRequest(upstream, status string) {
	UpstreamRequestsTotal.WithLabelValues(upstream, status).Inc()
}

func AddNormalized(n int) {
	MarketsNormalized.Add(float64(n))
}

func IncRefresh(result string) {
	RefreshCycles.WithLabelValues(result).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncCacheAccess(result string) {
	SnapshotCacheAccess.WithLabelValues(result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

// SetSnapshot records the size and time of the snapshot now being served.
func SetSnapshot(markets int, t time.Time) {
	SnapshotMarkets.Set(float64(markets))
	LastRefreshTimestamp.Set(float64(t.Unix()))
}
