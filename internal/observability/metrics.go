package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GraphFrontierExpansions counts BFS frontier expansions by outcome
	// (found, absent, aborted).
	GraphFrontierExpansions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weave_graph_frontier_expansions_total",
		Help: "Total number of social-distance frontier expansions by outcome",
	}, []string{"outcome"})

	// RecommendationLatency records recommendation computation latency.
	RecommendationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "weave_recommendation_latency_seconds",
		Help:    "Friend recommendation computation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// SearchQueryLatency records full-text query latency by profile.
	SearchQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "weave_search_query_latency_seconds",
		Help:    "Full-text search query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"profile", "kind"})

	// SearchIndexSize is the gauge of indexed documents per kind.
	SearchIndexSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "weave_search_index_documents",
		Help: "Number of documents currently indexed per entity kind",
	}, []string{"kind"})

	// TxnRetries counts serialization-conflict retries by operation.
	TxnRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weave_txn_retries_total",
		Help: "Total number of transaction retries after serialization conflicts",
	}, []string{"operation"})

	// TxnConflictFailures counts transactions that exhausted the retry bound.
	TxnConflictFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weave_txn_conflict_failures_total",
		Help: "Total number of transactions surfaced as conflict failures",
	}, []string{"operation"})

	// BatchItemResults counts batch sub-operation outcomes.
	BatchItemResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weave_batch_item_results_total",
		Help: "Total number of batch sub-operations by status",
	}, []string{"status"})

	// NotificationDeliveries counts pub/sub notification deliveries by
	// channel kind (user, broadcast).
	NotificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weave_notification_deliveries_total",
		Help: "Total number of delivered notification events by channel kind",
	}, []string{"channel"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "weave_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
