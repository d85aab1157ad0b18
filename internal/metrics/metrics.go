// Package metrics defines Prometheus metrics for speedrun.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "speedrun_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedrun_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedrun_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedrun_searches_total",
			Help: "Total path searches by outcome",
		},
		[]string{"outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "speedrun_search_duration_seconds",
			Help:    "Path search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"outcome"},
	)

	SearchVisited = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "speedrun_search_visited_nodes",
			Help:    "Nodes visited by both sides of a search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 13),
		},
	)

	SearchHops = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "speedrun_search_hops",
			Help:    "Length in hops of found paths",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		},
	)

	StoreQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedrun_store_queries_total",
			Help: "Graph store queries by operation",
		},
		[]string{"op"},
	)

	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "speedrun_store_query_duration_seconds",
			Help:    "Graph store query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	StoreRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "speedrun_store_retries_total",
			Help: "Graph store queries retried after a transient failure",
		},
	)

	TitleCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedrun_title_cache_total",
			Help: "Title cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		SearchesTotal, SearchDuration, SearchVisited, SearchHops,
		StoreQueriesTotal, StoreQueryDuration, StoreRetriesTotal,
		TitleCacheTotal,
	)
}
