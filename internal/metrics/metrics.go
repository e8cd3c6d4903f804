package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TVMaze upstream metrics
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfinder_upstream_requests_total",
			Help: "Total number of requests sent to the TVMaze API, by endpoint and outcome.",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showfinder_upstream_request_duration_seconds",
			Help:    "Latency of TVMaze API calls including retries.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	UpstreamRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "showfinder_upstream_retries_total",
			Help: "Total number of retried TVMaze API attempts.",
		},
	)
)

// Page metrics
var (
	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showfinder_search_results",
			Help:    "Number of shows returned per search.",
			Buckets: []float64{0, 1, 2, 5, 10, 25},
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfinder_http_requests_total",
			Help: "Total number of HTTP requests served, by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showfinder_http_request_duration_seconds",
			Help:    "Latency of HTTP requests served, by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "code"},
	)
)

func init() {
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		UpstreamRetriesTotal,
		SearchResultsReturned,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
