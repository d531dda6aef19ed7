// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

var (
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_interactions_mutations_total",
		Help: "Aggregate mutations by operation and error kind.",
	}, []string{"operation", "outcome"})

	ModeratedPosts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_interactions_moderated_posts_total",
		Help: "Comments and replies that matched at least one banned term, by resulting visibility.",
	}, []string{"visibility"})

	ActivityEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_interactions_activity_entries_total",
		Help: "Activity entries by write outcome.",
	}, []string{"outcome"})

	ActivityPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "news_interactions_activity_publish_failures_total",
		Help: "Activity entries stored but not published to the live channel.",
	})

	ActivityQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "news_interactions_activity_queue_depth",
		Help: "Activity entries waiting for the deferred writer.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_interactions_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "news_interactions_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
