package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatrelay_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Reconciliation metrics
	MergeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_merge_events_total",
			Help: "Total merge transitions applied",
		},
		[]string{"kind"}, // "initial", "open_chat", "feed", "resolution", "local_send"
	)

	IgnoredEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_ignored_events_total",
			Help: "Total merge events ignored",
		},
		[]string{"reason"}, // "relayed", "inactive_feed", "stale_resolution"
	)

	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_identity_resolutions_total",
			Help: "Total identity resolutions by confidence",
		},
		[]string{"confidence"},
	)

	DroppedBusEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_dropped_bus_events_total",
			Help: "Open-chat events dropped because the bus was full",
		},
	)

	// Backend metrics
	FeedPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_feed_polls_total",
			Help: "Total message feed polls",
		},
		[]string{"result"}, // "ok" or "error"
	)

	SendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_send_failures_total",
			Help: "Total failed outgoing message sends",
		},
	)

	BackendLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatrelay_backend_latency_seconds",
			Help:    "Hosted backend call latency",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)
