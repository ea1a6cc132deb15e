package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenslate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lenslate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	annotateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenslate_annotate_requests_total",
			Help: "Total number of annotation requests",
		},
		[]string{"status"},
	)

	annotateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lenslate_annotate_duration_seconds",
			Help:    "Annotation processing duration in seconds",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lenslate_upload_size_bytes",
			Help:    "Size of uploaded photos in bytes",
			Buckets: []float64{1 << 10, 10 << 10, 100 << 10, 1 << 20, 5 << 20, 20 << 20},
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lenslate_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenslate_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"},
	)
)
