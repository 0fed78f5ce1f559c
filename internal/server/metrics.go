package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scantext_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scantext_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Extraction metrics
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scantext_extractions_total",
			Help: "Total number of extraction runs",
		},
		[]string{"strategy", "status"}, // status: complete, partial, error
	)

	extractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scantext_extraction_duration_seconds",
			Help:    "End-to-end extraction duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"strategy"},
	)

	extractionPages = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scantext_extraction_pages",
			Help:    "Pages processed per extraction run",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"strategy"},
	)

	extractionFailedPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scantext_extraction_failed_pages_total",
			Help: "Pages degraded to empty text across all runs",
		},
		[]string{"strategy"},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scantext_upload_size_bytes",
			Help:    "Size of uploaded PDF documents",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scantext_websocket_connections",
			Help: "Currently open websocket connections",
		},
	)
)
