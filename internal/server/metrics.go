package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yomi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yomi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Page processing metrics
	pageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yomi_page_requests_total",
			Help: "Total number of page recognition requests",
		},
		[]string{"status"}, // status: ok, error
	)

	pageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yomi_page_processing_duration_seconds",
			Help:    "Page recognition duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
	)

	pageRegionsDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yomi_page_regions_detected",
			Help:    "Number of text regions per processed page",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "yomi_upload_size_bytes",
			Help: "Size of uploaded files in bytes",
			Buckets: []float64{
				1024, 10 * 1024, 100 * 1024,
				1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024,
			},
		},
	)
)
