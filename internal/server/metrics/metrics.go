// Package metrics declares the Prometheus collectors shared by the API and
// the worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// FilesCreatedTotal counts created tree nodes by type.
	FilesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_files_created_total",
			Help: "Total number of created files and folders",
		},
		[]string{"type"},
	)

	// ContentServedBytes counts bytes returned by the content endpoint.
	ContentServedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fm_content_served_bytes_total",
			Help: "Total number of content bytes served",
		},
	)

	// JobsTotal counts queue job outcomes: ack, nak, term.
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_jobs_total",
			Help: "Total number of processed background jobs by outcome",
		},
		[]string{"queue", "outcome"},
	)

	// DerivativesWrittenTotal counts generated thumbnails by width.
	DerivativesWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_derivatives_written_total",
			Help: "Total number of thumbnails written",
		},
		[]string{"width"},
	)

	// SessionsTotal counts session lifecycle events: login, logout.
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_sessions_total",
			Help: "Total number of session events",
		},
		[]string{"event"},
	)
)
