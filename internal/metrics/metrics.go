package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securestream_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "securestream_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "securestream_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Ingestion queue metrics
var (
	JobsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "securestream_jobs_enqueued_total",
			Help: "Total number of ingestion jobs accepted into the queue",
		},
	)

	JobsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "securestream_jobs_completed_total",
			Help: "Total number of ingestion jobs that reached completed",
		},
	)

	JobsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "securestream_jobs_failed_total",
			Help: "Total number of ingestion jobs that ended in error",
		},
	)

	JobsRetried = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "securestream_jobs_retried_total",
			Help: "Total number of failed jobs returned to the queue",
		},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "securestream_job_duration_seconds",
			Help:    "End-to-end ingestion job duration in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	JobsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "securestream_jobs_by_status",
			Help: "Number of jobs in the queue by status",
		},
		[]string{"status"},
	)
)

// Transcode metrics
var (
	RenditionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "securestream_rendition_duration_seconds",
			Help:    "Per-rendition transcode duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"rendition"},
	)
)

// Upload metrics
var (
	UploadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "securestream_uploaded_bytes_total",
			Help: "Total bytes pushed into the object store",
		},
	)

	UploadedFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securestream_uploaded_files_total",
			Help: "Total files pushed into the object store by outcome",
		},
		[]string{"status"},
	)
)

// Delivery gateway metrics
var (
	TokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securestream_token_verifications_total",
			Help: "Total playback token checks by outcome",
		},
		[]string{"outcome"}, // "ok", "missing", "invalid", "scope_denied"
	)

	ObjectsServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securestream_objects_served_total",
			Help: "Total objects served from the bucket by kind",
		},
		[]string{"kind"}, // "thumbnail", "protected"
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "securestream_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
