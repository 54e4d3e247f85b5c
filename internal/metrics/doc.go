// Package metrics provides Prometheus instrumentation for both securestream
// binaries. All metrics are prefixed with "securestream_" to avoid naming
// collisions with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track gateway request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Ingestion Queue Metrics
//
// Track job throughput and outcomes:
//   - JobsEnqueued, JobsCompleted, JobsFailed, JobsRetried: lifecycle counters
//   - JobDuration: Histogram of end-to-end job duration
//   - JobsByStatus: Gauge of queue occupancy by status, updated by [Collector]
//
// ## Transcode and Upload Metrics
//
//   - RenditionDuration: Histogram of per-rendition transcode time
//   - UploadedBytes, UploadedFiles: object store push counters
//
// ## Delivery Gateway Metrics
//
//   - TokenVerificationsTotal: Counter of playback token checks by outcome
//   - ObjectsServedTotal: Counter of objects served by kind
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. To expose them, mount the promhttp.Handler() on your
// metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// The [Collector] periodically gathers queue occupancy from a [StatsProvider]
// and updates JobsByStatus:
//
//	collector := metrics.NewCollector(queue, 30*time.Second)
//	collector.Start()
//	defer collector.Stop()
package metrics
