// Command ingestd runs the video ingestion pipeline.
//
// It owns the persistent job queue and a single pipeline worker that takes
// each submitted source file through transcoding, thumbnail handling,
// object-store upload and the final catalog write. Jobs are submitted and
// inspected over a small JSON API:
//
//	POST   /api/jobs            submit files for ingestion
//	GET    /api/jobs            list the queue
//	GET    /api/jobs/{id}       inspect one job
//	POST   /api/jobs/{id}/retry re-queue a failed job
//	DELETE /api/jobs/{id}       remove an inactive job
//	GET    /health              queue and process health
//	GET    /api/version         build information
//
// Configuration is environment-driven; see internal/startup. Prometheus
// metrics are served on a separate port when METRICS_ENABLED is true. An
// optional Redis address (REDIS_ADDR) enables mirroring of job status for
// external dashboards.
//
// Shutdown on SIGINT/SIGTERM stops the worker loop first; a job caught
// mid-flight is returned to queued on the next start.
package main
