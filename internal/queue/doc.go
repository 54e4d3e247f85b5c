// Package queue owns the ordered ingestion job queue and the worker that
// drives each job through its pipeline.
//
// Jobs are processed strictly one at a time, in submission order, because
// the transcode stage monopolizes the CPU or GPU. The queue itself stays
// responsive while a job runs: enqueue, retry, remove and snapshot reads
// all work concurrently with the active job.
//
// Each job moves through queued, processing, uploading and then completed
// or error. Per-stage progress is folded into a single job-wide percentage
// that never decreases during a run. A failed job keeps its diagnostic and
// can be retried, which returns it to the tail of the queue.
//
// State is persisted through [Store] after every mutation, so a restart
// reloads the queue; jobs interrupted mid-flight are returned to queued.
// Interested parties can watch mutations via [Queue.Subscribe] or mirror
// them externally through the optional [Mirror].
package queue
