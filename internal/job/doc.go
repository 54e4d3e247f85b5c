// Package job defines the ingestion job model shared by the queue, the
// pipeline stages and the catalog writer.
//
// A job moves through a strict state machine:
//
//	queued -> processing -> uploading -> completed
//
// with error reachable from processing or uploading, and queued reachable
// again from error through an explicit retry.
package job
