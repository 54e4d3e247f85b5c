// Package handlers implements the ingest HTTP API: job submission, queue
// inspection, retry and removal, plus health and version endpoints.
package handlers
