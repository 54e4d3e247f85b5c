// Package statusmirror republishes ingestion job state into Redis.
//
// The queue is the source of truth; the mirror is a best-effort copy for
// dashboards and sibling processes. A Redis outage degrades visibility,
// never ingestion.
package statusmirror
