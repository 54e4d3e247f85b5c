package job

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an ingestion job.
type Status string

const (
	// StatusQueued means the job is waiting for the worker.
	StatusQueued Status = "queued"
	// StatusProcessing means the transcoder is running for this job.
	StatusProcessing Status = "processing"
	// StatusUploading means transcoded output is being pushed to the object store.
	StatusUploading Status = "uploading"
	// StatusCompleted means the catalog entry was written; terminal.
	StatusCompleted Status = "completed"
	// StatusError means a fatal stage failure; recoverable via Retry.
	StatusError Status = "error"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusUploading, StatusCompleted, StatusError:
		return true
	}
	return false
}

// Active reports whether the job currently occupies the single worker slot.
func (s Status) Active() bool {
	return s == StatusProcessing || s == StatusUploading
}

// Terminal reports whether the job can make no further progress on its own.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CanTransition reports whether moving from s to next is a legal step in the
// job state machine: queued -> processing -> uploading -> completed, with
// error reachable from either active state and queued reachable from error
// via an explicit retry.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusUploading || next == StatusError
	case StatusUploading:
		return next == StatusCompleted || next == StatusError
	case StatusError:
		return next == StatusQueued
	default:
		return false
	}
}

// Job is one submitted file's journey through transcode, upload and catalog
// write. Jobs are owned exclusively by the queue; everything outside the
// queue sees copies.
type Job struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	SourcePath    string    `json:"sourcePath"`
	Renditions    []string  `json:"renditions"`
	ThumbnailPath string    `json:"thumbnailPath,omitempty"`
	PlaylistID    string    `json:"playlistId,omitempty"`
	Status        Status    `json:"status"`
	Progress      int       `json:"progress"`
	RetryCount    int       `json:"retryCount"`
	LastError     string    `json:"lastError,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AssetPrefix returns the object-store path root under which every artifact
// of this job lives, without a trailing slash. The catalog stores this value
// and the gateway derives its authorization scope from keys beneath it.
func (j *Job) AssetPrefix() string {
	return "videos/" + j.ID
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	c := *j
	c.Renditions = append([]string(nil), j.Renditions...)
	return &c
}

// Validate checks the fields a job must carry before it can be enqueued.
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job has no id")
	}
	if j.SourcePath == "" {
		return fmt.Errorf("job %s has no source path", j.ID)
	}
	if len(j.Renditions) == 0 {
		return fmt.Errorf("job %s has no target renditions", j.ID)
	}
	if !j.Status.Valid() {
		return fmt.Errorf("job %s has unknown status %q", j.ID, j.Status)
	}
	return nil
}
