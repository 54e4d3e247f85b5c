package queue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"securestream/internal/catalog"
	"securestream/internal/job"
	"securestream/internal/logging"
	"securestream/internal/metrics"
	"securestream/internal/thumbnail"
	"securestream/internal/transcode"
	"securestream/internal/uploader"
)

// Stage progress is folded into one job-wide percentage so progress never
// regresses across the processing/uploading boundary: transcoding covers
// 0-50, uploading 50-100.
func scaleTranscode(pct int) int { return pct / 2 }
func scaleUpload(pct int) int    { return 50 + pct/2 }

// runJob drives one job through the pipeline to a terminal state. Any
// fatal stage failure records a diagnostic and releases the worker slot.
func (q *Queue) runJob(ctx context.Context, id string) {
	j, err := q.Job(id)
	if err != nil {
		return
	}

	logging.Info("Starting job %s (%s)", id, j.Title)
	start := time.Now()

	q.setStatus(ctx, id, job.StatusProcessing, 0)

	outputDir := filepath.Join(q.cfg.WorkDir, id)
	err = q.transcoder.Transcode(ctx, transcode.Request{
		ID:         id,
		InputPath:  j.SourcePath,
		OutputDir:  outputDir,
		Renditions: j.Renditions,
	}, func(pct int) {
		q.setProgress(ctx, id, scaleTranscode(pct))
	})
	if err != nil {
		q.fail(ctx, id, fmt.Errorf("transcode %s: %w", j.Title, err))
		return
	}

	thumbPath := q.resolveThumbnail(ctx, j)

	q.setStatus(ctx, id, job.StatusUploading, 50)
	if err := q.uploader.UploadDir(ctx, outputDir, j.AssetPrefix(), func(pct int) {
		q.setProgress(ctx, id, scaleUpload(pct))
	}); err != nil {
		q.fail(ctx, id, fmt.Errorf("upload: %w", err))
		return
	}

	thumbURL := ""
	if thumbPath != "" {
		key := uploader.ThumbnailKey(id, thumbPath)
		if err := q.uploader.UploadFile(ctx, thumbPath, key); err != nil {
			logging.Warn("Thumbnail upload failed for job %s, continuing without: %v", id, err)
		} else {
			thumbURL = q.thumbnailURL(key)
		}
	}

	_, err = q.catalog.Create(ctx, catalog.Video{
		ID:           id,
		Title:        j.Title,
		PlaylistID:   j.PlaylistID,
		Status:       catalog.StatusReady,
		AssetPrefix:  j.AssetPrefix(),
		ThumbnailURL: thumbURL,
	})
	if err != nil {
		// Uploaded bytes stay in the bucket unreferenced; operator cleanup.
		q.fail(ctx, id, fmt.Errorf("catalog write: %w (uploaded assets remain under %s)", err, j.AssetPrefix()))
		return
	}

	q.setStatus(ctx, id, job.StatusCompleted, 100)
	metrics.JobsCompleted.Inc()
	metrics.JobDuration.Observe(time.Since(start).Seconds())
	logging.Info("Job %s completed in %s", id, time.Since(start).Round(time.Second))
}

// resolveThumbnail returns the local path of the thumbnail to upload, or ""
// to proceed without one. Every failure here is non-fatal.
func (q *Queue) resolveThumbnail(ctx context.Context, j *job.Job) string {
	scratch := filepath.Join(q.cfg.WorkDir, j.ID+"-thumb")
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		logging.Warn("Cannot create thumbnail scratch dir for job %s: %v", j.ID, err)
		return ""
	}

	if j.ThumbnailPath != "" {
		normalized, err := thumbnail.Normalize(j.ThumbnailPath, scratch)
		if err != nil {
			logging.Warn("Cover normalization failed for job %s, uploading original: %v", j.ID, err)
			return j.ThumbnailPath
		}
		return normalized
	}

	generated := filepath.Join(scratch, "thumbnail.jpg")
	if err := q.transcoder.GenerateThumbnail(ctx, j.SourcePath, generated); err != nil {
		logging.Warn("Thumbnail generation failed for job %s, continuing without: %v", j.ID, err)
		return ""
	}
	return generated
}

func (q *Queue) thumbnailURL(key string) string {
	if q.cfg.PublicBaseURL == "" {
		return "/" + key
	}
	return strings.TrimSuffix(q.cfg.PublicBaseURL, "/") + "/" + key
}

// setStatus transitions the job and persists the mutation. Progress never
// decreases within one run.
func (q *Queue) setStatus(ctx context.Context, id string, status job.Status, progress int) {
	q.mutate(ctx, id, func(j *job.Job) {
		if j.Status != status && !j.Status.CanTransition(status) {
			logging.Warn("Job %s: unexpected transition %s -> %s", id, j.Status, status)
		}
		j.Status = status
		if progress > j.Progress {
			j.Progress = progress
		}
	})
}

// setProgress updates progress within the current status.
func (q *Queue) setProgress(ctx context.Context, id string, progress int) {
	q.mutate(ctx, id, func(j *job.Job) {
		if progress > j.Progress {
			j.Progress = progress
		}
	})
}

// fail marks the job failed with an operator-facing diagnostic.
func (q *Queue) fail(ctx context.Context, id string, err error) {
	logging.Error("Job %s failed: %v", id, err)
	metrics.JobsFailed.Inc()
	q.mutate(ctx, id, func(j *job.Job) {
		j.Status = job.StatusError
		j.LastError = err.Error()
	})
}

// mutate applies fn to the canonical job under the lock, persists the
// result and fans the update out to subscribers.
func (q *Queue) mutate(ctx context.Context, id string, fn func(*job.Job)) {
	q.mu.Lock()
	j, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	fn(j)
	j.UpdatedAt = time.Now()
	snapshot := j.Clone()
	q.mu.Unlock()

	if err := q.store.Update(ctx, snapshot); err != nil {
		logging.Warn("Failed to persist job %s: %v", id, err)
	}
	q.publish(snapshot)
}
