package queue

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"securestream/internal/catalog"
	"securestream/internal/job"
	"securestream/internal/logging"
	"securestream/internal/metrics"
	"securestream/internal/transcode"
	"securestream/internal/uploader"
)

var (
	// ErrJobNotFound is returned for operations on unknown job ids.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobActive is returned when removing a job that holds the worker slot.
	ErrJobActive = errors.New("job is processing or uploading and cannot be removed")
	// ErrNotRetryable is returned when retrying a job that is not in error.
	ErrNotRetryable = errors.New("only failed jobs can be retried")
)

// Transcoder is the stage that turns a source file into a directory of
// streaming assets. Satisfied by transcode.Transcoder.
type Transcoder interface {
	Transcode(ctx context.Context, req transcode.Request, progress func(int)) error
	GenerateThumbnail(ctx context.Context, inputPath, outputPath string) error
}

// Uploader is the stage that pushes assets into the object store.
// Satisfied by uploader.Uploader.
type Uploader interface {
	UploadDir(ctx context.Context, dir, prefix string, progress uploader.ProgressFunc) error
	UploadFile(ctx context.Context, path, key string) error
}

// Mirror receives a copy of every job mutation, for external dashboards.
// May be nil.
type Mirror interface {
	Publish(ctx context.Context, j *job.Job)
}

// Config carries queue-level settings.
type Config struct {
	// WorkDir holds per-job transcode output directories.
	WorkDir string
	// PublicBaseURL is the gateway base the stored thumbnail URL points at,
	// e.g. "https://stream.example.com". Empty yields a bucket-relative URL.
	PublicBaseURL string
}

// SubmitRequest describes one file to ingest.
type SubmitRequest struct {
	SourcePath    string
	Title         string
	Renditions    []string
	ThumbnailPath string
	PlaylistID    string
}

// Update is one job state change delivered to subscribers.
type Update struct {
	JobID    string
	Status   job.Status
	Progress int
	Error    string
}

// Queue owns the ordered list of ingestion jobs and drives each through
// transcode, upload and catalog write. Exactly one job occupies the
// processing/uploading phase at a time; enqueue, retry and remove are safe
// to call concurrently from any goroutine.
type Queue struct {
	cfg        Config
	store      *Store
	transcoder Transcoder
	uploader   Uploader
	catalog    catalog.Writer
	mirror     Mirror

	mu    sync.Mutex
	jobs  map[string]*job.Job
	order []string

	wake chan struct{}

	subMu sync.Mutex
	subs  map[int]chan Update
	nextS int
}

// New builds a queue around its collaborators and reloads persisted state.
// Jobs caught mid-flight by a previous shutdown are returned to queued so
// the worker picks them up again.
func New(ctx context.Context, cfg Config, store *Store, t Transcoder, u Uploader, c catalog.Writer, m Mirror) (*Queue, error) {
	q := &Queue{
		cfg:        cfg,
		store:      store,
		transcoder: t,
		uploader:   u,
		catalog:    c,
		mirror:     m,
		jobs:       make(map[string]*job.Job),
		wake:       make(chan struct{}, 1),
		subs:       make(map[int]chan Update),
	}

	loaded, err := store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, j := range loaded {
		if j.Status.Active() {
			logging.Warn("Job %s was %s at shutdown, returning it to the queue", j.ID, j.Status)
			j.Status = job.StatusQueued
			j.Progress = 0
			j.UpdatedAt = time.Now()
			if err := store.Update(ctx, j); err != nil {
				return nil, err
			}
		}
		q.jobs[j.ID] = j
		q.order = append(q.order, j.ID)
	}

	if len(loaded) > 0 {
		logging.Info("Restored %d jobs from the queue store", len(loaded))
	}
	return q, nil
}

// Enqueue creates one queued job per request and appends them to the FIFO.
// The worker is woken if it is idle.
func (q *Queue) Enqueue(ctx context.Context, reqs []SubmitRequest) ([]string, error) {
	ids := make([]string, 0, len(reqs))

	for _, req := range reqs {
		now := time.Now()
		j := &job.Job{
			ID:            uuid.New().String(),
			Title:         req.Title,
			SourcePath:    req.SourcePath,
			Renditions:    append([]string(nil), req.Renditions...),
			ThumbnailPath: req.ThumbnailPath,
			PlaylistID:    req.PlaylistID,
			Status:        job.StatusQueued,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if j.Title == "" {
			j.Title = filepath.Base(req.SourcePath)
		}
		if len(j.Renditions) == 0 {
			j.Renditions = []string{"720p"}
		}
		if err := j.Validate(); err != nil {
			return ids, err
		}

		if err := q.store.Insert(ctx, j); err != nil {
			return ids, err
		}

		q.mu.Lock()
		q.jobs[j.ID] = j
		snapshot := j.Clone()
		q.order = append(q.order, j.ID)
		q.mu.Unlock()

		metrics.JobsEnqueued.Inc()
		q.publish(snapshot)
		ids = append(ids, j.ID)
	}

	q.notify()
	return ids, nil
}

// Retry returns a failed job to the queue: status queued, retry count
// incremented, last error cleared, FIFO position at the tail.
func (q *Queue) Retry(ctx context.Context, id string) error {
	q.mu.Lock()
	j, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return ErrJobNotFound
	}
	if j.Status != job.StatusError {
		q.mu.Unlock()
		return fmt.Errorf("%w: job %s is %s", ErrNotRetryable, id, j.Status)
	}

	j.Status = job.StatusQueued
	j.RetryCount++
	j.LastError = ""
	j.Progress = 0
	j.UpdatedAt = time.Now()
	q.moveToTailLocked(id)
	snapshot := j.Clone()
	q.mu.Unlock()

	if err := q.store.Update(ctx, snapshot); err != nil {
		return err
	}
	if err := q.store.MoveToTail(ctx, id); err != nil {
		return err
	}

	metrics.JobsRetried.Inc()
	q.publish(snapshot)
	q.notify()
	return nil
}

// Remove deletes a job. Rejected while the job is processing or uploading
// to avoid orphaning the external transcode or upload in flight.
func (q *Queue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	j, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return ErrJobNotFound
	}
	if j.Status.Active() {
		q.mu.Unlock()
		return ErrJobActive
	}

	delete(q.jobs, id)
	for i, candidate := range q.order {
		if candidate == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	q.mu.Unlock()

	return q.store.Delete(ctx, id)
}

// Jobs returns a FIFO-ordered snapshot of every job.
func (q *Queue) Jobs() []*job.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*job.Job, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.jobs[id].Clone())
	}
	return out
}

// GetStats reports queue occupancy by status for the metrics collector.
func (q *Queue) GetStats() metrics.Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	var s metrics.Stats
	for _, j := range q.jobs {
		switch j.Status {
		case job.StatusQueued:
			s.Queued++
		case job.StatusProcessing:
			s.Processing++
		case job.StatusUploading:
			s.Uploading++
		case job.StatusCompleted:
			s.Completed++
		case job.StatusError:
			s.Failed++
		}
	}
	return s
}

// Job returns a snapshot of one job.
func (q *Queue) Job(id string) (*job.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return j.Clone(), nil
}

// Subscribe returns a channel of job updates and a cancel function. Slow
// subscribers drop updates rather than stalling the pipeline.
func (q *Queue) Subscribe() (<-chan Update, func()) {
	q.subMu.Lock()
	defer q.subMu.Unlock()

	id := q.nextS
	q.nextS++
	ch := make(chan Update, 64)
	q.subs[id] = ch

	return ch, func() {
		q.subMu.Lock()
		defer q.subMu.Unlock()
		if existing, ok := q.subs[id]; ok {
			delete(q.subs, id)
			close(existing)
		}
	}
}

// Run is the single-worker scheduling loop: it drains queued jobs in FIFO
// order, one at a time, until the context is cancelled. The external
// transcoder is CPU/GPU-bound, so jobs are never run concurrently.
func (q *Queue) Run(ctx context.Context) error {
	logging.Info("Ingestion worker started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		id, ok := q.nextQueued()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-q.wake:
			}
			continue
		}

		q.runJob(ctx, id)
	}
}

func (q *Queue) nextQueued() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range q.order {
		if q.jobs[id].Status == job.StatusQueued {
			return id, true
		}
	}
	return "", false
}

func (q *Queue) moveToTailLocked(id string) {
	for i, candidate := range q.order {
		if candidate == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			q.order = append(q.order, id)
			return
		}
	}
}

func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) publish(j *job.Job) {
	update := Update{JobID: j.ID, Status: j.Status, Progress: j.Progress, Error: j.LastError}

	q.subMu.Lock()
	for _, ch := range q.subs {
		select {
		case ch <- update:
		default:
		}
	}
	q.subMu.Unlock()

	if q.mirror != nil {
		q.mirror.Publish(context.Background(), j)
	}
}
