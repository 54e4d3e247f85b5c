package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"securestream/internal/job"
	"securestream/internal/logging"
)

const storeTimeout = 5 * time.Second

// Store persists queue state so the pipeline survives a restart. Every job
// mutation is written through; ordering is kept in a monotonically growing
// seq column so FIFO position survives reloads and retries can rejoin at
// the tail.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the queue database at dbPath.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open queue database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to queue database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize queue schema: %w", err)
	}

	logging.Debug("Queue database ready at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		source_path TEXT NOT NULL,
		renditions TEXT NOT NULL,
		thumbnail_path TEXT,
		playlist_id TEXT,
		status TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0,
		retry_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	CREATE INDEX IF NOT EXISTS idx_jobs_seq ON jobs(seq);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Insert adds a new job at the tail of the queue.
func (s *Store) Insert(ctx context.Context, j *job.Job) error {
	renditions, err := json.Marshal(j.Renditions)
	if err != nil {
		return fmt.Errorf("marshal renditions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, source_path, renditions, thumbnail_path, playlist_id,
			status, progress, retry_count, last_error, created_at, updated_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM jobs))`,
		j.ID, j.Title, j.SourcePath, string(renditions), j.ThumbnailPath, j.PlaylistID,
		string(j.Status), j.Progress, j.RetryCount, j.LastError,
		j.CreatedAt.Unix(), j.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", j.ID, err)
	}
	return nil
}

// Update writes the job's mutable fields. Queue position is unchanged.
func (s *Store) Update(ctx context.Context, j *job.Job) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, progress = ?, retry_count = ?, last_error = ?, updated_at = ?
		 WHERE id = ?`,
		string(j.Status), j.Progress, j.RetryCount, j.LastError, j.UpdatedAt.Unix(), j.ID,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", j.ID, err)
	}
	return nil
}

// MoveToTail reassigns the job to the end of the FIFO order. Used on retry
// so a re-queued job joins behind everything currently waiting.
func (s *Store) MoveToTail(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET seq = (SELECT COALESCE(MAX(seq), 0) + 1 FROM jobs) WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("move job %s to tail: %w", id, err)
	}
	return nil
}

// Delete removes the job row.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	return nil
}

// LoadAll returns every persisted job in FIFO order.
func (s *Store) LoadAll(ctx context.Context) ([]*job.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source_path, renditions, thumbnail_path, playlist_id,
			status, progress, retry_count, last_error, created_at, updated_at
		 FROM jobs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		var (
			j                    job.Job
			renditions           string
			thumbnail, playlist  sql.NullString
			lastError            sql.NullString
			status               string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&j.ID, &j.Title, &j.SourcePath, &renditions, &thumbnail, &playlist,
			&status, &j.Progress, &j.RetryCount, &lastError, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}

		if err := json.Unmarshal([]byte(renditions), &j.Renditions); err != nil {
			return nil, fmt.Errorf("unmarshal renditions for %s: %w", j.ID, err)
		}
		j.ThumbnailPath = thumbnail.String
		j.PlaylistID = playlist.String
		j.LastError = lastError.String
		j.Status = job.Status(status)
		j.CreatedAt = time.Unix(createdAt, 0)
		j.UpdatedAt = time.Unix(updatedAt, 0)

		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
