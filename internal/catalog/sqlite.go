package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"securestream/internal/logging"
)

const openTimeout = 5 * time.Second

// SQLiteCatalog is a Writer backed by an embedded SQLite database. It also
// maintains the denormalized per-playlist video counter.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the catalog database at dbPath.
func NewSQLite(ctx context.Context, dbPath string) (*SQLiteCatalog, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to catalog database: %w", err)
	}

	c := &SQLiteCatalog{db: db}
	if err := c.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize catalog schema: %w", err)
	}

	logging.Debug("Catalog database ready at %s", dbPath)
	return c, nil
}

func (c *SQLiteCatalog) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		playlist_id TEXT,
		status TEXT NOT NULL,
		asset_prefix TEXT NOT NULL,
		thumbnail_url TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_videos_playlist ON videos(playlist_id);

	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		video_count INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := c.db.ExecContext(ctx, schema)
	return err
}

// Create inserts the video record and bumps the owning playlist's counter
// in the same transaction.
func (c *SQLiteCatalog) Create(ctx context.Context, v Video) (string, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Status == "" {
		v.Status = StatusReady
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin catalog transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	thumbnail := sql.NullString{String: v.ThumbnailURL, Valid: v.ThumbnailURL != ""}
	playlist := sql.NullString{String: v.PlaylistID, Valid: v.PlaylistID != ""}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO videos (id, title, playlist_id, status, asset_prefix, thumbnail_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, playlist, v.Status, v.AssetPrefix, thumbnail, v.CreatedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert video record: %w", err)
	}

	if v.PlaylistID != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO playlists (id, video_count, updated_at) VALUES (?, 1, ?)
			 ON CONFLICT(id) DO UPDATE SET video_count = video_count + 1, updated_at = excluded.updated_at`,
			v.PlaylistID, time.Now().Unix(),
		)
		if err != nil {
			return "", fmt.Errorf("increment playlist counter: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit catalog transaction: %w", err)
	}

	return v.ID, nil
}

// Get returns the video record with the given id.
func (c *SQLiteCatalog) Get(ctx context.Context, id string) (*Video, error) {
	var (
		v         Video
		thumbnail sql.NullString
		playlist  sql.NullString
		createdAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT id, title, playlist_id, status, asset_prefix, thumbnail_url, created_at
		 FROM videos WHERE id = ?`, id,
	).Scan(&v.ID, &v.Title, &playlist, &v.Status, &v.AssetPrefix, &thumbnail, &createdAt)
	if err != nil {
		return nil, err
	}

	v.PlaylistID = playlist.String
	v.ThumbnailURL = thumbnail.String
	v.CreatedAt = time.Unix(createdAt, 0)
	return &v, nil
}

// PlaylistVideoCount returns the denormalized counter for a playlist.
func (c *SQLiteCatalog) PlaylistVideoCount(ctx context.Context, playlistID string) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT video_count FROM playlists WHERE id = ?`, playlistID,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}

// Close releases the underlying database handle.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
