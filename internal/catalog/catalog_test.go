package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCreateAndGet(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	id, err := c.Create(ctx, Video{
		ID:           "job-1",
		Title:        "intro.mp4",
		PlaylistID:   "course-1",
		AssetPrefix:  "videos/job-1",
		ThumbnailURL: "https://cdn.example/thumbnails/job-1.jpg",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != "job-1" {
		t.Errorf("Create returned id %q, want job-1", id)
	}

	v, err := c.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Title != "intro.mp4" || v.AssetPrefix != "videos/job-1" {
		t.Errorf("Get returned %+v", v)
	}
	if v.Status != StatusReady {
		t.Errorf("Status = %q, want %q (defaulted)", v.Status, StatusReady)
	}
	if v.ThumbnailURL != "https://cdn.example/thumbnails/job-1.jpg" {
		t.Errorf("ThumbnailURL = %q", v.ThumbnailURL)
	}
	if v.CreatedAt.IsZero() || time.Since(v.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v, want recent", v.CreatedAt)
	}
}

func TestCreateWithoutThumbnailStoresNull(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	if _, err := c.Create(ctx, Video{ID: "job-2", Title: "t", AssetPrefix: "videos/job-2"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v, err := c.Get(ctx, "job-2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.ThumbnailURL != "" {
		t.Errorf("ThumbnailURL = %q, want empty", v.ThumbnailURL)
	}
	if v.PlaylistID != "" {
		t.Errorf("PlaylistID = %q, want empty", v.PlaylistID)
	}
}

func TestCreateGeneratesID(t *testing.T) {
	c := newTestCatalog(t)

	id, err := c.Create(context.Background(), Video{Title: "t", AssetPrefix: "videos/x"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Error("Create returned empty id")
	}
}

func TestPlaylistCounterIncrements(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		if _, err := c.Create(ctx, Video{ID: id, Title: "t", PlaylistID: "course-1", AssetPrefix: "videos/" + id}); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	count, err := c.PlaylistVideoCount(ctx, "course-1")
	if err != nil {
		t.Fatalf("PlaylistVideoCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("playlist counter = %d, want 3", count)
	}

	count, err = c.PlaylistVideoCount(ctx, "missing")
	if err != nil {
		t.Fatalf("PlaylistVideoCount for missing playlist failed: %v", err)
	}
	if count != 0 {
		t.Errorf("missing playlist counter = %d, want 0", count)
	}
}

func TestCreateDuplicateIDFails(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	if _, err := c.Create(ctx, Video{ID: "dup", Title: "t", AssetPrefix: "videos/dup"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := c.Create(ctx, Video{ID: "dup", Title: "t", AssetPrefix: "videos/dup"}); err == nil {
		t.Error("expected error creating duplicate video id")
	}
}
