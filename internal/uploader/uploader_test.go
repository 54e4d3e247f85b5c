package uploader

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"securestream/internal/objectstore"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func transcodedTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "master.m3u8"), "#EXTM3U\n")
	writeFile(t, filepath.Join(dir, "720p", "playlist.m3u8"), "#EXTM3U\n")
	writeFile(t, filepath.Join(dir, "720p", "000.ts"), "segment-zero")
	writeFile(t, filepath.Join(dir, "720p", "001.ts"), "segment-one")
	return dir
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"master.m3u8", "application/vnd.apple.mpegurl"},
		{"000.ts", "video/MP2T"},
		{"clip.mp4", "video/mp4"},
		{"cover.jpg", "image/jpeg"},
		{"cover.JPEG", "image/jpeg"},
		{"cover.png", "image/png"},
		{"cover.webp", "image/webp"},
		{"notes.txt", "application/octet-stream"},
		{"no-extension", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := ContentTypeFor(tt.name); got != tt.want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestThumbnailKey(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/out/thumbnail.jpg", "thumbnails/job1.jpg"},
		{"/tmp/custom.png", "thumbnails/job1.png"},
		{"/tmp/custom.webp", "thumbnails/job1.webp"},
		{"/tmp/custom.bmp", "thumbnails/job1.jpg"},
	}

	for _, tt := range tests {
		if got := ThumbnailKey("job1", tt.path); got != tt.want {
			t.Errorf("ThumbnailKey(job1, %q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestUploadDirPreservesRelativePaths(t *testing.T) {
	dir := transcodedTree(t)
	store := objectstore.NewMemory()
	u := New(store, time.Minute)

	if err := u.UploadDir(context.Background(), dir, "videos/job1", nil); err != nil {
		t.Fatalf("UploadDir failed: %v", err)
	}

	want := []string{
		"videos/job1/720p/000.ts",
		"videos/job1/720p/001.ts",
		"videos/job1/720p/playlist.m3u8",
		"videos/job1/master.m3u8",
	}
	got := store.Keys()
	if len(got) != len(want) {
		t.Fatalf("uploaded keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if ct := store.ContentType("videos/job1/master.m3u8"); ct != "application/vnd.apple.mpegurl" {
		t.Errorf("manifest content type = %q", ct)
	}
	if ct := store.ContentType("videos/job1/720p/000.ts"); ct != "video/MP2T" {
		t.Errorf("segment content type = %q", ct)
	}
}

func TestUploadDirEmptyTreeIsFatal(t *testing.T) {
	dir := t.TempDir()
	u := New(objectstore.NewMemory(), time.Minute)

	err := u.UploadDir(context.Background(), dir, "videos/job1", nil)
	if err == nil {
		t.Fatal("expected error for empty output directory")
	}
	if !strings.Contains(err.Error(), "produced nothing") {
		t.Errorf("error %q does not describe empty transcode output", err)
	}
}

func TestUploadDirMissingDirIsFatal(t *testing.T) {
	u := New(objectstore.NewMemory(), time.Minute)
	if err := u.UploadDir(context.Background(), "/does/not/exist", "videos/job1", nil); err == nil {
		t.Fatal("expected error for unreadable directory")
	}
}

func TestUploadDirProgressMonotonic(t *testing.T) {
	dir := transcodedTree(t)
	u := New(objectstore.NewMemory(), time.Minute)

	var reported []int
	err := u.UploadDir(context.Background(), dir, "videos/job1", func(pct int) {
		reported = append(reported, pct)
	})
	if err != nil {
		t.Fatalf("UploadDir failed: %v", err)
	}

	if len(reported) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] < reported[i-1] {
			t.Fatalf("progress regressed: %v", reported)
		}
	}
	if final := reported[len(reported)-1]; final != 100 {
		t.Errorf("final progress = %d, want 100", final)
	}
}

func TestUploadDirFailureWrapsUploadError(t *testing.T) {
	dir := transcodedTree(t)
	store := objectstore.NewMemory()
	store.PutErr = fmt.Errorf("write to store: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")})
	u := New(store, time.Minute)

	err := u.UploadDir(context.Background(), dir, "videos/job1", nil)
	if err == nil {
		t.Fatal("expected upload failure")
	}

	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("error %T is not an *UploadError", err)
	}
	if ue.Category != CategoryNetworkOrCors {
		t.Errorf("category = %s, want %s", ue.Category, CategoryNetworkOrCors)
	}
	if !strings.Contains(ue.Error(), "key=videos/job1/") {
		t.Errorf("diagnostic %q does not include the object key", ue.Error())
	}
	if !strings.Contains(ue.Error(), "endpoint=memory") {
		t.Errorf("diagnostic %q does not include the endpoint", ue.Error())
	}
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thumbnail.jpg")
	writeFile(t, path, "jpeg-bytes")

	store := objectstore.NewMemory()
	u := New(store, time.Minute)

	if err := u.UploadFile(context.Background(), path, "thumbnails/job1.jpg"); err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if ct := store.ContentType("thumbnails/job1.jpg"); ct != "image/jpeg" {
		t.Errorf("thumbnail content type = %q", ct)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"net op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, CategoryNetworkOrCors},
		{"deadline", context.DeadlineExceeded, CategoryNetworkOrCors},
		{"connection reset text", errors.New("read tcp: connection reset by peer"), CategoryNetworkOrCors},
		{"tls", errors.New("tls handshake failure"), CategoryNetworkOrCors},
		{"plain failure", errors.New("something else entirely"), CategoryUnknown},
		{"nil", nil, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestOverallPercent(t *testing.T) {
	tests := []struct {
		uploaded int
		fraction float64
		total    int
		want     int
	}{
		{0, 0, 4, 0},
		{0, 0.5, 4, 13},
		{1, 0, 4, 25},
		{3, 0.99, 4, 100},
		{4, 0, 4, 100},
		{0, 0, 0, 0},
	}

	for _, tt := range tests {
		if got := overallPercent(tt.uploaded, tt.fraction, tt.total); got != tt.want {
			t.Errorf("overallPercent(%d, %v, %d) = %d, want %d",
				tt.uploaded, tt.fraction, tt.total, got, tt.want)
		}
	}
}
