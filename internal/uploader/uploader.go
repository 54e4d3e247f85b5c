package uploader

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"securestream/internal/logging"
	"securestream/internal/metrics"
	"securestream/internal/objectstore"
)

// ProgressFunc receives the aggregate upload percentage, 0..100. Reported
// values never decrease within one UploadDir call.
type ProgressFunc func(percent int)

// DefaultFileTimeout bounds a single object upload. The job-level retry is
// separate; a file that cannot be pushed within this window fails the job.
const DefaultFileTimeout = 5 * time.Minute

// Uploader pushes a local directory tree into the object store under a
// deterministic key prefix, preserving relative paths.
type Uploader struct {
	store       objectstore.Store
	fileTimeout time.Duration
}

// New creates an Uploader. A zero fileTimeout selects DefaultFileTimeout.
func New(store objectstore.Store, fileTimeout time.Duration) *Uploader {
	if fileTimeout <= 0 {
		fileTimeout = DefaultFileTimeout
	}
	return &Uploader{store: store, fileTimeout: fileTimeout}
}

type localFile struct {
	path string
	rel  string
	size int64
}

// UploadDir uploads every file under dir to prefix, reporting aggregate
// progress. An empty tree is fatal: it means transcoding produced nothing.
// Any single-object failure aborts the whole upload; partially written
// objects are not cleaned up here.
func (u *Uploader) UploadDir(ctx context.Context, dir, prefix string, progress ProgressFunc) error {
	files, err := listFiles(dir, "")
	if err != nil {
		return fmt.Errorf("read output directory %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found in %s: transcoding produced nothing to upload", dir)
	}

	logging.Debug("Uploading %d files from %s to %s/", len(files), dir, prefix)

	tracker := newProgressTracker(progress)
	total := len(files)

	for i, f := range files {
		key := prefix + "/" + f.rel
		if err := u.putFile(ctx, f, key, func(fraction float64) {
			tracker.report(overallPercent(i, fraction, total))
		}); err != nil {
			return err
		}
		tracker.report(overallPercent(i+1, 0, total))
	}

	return nil
}

// UploadFile uploads one local file to key, inferring the content type from
// the file name. Used for thumbnails, which live outside the video prefix.
func (u *Uploader) UploadFile(ctx context.Context, path, key string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return u.putFile(ctx, localFile{path: path, rel: filepath.Base(path), size: info.Size()}, key, nil)
}

func (u *Uploader) putFile(ctx context.Context, f localFile, key string, onFraction func(float64)) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s after upload: %v", f.path, err)
		}
	}()

	var body io.Reader = file
	if onFraction != nil {
		body = &countingReader{r: file, total: f.size, onFraction: onFraction}
	}

	putCtx, cancel := context.WithTimeout(ctx, u.fileTimeout)
	defer cancel()

	if err := u.store.Put(putCtx, key, body, f.size, ContentTypeFor(f.rel)); err != nil {
		metrics.UploadedFiles.WithLabelValues("error").Inc()
		return &UploadError{
			FileName: filepath.Base(f.path),
			Key:      key,
			Endpoint: u.store.Endpoint(),
			Category: Classify(err),
			Err:      err,
		}
	}

	metrics.UploadedFiles.WithLabelValues("success").Inc()
	metrics.UploadedBytes.Add(float64(f.size))
	logging.Debug("Uploaded %s (%d bytes)", key, f.size)
	return nil
}

// listFiles walks dir depth-first and returns every regular file with its
// slash-separated path relative to the root. An unreadable directory is
// fatal; an entry that cannot be stat'ed is skipped with a warning since a
// single bad entry should not abort the listing.
func listFiles(dir, rel string) ([]localFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []localFile
	for _, entry := range entries {
		entryRel := entry.Name()
		if rel != "" {
			entryRel = rel + "/" + entry.Name()
		}
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := listFiles(full, entryRel)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logging.Warn("skipping unreadable entry %s: %v", full, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, localFile{path: full, rel: entryRel, size: info.Size()})
	}

	return files, nil
}

// overallPercent folds the in-flight file's fraction into the aggregate:
// round(((uploadedFiles + fraction) / totalFiles) * 100).
func overallPercent(uploaded int, fraction float64, total int) int {
	if total == 0 {
		return 0
	}
	pct := int(math.Round((float64(uploaded) + fraction) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// progressTracker suppresses regressions so reported progress is
// monotonically non-decreasing across one upload.
type progressTracker struct {
	fn   ProgressFunc
	last int
}

func newProgressTracker(fn ProgressFunc) *progressTracker {
	return &progressTracker{fn: fn, last: -1}
}

func (t *progressTracker) report(pct int) {
	if t.fn == nil || pct <= t.last {
		return
	}
	t.last = pct
	t.fn(pct)
}

// countingReader reports the fraction of the wrapped file consumed so far.
type countingReader struct {
	r          io.Reader
	total      int64
	read       int64
	onFraction func(float64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.total > 0 {
		c.read += int64(n)
		c.onFraction(float64(c.read) / float64(c.total))
	}
	return n, err
}
