package objectstore

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	etag        string
	modTime     time.Time
}

// MemoryStore is an in-process Store used by tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject

	// PutErr, when set, makes every Put fail with this error.
	PutErr error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

// Put stores the object under key.
func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memObject{
		data:        data,
		contentType: contentType,
		etag:        fmt.Sprintf("%x", md5.Sum(data)),
		modTime:     time.Now(),
	}
	return nil
}

// Get opens the object under key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (*Object, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	return &Object{
		Body:         io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:  obj.contentType,
		ETag:         obj.etag,
		Size:         int64(len(obj.data)),
		LastModified: obj.modTime,
	}, nil
}

// Endpoint identifies the store in diagnostics.
func (s *MemoryStore) Endpoint() string {
	return "memory"
}

// Keys returns every stored key in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContentType returns the stored content type for key, or "".
func (s *MemoryStore) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[key].contentType
}
