// Package memory provides an in-memory storage.Storage for tests and
// local development. It keeps metadata only, no actual object bytes.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Geeks-Solutions/exmedias/internal/storage"
)

type objectEntry struct {
	Key         string
	ContentType string
	Size        int64
	Private     bool
	URL         string
}

// Storage implements storage.Storage using an in-memory map.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]*objectEntry
	baseURL string
}

// New creates a new in-memory storage instance.
func New(baseURL string) *Storage {
	return &Storage{
		objects: make(map[string]*objectEntry),
		baseURL: baseURL,
	}
}

// Upload stores object metadata in memory and returns the generated URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := fmt.Sprintf("%s/media/%s", s.baseURL, input.Key)

	s.objects[input.Key] = &objectEntry{
		Key:         input.Key,
		ContentType: input.ContentType,
		Size:        input.Size,
		Private:     input.Private,
		URL:         url,
	}

	return &storage.UploadResult{
		Key: input.Key,
		URL: url,
	}, nil
}

// Delete removes object metadata from memory.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; !exists {
		return fmt.Errorf("object not found: %s", key)
	}

	delete(s.objects, key)
	return nil
}

// SetPrivacy flips the privacy flag on a stored object.
func (s *Storage) SetPrivacy(_ context.Context, key string, private bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.objects[key]
	if !exists {
		return fmt.Errorf("object not found: %s", key)
	}

	entry.Private = private
	return nil
}

// SignedURL returns a fake time-limited URL for the given key.
func (s *Storage) SignedURL(_ context.Context, key string, expires time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.objects[key]
	if !exists {
		return "", fmt.Errorf("object not found: %s", key)
	}

	deadline := time.Now().Add(expires).Unix()
	return fmt.Sprintf("%s?expires=%d", entry.URL, deadline), nil
}

// IsPrivate reports the stored privacy flag, for assertions in tests.
func (s *Storage) IsPrivate(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.objects[key]
	if !exists {
		return false, false
	}
	return entry.Private, true
}
