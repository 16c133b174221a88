package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"clothing-store/internal/domain"
)

var errUploadRejected = errors.New("upload rejected")

// MemoryStore keeps images in process memory. It backs local development
// without an object store, and tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string

	// FailUploads makes every Upload fail, for exercising cleanup paths.
	FailUploads bool
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), baseURL: baseURL}
}

func (s *MemoryStore) Upload(ctx context.Context, folder string, file File) (domain.Image, error) {
	if s.FailUploads {
		return domain.Image{}, errUploadRejected
	}

	data, err := io.ReadAll(file.Body)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to read upload: %w", err)
	}

	name := objectName(folder, file.Filename)

	s.mu.Lock()
	s.objects[name] = data
	s.mu.Unlock()

	return domain.Image{URL: s.baseURL + "/" + name, PublicID: name}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[publicID]; !ok {
		return ErrNotFound
	}
	delete(s.objects, publicID)
	return nil
}

// Has reports whether publicID is stored.
func (s *MemoryStore) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[publicID]
	return ok
}

// Len is the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
