package object

import (
	"context"
	"fmt"
	"sync"

	"provet/pkg/platform/sentinel"
)

// InMemoryStore keeps objects in a map for tests and dev. Writes replace the
// whole value under the lock, matching the disk store's atomic-replace
// semantics: readers see either complete upload, never a mix.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory constructs an empty in-memory object store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

func (s *InMemoryStore) Write(_ context.Context, key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf
	return nil
}

func (s *InMemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.objects[key]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("object %q: %w", key, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("object %q: %w", key, sentinel.ErrNotFound)
	}
	delete(s.objects, key)
	return nil
}

// Len reports the number of stored objects; used by tests asserting that
// failed uploads write nothing.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
