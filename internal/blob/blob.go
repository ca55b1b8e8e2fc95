// Package blob abstracts the artifact store for uploaded KYC documents.
package blob

import (
	"context"
	"sync"
)

// Store persists opaque artifacts and returns a stable reference.
type Store interface {
	Store(ctx context.Context, data []byte, name, contentType string) (string, error)
}

// MemoryStore keeps artifacts in memory for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore builds an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Store saves the artifact under name and returns name as its reference.
func (s *MemoryStore) Store(_ context.Context, data []byte, name, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[name] = buf
	return name, nil
}

// Get returns a stored artifact.
func (s *MemoryStore) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[name]
	return data, ok
}

// Len reports the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
