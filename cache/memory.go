package cache

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a Store kept in process memory. It is meant for tests and
// for running without persistence.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Load returns a copy of the blob for id, or ErrNotFound.
func (s *MemoryStore) Load(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

// Save stores a copy of data.
func (s *MemoryStore) Save(_ context.Context, id string, data []byte) error {
	s.mu.Lock()
	s.entries[id] = slices.Clone(data)
	s.mu.Unlock()
	return nil
}

// Delete removes id. Idempotent - no error on miss.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Kind returns "memory".
func (s *MemoryStore) Kind() string { return "memory" }

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// IDs returns the stored ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
