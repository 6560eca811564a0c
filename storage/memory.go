package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, owner, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[owner][key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, owner, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[owner] == nil {
		s.data[owner] = make(map[string]string)
	}
	s.data[owner][key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, owner, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[owner], key)
	return nil
}
