package memory

import (
	"context"
	"sync"
)

// Storage implements ports.Storage in memory.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStorage creates an empty Storage.
func NewStorage() *Storage {
	return &Storage{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes key.
func (s *Storage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
