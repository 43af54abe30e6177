package state

import (
	"io"
	"sync"
)

// MemStore is an in-memory Store. It backs tests and the degraded mode used
// when the state directory cannot be created: values survive for the process
// lifetime only, which matches "storage unavailable, continue with defaults".
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Watch(string, func(string)) (io.Closer, error) {
	return nil, ErrWatchUnsupported
}

var _ Store = (*MemStore)(nil)
