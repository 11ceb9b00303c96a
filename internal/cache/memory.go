package cache

import (
	"context"
	"sync"
)

type memorySnapshots struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemorySnapshots returns an in-memory Snapshots implementation. Used in
// tests and when the service runs without a cache database.
func NewMemorySnapshots() Snapshots {
	return &memorySnapshots{data: make(map[string][]byte)}
}

func (s *memorySnapshots) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (s *memorySnapshots) Save(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.data[key] = stored
	return nil
}

func (s *memorySnapshots) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
