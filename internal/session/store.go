package session

import (
	"context"
	"sync"
)

// Store is the persisted key-value area backing a Session. Implementations
// scope keys to one profile so several logins can coexist on one machine.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes all values in one step.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes all keys in one step; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns a Store that lives only as long as the process.
func NewMemoryStore() Store {
	return &memoryStore{values: make(map[string]string)}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) SetMany(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
