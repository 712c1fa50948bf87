package storage

import (
	"context"
	"sync"
)

// MemoryStorage keeps values in process memory. Used by tests and for
// single-process development runs.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStorage) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *MemoryStorage) Close() error { return nil }

// NullStorage models the absence of any persistent medium: reads always
// miss and writes are silently dropped.
type NullStorage struct{}

// NewNullStorage creates a storage that persists nothing
func NewNullStorage() NullStorage { return NullStorage{} }

func (NullStorage) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrNotFound }

func (NullStorage) Put(ctx context.Context, key string, value []byte) error { return nil }

func (NullStorage) Delete(ctx context.Context, key string) error { return nil }

func (NullStorage) Close() error { return nil }
