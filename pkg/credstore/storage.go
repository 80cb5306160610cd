package credstore

import (
	"context"
	"sync"
)

// Storage is the key-value persistence the store writes its single encrypted
// blob through. Implementations hold opaque ciphertext strings; nothing else
// in the system touches persistence.
type Storage interface {
	// Get returns the value under key, or ErrBlobNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key, overwriting any prior content.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryStorage is the in-process Storage used in single-tab deployments and
// tests. Safe for concurrent use.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return "", ErrBlobNotFound
	}
	return value, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
