package settings

import (
	"context"
	"sync"
)

// Store is a namespaced key-value store for plugin settings.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, plugin, key string) (string, bool, error)

	// Set stores a value, overwriting an existing one.
	Set(ctx context.Context, plugin, key, value string) error

	// Close releases the store's resources.
	Close() error
}

// MemoryStore is an in-process Store for tests and ephemeral runs. It
// is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the stored value and whether the key exists.
func (m *MemoryStore) Get(_ context.Context, plugin, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[plugin+"/"+key]
	return v, ok, nil
}

// Set stores a value, overwriting an existing one.
func (m *MemoryStore) Set(_ context.Context, plugin, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[plugin+"/"+key] = value
	return nil
}

// Close releases nothing; it exists to satisfy Store.
func (m *MemoryStore) Close() error {
	return nil
}
