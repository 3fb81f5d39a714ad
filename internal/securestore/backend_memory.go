package securestore

import (
	"context"
	"sync"

	"helpmoto/internal/sentinel"
)

// MemoryBackend keeps items in memory. Used in tests and as the default
// backend when no durable storage is configured.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]string)}
}

func (b *MemoryBackend) GetItem(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.items[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return value, nil
}

func (b *MemoryBackend) SetItem(_ context.Context, key string, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[key] = value
	return nil
}

func (b *MemoryBackend) DeleteItem(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, key)
	return nil
}

// Len reports the number of stored items.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}
