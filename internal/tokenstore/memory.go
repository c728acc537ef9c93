package tokenstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend is an in-process Backend. Contents are lost at exit.
type MemoryBackend struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: make(map[string]string)}
}

// Get returns the value for key.
func (b *MemoryBackend) Get(ctx context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (b *MemoryBackend) Set(ctx context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return nil
}

// Delete removes keys.
func (b *MemoryBackend) Delete(ctx context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.m, k)
	}
	return nil
}

// Keys returns all keys in sorted order.
func (b *MemoryBackend) Keys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.m))
	for k := range b.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
