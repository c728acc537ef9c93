package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"event-admin-console/internal/logging"
	"event-admin-console/internal/security"
)

// FileBackend keeps the namespace as one JSON object on disk, rewritten on every mutation.
// When a cipher is configured the document is sealed at rest.
type FileBackend struct {
	path   string
	cipher *security.Cipher

	mu sync.RWMutex
	m  map[string]string
}

// NewFileBackend loads path. cipher and logger may be nil. A missing, unreadable, corrupt or
// undecryptable file yields an empty store; the next write replaces it.
func NewFileBackend(path string, cipher *security.Cipher, logger *slog.Logger) (*FileBackend, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("token store file path is required")
	}
	b := &FileBackend{path: path, cipher: cipher, m: make(map[string]string)}
	if err := b.load(); err != nil {
		logging.Or(logger).Warn("token store file unusable, starting with no session", "path", path, "error", err)
		b.m = make(map[string]string)
	}
	return b, nil
}

// Get returns the value for key.
func (b *FileBackend) Get(ctx context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key and persists the document.
func (b *FileBackend) Set(ctx context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return b.persistLocked()
}

// Delete removes keys and persists the document.
func (b *FileBackend) Delete(ctx context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := false
	for _, k := range keys {
		if _, ok := b.m[k]; ok {
			delete(b.m, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return b.persistLocked()
}

// Keys returns all keys in sorted order.
func (b *FileBackend) Keys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.m))
	for k := range b.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (b *FileBackend) load() error {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read token store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if security.IsSealed(data) {
		if b.cipher == nil {
			return fmt.Errorf("token store file is encrypted but TOKEN_STORE_KEY is not set")
		}
		if data, err = b.cipher.Open(data); err != nil {
			return fmt.Errorf("open token store file: %w", err)
		}
	}
	m := make(map[string]string)
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode token store file: %w", err)
	}
	if m != nil {
		b.m = m
	}
	return nil
}

func (b *FileBackend) persistLocked() error {
	data, err := json.MarshalIndent(b.m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token store file: %w", err)
	}
	if b.cipher != nil {
		if data, err = b.cipher.Seal(data); err != nil {
			return fmt.Errorf("seal token store file: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("mkdir token store dir: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token store file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace token store file: %w", err)
	}
	return nil
}
