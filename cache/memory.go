package cache

import (
	"context"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// MemoryBackend keeps entries in a sharded in-process map.
type MemoryBackend struct {
	entries cmap.ConcurrentMap[string, Entry]
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: cmap.New[Entry]()}
}

func (m *MemoryBackend) Load(_ context.Context, key string) (Entry, bool, error) {
	e, ok := m.entries.Get(key)
	return e, ok, nil
}

func (m *MemoryBackend) Store(_ context.Context, key string, e Entry, _ time.Duration) error {
	m.entries.Set(key, e)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

func (m *MemoryBackend) Clear(context.Context) error {
	m.entries.Clear()
	return nil
}

// Len returns the number of stored entries, fresh or not.
func (m *MemoryBackend) Len() int {
	return m.entries.Count()
}
