package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend holds manifests in a map. Values are copied on the way in
// and out so callers cannot alias stored documents.
type MemoryBackend struct {
	mu        sync.RWMutex
	manifests map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		manifests: make(map[string][]byte),
	}
}

func (m *MemoryBackend) Name() string {
	return BackendMemory
}

func (m *MemoryBackend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.manifests))
	for id := range m.manifests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryBackend) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.manifests[id]
	if !ok {
		return nil, notFound(id)
	}
	return copyBytes(val), nil
}

func (m *MemoryBackend) Write(ctx context.Context, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.manifests[id] = copyBytes(data)
	return nil
}

func (m *MemoryBackend) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.manifests[id]
	return ok, nil
}
