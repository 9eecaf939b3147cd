package store

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu      sync.RWMutex
	content map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{content: make(map[string]Entry)}
}

func (ms *MemoryStore) Put(_ context.Context, entry Entry) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	// copy so callers can't mutate what we hold
	entry.Data = append([]byte(nil), entry.Data...)
	ms.content[entry.Key] = entry

	return nil
}

func (ms *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	e, ok := ms.content[key]
	if !ok {
		return Entry{}, ErrNotFound
	}

	return e, nil
}

func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.content, key)

	return nil
}

func (ms *MemoryStore) Clear(_ context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.content = make(map[string]Entry)

	return nil
}

func (ms *MemoryStore) Stats(_ context.Context) (Stats, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	stats := Stats{Partition: "memory"}
	for _, e := range ms.content {
		stats.observe(int64(len(e.Data)), e.WrittenAt)
	}

	return stats, nil
}

func (ms *MemoryStore) Keys(_ context.Context) ([]string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	keys := make([]string, 0, len(ms.content))
	for k := range ms.content {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
