package cache

import (
	"context"
	"sync"
	"time"
)

// ProcessedSet remembers which tweets have already been run through the
// pipeline so reruns skip them cheaply.
type ProcessedSet interface {
	IsProcessed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) error
	ClearProcessed(ctx context.Context) error
	Close() error
}

// MemorySet is an in-process ProcessedSet used when Redis is unavailable.
// Entries never expire; the set lives only as long as the process.
type MemorySet struct {
	mu   sync.RWMutex
	data map[string]struct{}
}

func NewMemorySet() *MemorySet {
	return &MemorySet{data: make(map[string]struct{})}
}

func (m *MemorySet) IsProcessed(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MemorySet) MarkProcessed(_ context.Context, key string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = struct{}{}
	return nil
}

func (m *MemorySet) ClearProcessed(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]struct{})
	return nil
}

func (m *MemorySet) Close() error { return nil }
