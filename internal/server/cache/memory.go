package cache

import (
	"context"
	"sync"
	"time"
)

const defaultMaxSize = 1000

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is a process-local Cache with per-entry TTL. When full, an
// arbitrary entry is evicted.
type Memory struct {
	mu      sync.RWMutex
	items   map[string]entry
	maxSize int
	now     func() time.Time
}

func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &Memory{
		items:   make(map[string]entry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return "", ErrMiss
	}
	if !m.now().Before(e.expiresAt) {
		_ = m.Delete(ctx, key)
		return "", ErrMiss
	}
	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && len(m.items) >= m.maxSize {
		for k := range m.items {
			delete(m.items, k)
			break
		}
	}

	m.items[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
