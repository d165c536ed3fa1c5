package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	expiresAt time.Time
	data      []byte
}

func (e memoryEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Memory is an in-process Backend used in tests and single-node development.
// Expired entries are dropped on access; Keys and pattern deletion also skip
// them, so an entry written with TTL t is observably absent after t.
type Memory struct {
	mu     sync.Mutex
	items  map[string]memoryEntry
	closed bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryEntry)}
}

// Get returns the stored bytes for key, or ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	if e.isExpired(time.Now()) {
		delete(m.items, key)
		return nil, ErrNotFound
	}
	return e.data, nil
}

// Set stores data under key expiring after ttl.
func (m *Memory) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.items[key] = memoryEntry{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes the given keys.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

// DeleteByPattern removes every key matching pattern. Only the trailing "*"
// wildcard is supported; anything else is treated as an exact key.
func (m *Memory) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		delete(m.items, pattern)
		return nil
	}

	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

// Keys returns the live (unexpired) keys, for test assertions.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0, len(m.items))
	for key, e := range m.items {
		if !e.isExpired(now) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Close marks the backend closed. Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Backend = (*Memory)(nil)
