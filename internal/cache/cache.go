package cache

import (
	"sync"
	"time"
)

// MemCache is a minimal TTL map[string] -> V cache.
type MemCache[V any] struct {
	mu   sync.RWMutex
	data map[string]memItem[V]
}

// memItem stores a value and its expiry time.
type memItem[V any] struct {
	val   V
	expAt time.Time
}

// NewMemCache constructs an in-memory TTL cache.
func NewMemCache[V any]() *MemCache[V] {
	return &MemCache[V]{data: make(map[string]memItem[V])}
}

// Get retrieves a cached value if not expired.
func (m *MemCache[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	item, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(item.expAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		var zero V
		return zero, false
	}
	return item.val, true
}

// Set stores a value with TTL. A non-positive TTL stores nothing.
func (m *MemCache[V]) Set(key string, v V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memItem[V]{val: v, expAt: time.Now().Add(ttl)}
}

// Delete removes key.
func (m *MemCache[V]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *MemCache[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
