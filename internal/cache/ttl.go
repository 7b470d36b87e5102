// Package cache holds the status-count cache used for listing tab badges.
//
// Entries carry the time they were fetched and go stale after a fixed TTL.
// Mutating operations call Invalidate explicitly, so the TTL only bounds
// staleness caused by writers outside this process.
package cache

import (
	"context"
	"maps"
	"sync"
	"time"
)

type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
}

// TTL is a mutex-guarded map of entries with a fixed time-to-live.
type TTL[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]Entry[V]
}

func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry[V]),
	}
}

// WithClock replaces the time source. Tests only.
func (c *TTL[V]) WithClock(now func() time.Time) *TTL[V] {
	c.now = now
	return c
}

// Get returns the value for key while it is younger than the TTL.
func (c *TTL[V]) Get(key string) (V, bool) {
	e, ok := c.Entry(key)
	if !ok || c.now().Sub(e.FetchedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Entry returns the raw entry regardless of age.
func (c *TTL[V]) Entry(key string) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *TTL[V]) Set(key string, v V) {
	c.mu.Lock()
	c.entries[key] = Entry[V]{Value: v, FetchedAt: c.now()}
	c.mu.Unlock()
}

func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// MemoryCounts adapts TTL to the count cache port. Maps are copied on the
// way in and out so callers cannot mutate cached state. Each key carries a
// generation that Invalidate bumps.
type MemoryCounts struct {
	mu   sync.Mutex
	c    *TTL[map[string]int]
	gens map[string]uint64
}

func NewMemoryCounts(ttl time.Duration) *MemoryCounts {
	return &MemoryCounts{
		c:    NewTTL[map[string]int](ttl),
		gens: make(map[string]uint64),
	}
}

// WithClock replaces the time source. Tests only.
func (m *MemoryCounts) WithClock(now func() time.Time) *MemoryCounts {
	m.c.WithClock(now)
	return m
}

func (m *MemoryCounts) Get(_ context.Context, key string) (map[string]int, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	return maps.Clone(v), true
}

func (m *MemoryCounts) Set(_ context.Context, key string, counts map[string]int) {
	m.c.Set(key, maps.Clone(counts))
}

func (m *MemoryCounts) Generation(_ context.Context, key string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[key]
}

// SetIfGeneration stores counts only when key has not been invalidated
// since gen was read.
func (m *MemoryCounts) SetIfGeneration(_ context.Context, key string, gen uint64, counts map[string]int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[key] != gen {
		return false
	}
	m.c.Set(key, maps.Clone(counts))
	return true
}

func (m *MemoryCounts) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[key]++
	m.c.Invalidate(key)
}
