package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultMemoryEntries bounds the in-process cache.
	DefaultMemoryEntries = 1024
	// MaxMemoryTTL caps how long any entry stays in the in-process cache.
	MaxMemoryTTL = 6 * time.Hour
)

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is a process-local Cache with LRU eviction. Each entry carries its own
// TTL on top of the LRU-wide MaxMemoryTTL.
type Memory struct {
	lru *expirable.LRU[string, entry]
	now func() time.Time
}

// NewMemory creates an empty in-process cache holding DefaultMemoryEntries.
func NewMemory() *Memory {
	return NewMemorySize(DefaultMemoryEntries)
}

// NewMemorySize creates an empty in-process cache holding at most size entries.
func NewMemorySize(size int) *Memory {
	return &Memory{
		lru: expirable.NewLRU[string, entry](size, nil, MaxMemoryTTL),
		now: time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.lru.Add(key, entry{value: value, expires: m.now().Add(min(ttl, MaxMemoryTTL))})
	return nil
}

// Len reports how many entries are held, expired ones included until evicted.
func (m *Memory) Len() int {
	return m.lru.Len()
}
