// Package cache provides the in-process TTL byte cache used by the news
// feed. Read-through only; there is no invalidation path.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores byte values with a per-entry TTL
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

type memory struct{ c *gocache.Cache }

// NewMemory returns an in-process cache with the given default TTL
func NewMemory(defaultTTL time.Duration) Cache {
	return &memory{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *memory) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *memory) Set(key string, value []byte, ttl time.Duration) { m.c.Set(key, value, ttl) }
func (m *memory) Delete(key string)                               { m.c.Delete(key) }
