package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryCache keeps responses in-process in an expirable LRU
type memoryCache struct {
	entries *lru.LRU[Key, []byte]
}

func newMemoryCache(opts Options) *memoryCache {
	onEvict := func(key Key, _ []byte) {
		EvictionsTotal.WithLabelValues(string(key.Kind)).Inc()
	}
	return &memoryCache{entries: lru.NewLRU[Key, []byte](opts.Size, onEvict, opts.TTL)}
}

func (m *memoryCache) Get(_ context.Context, key Key) ([]byte, bool) {
	return m.entries.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key Key, value []byte) {
	m.entries.Add(key, value)
}

func (m *memoryCache) Len() int {
	return m.entries.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
