package cache

import "context"

// instrumentedCache counts hits and misses per Kind and reports its size to
// the entries collector while open.
type instrumentedCache struct {
	inner   Cache
	backend string
}

func newInstrumentedCache(inner Cache, backend string) *instrumentedCache {
	c := &instrumentedCache{inner: inner, backend: backend}
	entries.add(c)
	return c
}

func (c *instrumentedCache) Get(ctx context.Context, key Key) ([]byte, bool) {
	value, ok := c.inner.Get(ctx, key)
	if ok {
		HitsTotal.WithLabelValues(string(key.Kind)).Inc()
	} else {
		MissesTotal.WithLabelValues(string(key.Kind)).Inc()
	}
	return value, ok
}

func (c *instrumentedCache) Set(ctx context.Context, key Key, value []byte) {
	c.inner.Set(ctx, key, value)
}

func (c *instrumentedCache) Len() int {
	return c.inner.Len()
}

func (c *instrumentedCache) Close() error {
	entries.remove(c)
	return c.inner.Close()
}
