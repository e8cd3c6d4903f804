package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const defaultKeyPrefix = "showfinder:"

// Cache stores encoded TVMaze responses.
// A failing backend behaves like an empty cache: Get misses and Set is dropped.
type Cache interface {
	Get(ctx context.Context, key Key) ([]byte, bool)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key Key, value []byte)

	// Len returns the number of live entries.
	Len() int

	Close() error
}

// Options configures New
type Options struct {
	// Backend is "memory" or "redis".
	Backend string
	// Size caps the number of entries; the oldest are evicted first.
	Size int
	// TTL bounds how long a response is served from the cache.
	TTL time.Duration
	// KeyPrefix namespaces redis keys. Defaults to "showfinder:".
	KeyPrefix string
	Redis     RedisOptions
	Logger    zerolog.Logger
}

// RedisOptions holds the connection settings of the redis backend
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// New creates the configured backend and wraps it with hit, miss, eviction and
// size metrics.
func New(opts Options) (Cache, error) {
	if opts.Size <= 0 {
		return nil, errors.New("cache: size must be positive")
	}
	if opts.TTL < time.Millisecond {
		return nil, errors.New("cache: ttl must be at least 1ms")
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}

	var (
		inner Cache
		err   error
	)
	switch opts.Backend {
	case "memory":
		inner = newMemoryCache(opts)
	case "redis":
		inner, err = newRedisCache(opts)
	default:
		return nil, fmt.Errorf("cache: unknown backend %q (supported: memory, redis)", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	return newInstrumentedCache(inner, opts.Backend), nil
}
