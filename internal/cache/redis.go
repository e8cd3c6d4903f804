package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisOpTimeout bounds a single cache round-trip so a slow Redis never delays
// a page render by more than this.
const redisOpTimeout = 500 * time.Millisecond

// redisCache shares TVMaze responses between ShowFinder instances.
//
// Every response is a plain string key {prefix}{kind}:{id} expiring after the
// TTL. {prefix}index is a sorted set of those keys scored by write time in
// milliseconds; it enforces Size oldest-first and answers Len.
type redisCache struct {
	client   *redis.Client
	ttl      time.Duration
	size     int
	prefix   string
	indexKey string
	logger   zerolog.Logger
}

// KEYS[1] = response key, KEYS[2] = index
// ARGV[1] = value, ARGV[2] = now in ms, ARGV[3] = TTL in ms, ARGV[4] = size
//
// Returns the keys dropped to stay within size. Index members older than the
// TTL are pruned first, their values are already gone.
var storeAndTrim = redis.NewScript(`
local now  = tonumber(ARGV[2])
local ttl  = tonumber(ARGV[3])
local size = tonumber(ARGV[4])

redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
redis.call('ZADD', KEYS[2], now, KEYS[1])
redis.call('ZREMRANGEBYSCORE', KEYS[2], '-inf', now - ttl)

local excess = redis.call('ZCARD', KEYS[2]) - size
if excess <= 0 then
    return {}
end
local dropped = redis.call('ZRANGE', KEYS[2], 0, excess - 1)
redis.call('ZREMRANGEBYRANK', KEYS[2], 0, excess - 1)
for _, key in ipairs(dropped) do
    redis.call('DEL', key)
end
return dropped
`)

func newRedisCache(opts Options) (*redisCache, error) {
	if opts.Redis.Address == "" {
		return nil, errors.New("redis cache: address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Redis.Address,
		Password: opts.Redis.Password,
		DB:       opts.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisCache{
		client:   client,
		ttl:      opts.TTL,
		size:     opts.Size,
		prefix:   opts.KeyPrefix,
		indexKey: opts.KeyPrefix + "index",
		logger:   opts.Logger,
	}, nil
}

func (r *redisCache) storedKey(key Key) string {
	return r.prefix + key.String()
}

func (r *redisCache) Get(ctx context.Context, key Key) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.storedKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error().Err(err).Str("key", key.String()).Msg("Redis cache get failed")
		}
		return nil, false
	}
	return value, true
}

func (r *redisCache) Set(ctx context.Context, key Key, value []byte) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	dropped, err := storeAndTrim.Run(ctx, r.client,
		[]string{r.storedKey(key), r.indexKey},
		value,
		strconv.FormatInt(time.Now().UnixMilli(), 10),
		strconv.FormatInt(r.ttl.Milliseconds(), 10),
		strconv.Itoa(r.size),
	).StringSlice()
	if err != nil {
		r.logger.Error().Err(err).Str("key", key.String()).Msg("Redis cache set failed")
		return
	}

	for _, stored := range dropped {
		EvictionsTotal.WithLabelValues(string(kindOf(stored, r.prefix))).Inc()
	}
}

// Len counts index members written within the TTL
func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	minScore := strconv.FormatInt(time.Now().Add(-r.ttl).UnixMilli(), 10)
	n, err := r.client.ZCount(ctx, r.indexKey, "("+minScore, "+inf").Result()
	if err != nil {
		r.logger.Error().Err(err).Msg("Redis cache len failed")
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
