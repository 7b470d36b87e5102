package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"site-admin-backend/internal/logger"
)

const (
	redisKeyPrefix = "site-admin:counts:"
	redisGenSuffix = ":gen"
)

// setIfGeneration writes KEYS[1] only while KEYS[2] still holds ARGV[1].
// A missing generation key reads as 0.
var setIfGeneration = goredis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if not gen then gen = '0' end
if gen ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisCounts shares the count cache between several API replicas so an
// invalidation on one is seen by all. Redis errors degrade to cache misses.
type RedisCounts struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewRedisCounts(addr string, ttl time.Duration, log *logger.Logger) (*RedisCounts, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCounts{
		rdb: rdb,
		ttl: ttl,
		log: logger.OrNop(log).With("service", "RedisCounts"),
	}, nil
}

func (r *RedisCounts) Get(ctx context.Context, key string) (map[string]int, bool) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			r.log.Warn("count cache get failed", "key", key, "err", err)
		}
		return nil, false
	}
	var counts map[string]int
	if err := json.Unmarshal(raw, &counts); err != nil {
		r.log.Warn("count cache entry unreadable", "key", key, "err", err)
		return nil, false
	}
	return counts, true
}

// Generation reads the invalidation counter shared by all replicas. A read
// failure returns 0, which makes a later SetIfGeneration a no-op unless the
// counter really is unset.
func (r *RedisCounts) Generation(ctx context.Context, key string) uint64 {
	gen, err := r.rdb.Get(ctx, redisKeyPrefix+key+redisGenSuffix).Uint64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		r.log.Warn("count cache generation read failed", "key", key, "err", err)
	}
	return gen
}

func (r *RedisCounts) SetIfGeneration(ctx context.Context, key string, gen uint64, counts map[string]int) bool {
	raw, err := json.Marshal(counts)
	if err != nil {
		return false
	}
	keys := []string{redisKeyPrefix + key, redisKeyPrefix + key + redisGenSuffix}
	stored, err := setIfGeneration.Run(ctx, r.rdb, keys,
		strconv.FormatUint(gen, 10), raw, r.ttl.Milliseconds()).Int()
	if err != nil {
		r.log.Warn("count cache set failed", "key", key, "err", err)
		return false
	}
	return stored == 1
}

// Invalidate drops the entry and bumps the generation in one round trip.
func (r *RedisCounts) Invalidate(ctx context.Context, key string) {
	_, err := r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, redisKeyPrefix+key)
		p.Incr(ctx, redisKeyPrefix+key+redisGenSuffix)
		return nil
	})
	if err != nil {
		r.log.Warn("count cache invalidate failed", "key", key, "err", err)
	}
}

func (r *RedisCounts) Close() error {
	return r.rdb.Close()
}
