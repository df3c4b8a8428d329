package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisStore is a fixed-window store shared across processes via Redis.
// It mirrors MemoryStore's contract: INCR the key, start the window TTL on
// the first hit, deny once the count exceeds the limit.
//
// The store fails open: if Redis is unreachable the request is admitted with
// a full budget rather than turning a cache outage into a chat outage.
type RedisStore struct {
	rdb    *redis.Client
	limit  int
	period time.Duration
	prefix string
}

// NewRedisStore returns a RedisStore admitting limit requests per period.
func NewRedisStore(rdb *redis.Client, limit int, period time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, limit: limit, period: period, prefix: "rl:chat:"}
}

// Check increments key's counter and reports admission and remaining budget.
func (s *RedisStore) Check(ctx context.Context, key string) (bool, int, error) {
	k := s.prefix + key

	count, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit store unavailable; admitting")
		return true, s.limit, nil
	}
	if count == 1 {
		// First hit opens the window.
		if err := s.rdb.PExpire(ctx, k, s.period).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limit window TTL not set")
		}
	}

	remaining := s.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return int(count) <= s.limit, remaining, nil
}
