package push

import (
	"context"
	"errors"
	"time"

	"remindly/config"
	"remindly/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrRateLimited is returned in fail-closed mode when the counter store is
// unreachable; the dispatcher surfaces it as a failed DispatchResult.
var ErrRateLimited = errors.New("rate limit store unavailable")

// RateLimitStore is the shared fast counter store behind the limiter.
type RateLimitStore interface {
	// Incr atomically increments the counter, creating it at 1.
	Incr(ctx context.Context, key string) (int64, error)
	// Expire stamps the key's time-to-live.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

type redisRateStore struct {
	client *redis.Client
}

// NewRedisRateStore wraps a Redis client as a RateLimitStore.
func NewRedisRateStore(client *redis.Client) RateLimitStore {
	return &redisRateStore{client: client}
}

func (s *redisRateStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *redisRateStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

// RateLimiter bounds the send rate per recipient key over a fixed window.
// Concurrent waiters keep incrementing the counter, so a key under contention
// stays capped until its window key expires.
type RateLimiter struct {
	store    RateLimitStore
	max      int
	window   time.Duration
	maxWait  time.Duration
	failOpen bool
	logger   *zap.Logger

	// sleep is swapped in tests to avoid real delays.
	sleep func(time.Duration)
}

// NewRateLimiterFromConfig builds a limiter over the given store using the
// loaded app config.
func NewRateLimiterFromConfig(store RateLimitStore) *RateLimiter {
	return &RateLimiter{
		store:    store,
		max:      config.AppConfig.RateLimitMax,
		window:   time.Duration(config.AppConfig.RateLimitWindowSecs) * time.Second,
		maxWait:  time.Duration(config.AppConfig.RateLimitMaxWaitMs) * time.Millisecond,
		failOpen: config.AppConfig.RateLimitFailOpen,
		logger:   utils.GetLogger(),
		sleep:    time.Sleep,
	}
}

// NewRateLimiter builds a limiter with explicit settings.
func NewRateLimiter(store RateLimitStore, max int, window, maxWait time.Duration, failOpen bool, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &RateLimiter{
		store:    store,
		max:      max,
		window:   window,
		maxWait:  maxWait,
		failOpen: failOpen,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Apply throttles sends for the given recipient key. Each call increments the
// window counter atomically; the first increment of a window stamps the TTL,
// so however the previous key vanished the counter always carries an expiry.
// Over the threshold it waits in a bounded loop (linearly growing delays) and
// rechecks. When the wait budget runs out the send proceeds anyway rather
// than failing the caller. Store failures either let the send through
// (fail-open, the default) or reject it (fail-closed); neither mode panics or
// blocks delivery indefinitely.
func (l *RateLimiter) Apply(ctx context.Context, key string) error {
	fullKey := "push:rl:" + key
	var waited time.Duration

	for attempt := 1; ; attempt++ {
		count, err := l.store.Incr(ctx, fullKey)
		if err != nil {
			return l.storeFailure(key, err)
		}
		if count == 1 {
			if err := l.store.Expire(ctx, fullKey, l.window); err != nil {
				return l.storeFailure(key, err)
			}
		}
		if count <= int64(l.max) {
			return nil
		}

		delay := time.Duration(attempt) * 100 * time.Millisecond
		if waited+delay > l.maxWait {
			l.logger.Warn("rate limit wait budget exhausted, proceeding",
				zap.String("key", key), zap.Int64("count", count))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.sleep(delay)
		waited += delay
	}
}

func (l *RateLimiter) storeFailure(key string, err error) error {
	if l.failOpen {
		l.logger.Error("rate limit store failure, failing open",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	l.logger.Error("rate limit store failure, failing closed",
		zap.String("key", key), zap.Error(err))
	return ErrRateLimited
}
