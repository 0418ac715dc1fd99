package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/redis/go-redis/v9"
	"github.com/samber/mo"

	"sorabackend/metrics"
)

const maxOptimisticRetries = 10

// NewRedisClient parses url and waits for the server to answer PING.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	err = retry.Do(
		func() error {
			return rdb.Ping(ctx).Err()
		},
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("⏳ Redis not reachable yet, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

// RedisCache is a Cache shared across bot processes. Values are msgpack envelopes tagged with their kind.
type RedisCache struct {
	rdb       *redis.Client
	keyPrefix string
	metrics   *metrics.Metrics
}

func NewRedisCache(rdb *redis.Client, keyPrefix string, m *metrics.Metrics) *RedisCache {
	return &RedisCache{rdb: rdb, keyPrefix: keyPrefix, metrics: m}
}

func (c *RedisCache) Get(ctx context.Context, key string) (mo.Option[Value], error) {
	data, err := c.rdb.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheRequest(Namespace(key), false)
		return mo.None[Value](), nil
	}
	if err != nil {
		return mo.None[Value](), fmt.Errorf("failed to get %s from redis: %w", key, err)
	}

	value, err := decodeValue(data)
	if err != nil {
		return mo.None[Value](), err
	}

	c.metrics.CacheRequest(Namespace(key), true)
	return mo.Some(value), nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value Value, ttl time.Duration) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}

	if err := c.rdb.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

func (c *RedisCache) AddOrUpdate(ctx context.Context, key string, initial Value, update UpdateFunc, ttl time.Duration) (Value, error) {
	fullKey := c.keyPrefix + key

	for attempt := 0; attempt < maxOptimisticRetries; attempt++ {
		var next Value
		err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
			next = initial

			data, err := tx.Get(ctx, fullKey).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				return err
			default:
				current, err := decodeValue(data)
				if err != nil {
					return err
				}
				if next, err = update(current); err != nil {
					return err
				}
			}

			encoded, err := encodeValue(next)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, fullKey, encoded, ttl)
				return nil
			})
			return err
		}, fullKey)

		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("failed to add or update %s in redis: %w", key, err)
		}
	}

	return nil, fmt.Errorf("failed to add or update %s in redis: too much contention after %d attempts", key, maxOptimisticRetries)
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s from redis: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Contains(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s in redis: %w", key, err)
	}
	return n > 0, nil
}

var _ Cache = (*RedisCache)(nil)
