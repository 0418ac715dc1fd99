package cache

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"sorabackend/models"
)

var testRedisURL string

func TestMain(m *testing.M) {
	os.Exit(runTests(m))
}

func runTests(m *testing.M) int {
	flag.Parse()
	if testing.Short() {
		return m.Run()
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis container unavailable, integration tests will skip: %v\n", err)
		return m.Run()
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
		}
	}()

	testRedisURL, err = container.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis connection string: %v\n", err)
		return 1
	}

	return m.Run()
}

func setupRedisCache(t *testing.T) (*RedisCache, *redis.Client) {
	t.Helper()
	if testing.Short() || testRedisURL == "" {
		t.Skip("skipping redis integration test")
	}

	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, testRedisURL)
	require.NoError(t, err)
	require.NoError(t, rdb.FlushAll(ctx).Err())
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisCache(rdb, "sorabot:test:", nil), rdb
}

func TestRedisCache_SetGetRemove(t *testing.T) {
	c, _ := setupRedisCache(t)
	ctx := context.Background()

	msg := models.DiscordMessage{ID: "m1", Content: "hello", Author: models.DiscordUser{ID: "u1"}}
	require.NoError(t, c.Set(ctx, MessageKey("m1"), MessageEntry{Message: msg}, time.Minute))

	got, err := Get[MessageEntry](ctx, c, MessageKey("m1"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got.MustGet().Message.Content)

	_, err = Get[CounterEntry](ctx, c, MessageKey("m1"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	require.NoError(t, c.Remove(ctx, MessageKey("m1")))
	found, err := c.Contains(ctx, MessageKey("m1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_TTLAndPrefix(t *testing.T) {
	c, rdb := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, DoNotPostKey("m1"), MarkerEntry{}, time.Hour))

	ttl, err := rdb.PTTL(ctx, "sorabot:test:"+DoNotPostKey("m1")).Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Milliseconds(), ttl.Milliseconds(), float64(5*time.Second.Milliseconds()))

	require.NoError(t, c.Set(ctx, "forever", MarkerEntry{}, 0))
	ttl, err = rdb.TTL(ctx, "sorabot:test:forever").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "zero ttl stores without expiry")
}

func TestRedisCache_AddOrUpdateConcurrent(t *testing.T) {
	c, rdb := setupRedisCache(t)
	ctx := context.Background()
	key := ReactCountKey("m1", "u1")
	inc := func(cur CounterEntry) CounterEntry { return CounterEntry{Count: cur.Count + 1} }

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := AddOrUpdate(ctx, c, key, CounterEntry{Count: 1}, inc, 30*time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := Get[CounterEntry](ctx, c, key)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MustGet().Count)

	ttl, err := rdb.TTL(ctx, "sorabot:test:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 29*time.Minute)
}
