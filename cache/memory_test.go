package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorabackend/models"
)

func newTestMemoryCache() (*MemoryCache, clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewMemoryCache(clock, nil), clock
}

func TestMemoryCache_GetMiss(t *testing.T) {
	c, _ := newTestMemoryCache()

	got, err := c.Get(context.Background(), MessageKey("missing"))
	require.NoError(t, err)
	assert.True(t, got.IsAbsent())
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c, _ := newTestMemoryCache()
	ctx := context.Background()

	msg := models.DiscordMessage{ID: "m1", Content: "hello"}
	require.NoError(t, c.Set(ctx, MessageKey("m1"), MessageEntry{Message: msg}, 10*time.Minute))

	got, err := c.Get(ctx, MessageKey("m1"))
	require.NoError(t, err)
	value, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, MessageEntry{Message: msg}, value)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()
	key := DoNotPostKey("m1")

	require.NoError(t, c.Set(ctx, key, MarkerEntry{}, time.Hour))

	clock.Advance(59 * time.Minute)
	found, err := c.Contains(ctx, key)
	require.NoError(t, err)
	assert.True(t, found, "entry should survive until its ttl")

	clock.Advance(time.Minute)
	found, err = c.Contains(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "entry must not be visible once expired")

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, got.IsAbsent())
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", CounterEntry{Count: 1}, 0))
	clock.Advance(365 * 24 * time.Hour)

	found, err := c.Contains(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0, c.EvictExpired())
}

func TestMemoryCache_AddOrUpdate(t *testing.T) {
	increment := func(current Value) (Value, error) {
		return CounterEntry{Count: current.(CounterEntry).Count + 1}, nil
	}

	t.Run("stores initial when absent", func(t *testing.T) {
		c, _ := newTestMemoryCache()

		got, err := c.AddOrUpdate(context.Background(), "k", CounterEntry{Count: 1}, increment, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, CounterEntry{Count: 1}, got)
	})

	t.Run("updates existing and refreshes ttl", func(t *testing.T) {
		c, clock := newTestMemoryCache()
		ctx := context.Background()

		_, err := c.AddOrUpdate(ctx, "k", CounterEntry{Count: 1}, increment, 30*time.Minute)
		require.NoError(t, err)

		clock.Advance(20 * time.Minute)
		got, err := c.AddOrUpdate(ctx, "k", CounterEntry{Count: 1}, increment, 30*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, CounterEntry{Count: 2}, got)

		// 40 minutes after the first write, 20 after the refresh
		clock.Advance(20 * time.Minute)
		found, err := c.Contains(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("expired entry is treated as absent", func(t *testing.T) {
		c, clock := newTestMemoryCache()
		ctx := context.Background()

		_, err := c.AddOrUpdate(ctx, "k", CounterEntry{Count: 1}, increment, time.Minute)
		require.NoError(t, err)
		clock.Advance(2 * time.Minute)

		got, err := c.AddOrUpdate(ctx, "k", CounterEntry{Count: 1}, increment, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, CounterEntry{Count: 1}, got)
	})

	t.Run("update error leaves value untouched", func(t *testing.T) {
		c, _ := newTestMemoryCache()
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "k", CounterEntry{Count: 5}, 0))

		boom := errors.New("boom")
		_, err := c.AddOrUpdate(ctx, "k", CounterEntry{Count: 1}, func(Value) (Value, error) { return nil, boom }, 0)
		assert.ErrorIs(t, err, boom)

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, CounterEntry{Count: 5}, got.MustGet())
	})

	t.Run("concurrent increments are atomic", func(t *testing.T) {
		c, _ := newTestMemoryCache()
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = c.AddOrUpdate(ctx, "k", CounterEntry{Count: 1}, increment, time.Minute)
			}()
		}
		wg.Wait()

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, CounterEntry{Count: 50}, got.MustGet())
	})
}

func TestMemoryCache_Remove(t *testing.T) {
	c, _ := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", MarkerEntry{}, time.Minute))
	require.NoError(t, c.Remove(ctx, "k"))
	require.NoError(t, c.Remove(ctx, "k"), "removing an absent key is a no-op")

	found, err := c.Contains(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_EvictExpired(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", MarkerEntry{}, time.Minute))
	require.NoError(t, c.Set(ctx, "long", MarkerEntry{}, time.Hour))
	require.NoError(t, c.Set(ctx, "forever", MarkerEntry{}, 0))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.EvictExpired())
	assert.Equal(t, 2, c.Size())
}

func TestMemoryCache_StartEvictionTimer(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", MarkerEntry{}, time.Second))

	stop := c.StartEvictionTimer(time.Minute)
	defer stop()

	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 10*time.Millisecond)

	stop()
	assert.NotPanics(t, stop, "stop must be safe to call twice")
}
