package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"

	"sorabackend/models"
)

// ErrTypeMismatch is returned when a key holds a different variant than the caller asked for.
var ErrTypeMismatch = errors.New("cache value type mismatch")

type Kind string

const (
	KindMessage Kind = "message"
	KindCounter Kind = "counter"
	KindMarker  Kind = "marker"
)

// Value is the closed set of things the cache stores. Each key namespace holds exactly one variant.
type Value interface {
	Kind() Kind
}

type MessageEntry struct {
	Message models.DiscordMessage `msgpack:"message"`
}

type CounterEntry struct {
	Count int `msgpack:"count"`
}

type MarkerEntry struct{}

func (MessageEntry) Kind() Kind { return KindMessage }
func (CounterEntry) Kind() Kind { return KindCounter }
func (MarkerEntry) Kind() Kind  { return KindMarker }

// UpdateFunc computes the replacement for an existing value. It may run more than once
// for a single AddOrUpdate call on backends with optimistic concurrency.
type UpdateFunc func(current Value) (Value, error)

// Cache is a keyed store with optional per-entry TTL. A ttl of zero means the entry never expires.
// Expired entries are never returned.
type Cache interface {
	Get(ctx context.Context, key string) (mo.Option[Value], error)
	Set(ctx context.Context, key string, value Value, ttl time.Duration) error
	// AddOrUpdate stores initial when key is absent, otherwise update(current), atomically.
	// The TTL is reset on every write.
	AddOrUpdate(ctx context.Context, key string, initial Value, update UpdateFunc, ttl time.Duration) (Value, error)
	Remove(ctx context.Context, key string) error
	Contains(ctx context.Context, key string) (bool, error)
}

// Get returns the value under key as T, failing with ErrTypeMismatch when a different variant is stored.
func Get[T Value](ctx context.Context, c Cache, key string) (mo.Option[T], error) {
	maybeValue, err := c.Get(ctx, key)
	if err != nil {
		return mo.None[T](), err
	}
	value, ok := maybeValue.Get()
	if !ok {
		return mo.None[T](), nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return mo.None[T](), fmt.Errorf("key %s holds %s, expected %s: %w", key, value.Kind(), zero.Kind(), ErrTypeMismatch)
	}
	return mo.Some(typed), nil
}

// GetOrSet returns the cached T under key, or calls factory on a miss and caches a present result under ttl.
// An absent factory result is not cached.
func GetOrSet[T Value](
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	factory func(ctx context.Context) (mo.Option[T], error),
) (mo.Option[T], error) {
	cached, err := Get[T](ctx, c, key)
	if err != nil {
		return mo.None[T](), err
	}
	if cached.IsPresent() {
		return cached, nil
	}

	fresh, err := factory(ctx)
	if err != nil {
		return mo.None[T](), err
	}
	value, ok := fresh.Get()
	if !ok {
		return mo.None[T](), nil
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		return mo.None[T](), fmt.Errorf("failed to cache value for %s: %w", key, err)
	}
	return fresh, nil
}

// AddOrUpdate is the typed form of Cache.AddOrUpdate.
func AddOrUpdate[T Value](
	ctx context.Context,
	c Cache,
	key string,
	initial T,
	update func(current T) T,
	ttl time.Duration,
) (T, error) {
	var zero T
	result, err := c.AddOrUpdate(ctx, key, initial, func(current Value) (Value, error) {
		typed, ok := current.(T)
		if !ok {
			return nil, fmt.Errorf("key %s holds %s, expected %s: %w", key, current.Kind(), zero.Kind(), ErrTypeMismatch)
		}
		return update(typed), nil
	}, ttl)
	if err != nil {
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("key %s holds %s, expected %s: %w", key, result.Kind(), zero.Kind(), ErrTypeMismatch)
	}
	return typed, nil
}
