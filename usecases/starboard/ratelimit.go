package starboard

import (
	"context"
	"fmt"
	"time"

	"sorabackend/cache"
)

const (
	// a user may add and then remove their star; anything after that is ignored
	userRateLimitMax = 2
	userRateLimitTTL = 30 * time.Minute
)

func (s *StarboardUseCase) rateLimitReached(ctx context.Context, messageID, userID string) (bool, error) {
	maybeCounter, err := cache.Get[cache.CounterEntry](ctx, s.cache, cache.ReactCountKey(messageID, userID))
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit: %w", err)
	}

	counter, ok := maybeCounter.Get()
	return ok && counter.Count >= userRateLimitMax, nil
}

// bumpRateLimit records one more processed action and restarts the counter's TTL.
func (s *StarboardUseCase) bumpRateLimit(ctx context.Context, messageID, userID string) error {
	_, err := cache.AddOrUpdate(
		ctx,
		s.cache,
		cache.ReactCountKey(messageID, userID),
		cache.CounterEntry{Count: 1},
		func(current cache.CounterEntry) cache.CounterEntry {
			return cache.CounterEntry{Count: current.Count + 1}
		},
		userRateLimitTTL,
	)
	if err != nil {
		return fmt.Errorf("failed to update rate limit: %w", err)
	}
	return nil
}
