package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/phoneAuth/internal/rate"
)

var (
	// ErrFailureLimitReached is returned when a failure pushes a counter to its limit.
	// The counter and any purge keys have already been deleted.
	ErrFailureLimitReached = errors.New("failure limit reached")
	// ErrGuardUnavailable indicates the failure guard backend is unreachable.
	ErrGuardUnavailable = errors.New("failure guard backend unavailable")
)

// FailureGuard counts consecutive verification failures per key and locks
// once a limit is reached. It holds no policy of its own: every caller
// passes the key, window and limit it wants enforced.
type FailureGuard struct {
	counter *rate.Counter
}

// NewFailureGuard creates a guard over counter.
func NewFailureGuard(counter *rate.Counter) *FailureGuard {
	return &FailureGuard{counter: counter}
}

// RecordFailure counts one failure for key with a fresh ttl.
//
// It returns the attempts left before lockout. When the new count reaches
// limit, key and every purge key are deleted and ErrFailureLimitReached is
// returned with zero remaining, so the stored count never exceeds limit.
func (g *FailureGuard) RecordFailure(ctx context.Context, key string, ttl time.Duration, limit int, purge ...string) (int, error) {
	if g == nil || g.counter == nil {
		return 0, ErrGuardUnavailable
	}
	if limit <= 0 {
		limit = 1
	}

	count, err := g.counter.Increment(ctx, key, ttl)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}

	if count >= limit {
		keys := append([]string{key}, purge...)
		if err := g.counter.Reset(ctx, keys...); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
		}
		return 0, ErrFailureLimitReached
	}

	return limit - count, nil
}

// Clear deletes the failure counter for key.
func (g *FailureGuard) Clear(ctx context.Context, key string) error {
	if g == nil || g.counter == nil {
		return nil
	}
	if err := g.counter.Reset(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	return nil
}

// Remaining returns how many failures key may still record before lockout.
func (g *FailureGuard) Remaining(ctx context.Context, key string, limit int) (int, error) {
	if g == nil || g.counter == nil {
		return 0, ErrGuardUnavailable
	}
	count, err := g.counter.Count(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	if count >= limit {
		return 0, nil
	}
	return limit - count, nil
}
