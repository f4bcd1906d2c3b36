package rate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/phoneAuth/counter"
)

// Counter reads and writes integer counters in a counter.Store.
type Counter struct {
	store  counter.Store
	atomic counter.Incrementer
}

// New creates a Counter. If store also implements counter.Incrementer the
// atomic path is used for every increment.
func New(store counter.Store) *Counter {
	c := &Counter{store: store}
	if inc, ok := store.(counter.Incrementer); ok {
		c.atomic = inc
	}
	return c
}

// Atomic reports whether increments are atomic.
func (c *Counter) Atomic() bool {
	return c != nil && c.atomic != nil
}

// Count returns the current value of key. Missing keys, negative values and
// unparsable values all read as zero.
func (c *Counter) Count(ctx context.Context, key string) (int, error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, counter.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return parseCount(raw), nil
}

// Increment adds one to key and re-arms its ttl. It returns the new value.
func (c *Counter) Increment(ctx context.Context, key string, ttl time.Duration) (int, error) {
	if c.atomic != nil {
		n, err := c.atomic.IncrWithTTL(ctx, key, ttl)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if n < 0 {
			return 0, nil
		}
		return int(n), nil
	}

	current, err := c.Count(ctx, key)
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := c.store.SetWithTTL(ctx, key, strconv.Itoa(next), ttl); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return next, nil
}

// Reset deletes keys.
func (c *Counter) Reset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
