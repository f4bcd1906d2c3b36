package counter

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key is absent or expired.
	ErrNotFound = errors.New("counter: key not found")
	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = errors.New("counter: store unavailable")
)

// Store is the minimal TTL key-value contract.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Incrementer is implemented by stores that can increment a numeric value
// atomically. The ttl is applied on every increment, so the key expires ttl
// after its latest write. Absent keys start at zero.
type Incrementer interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// CompareDeleter is implemented by stores that can delete a key only while
// it still holds an expected value, as one atomic step. At most one of several
// concurrent callers with the same value observes deleted == true.
type CompareDeleter interface {
	DeleteIfEqual(ctx context.Context, key, value string) (deleted bool, err error)
}

// IsAtomic reports whether s implements both Incrementer and CompareDeleter.
func IsAtomic(s Store) bool {
	_, incr := s.(Incrementer)
	_, cmp := s.(CompareDeleter)
	return incr && cmp
}

type nonAtomic struct {
	store Store
}

// NonAtomic returns a Store that forwards to s but exposes neither Incrementer
// nor CompareDeleter, even when s implements them.
func NonAtomic(s Store) Store {
	return nonAtomic{store: s}
}

func (n nonAtomic) Get(ctx context.Context, key string) (string, error) {
	return n.store.Get(ctx, key)
}

func (n nonAtomic) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return n.store.SetWithTTL(ctx, key, value, ttl)
}

func (n nonAtomic) Delete(ctx context.Context, keys ...string) error {
	return n.store.Delete(ctx, keys...)
}
