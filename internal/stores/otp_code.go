package stores

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/phoneAuth/counter"
)

var (
	// ErrCodeStoreUnavailable indicates the code store backend is unreachable.
	ErrCodeStoreUnavailable = errors.New("otp code store unavailable")
)

// CodeStore keeps the single live one-time code per phone.
type CodeStore struct {
	store counter.Store
	cmp   counter.CompareDeleter
}

// NewCodeStore creates a code store over store. Redeem is single-use under
// concurrency only when store implements counter.CompareDeleter.
func NewCodeStore(store counter.Store) *CodeStore {
	s := &CodeStore{store: store}
	if cmp, ok := store.(counter.CompareDeleter); ok {
		s.cmp = cmp
	}
	return s
}

// Atomic reports whether Redeem is a single compare-and-delete.
func (s *CodeStore) Atomic() bool {
	return s != nil && s.cmp != nil
}

// Key returns the storage key of the code for phone.
func (s *CodeStore) Key(phone string) string {
	return "otp:" + phone
}

// Save overwrites the live code for phone.
func (s *CodeStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := s.store.SetWithTTL(ctx, s.Key(phone), code, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrCodeStoreUnavailable, err)
	}
	return nil
}

// Match reports whether candidate equals the live code. An absent or expired
// code never matches. The comparison is constant time.
func (s *CodeStore) Match(ctx context.Context, phone, candidate string) (bool, error) {
	stored, err := s.store.Get(ctx, s.Key(phone))
	if err != nil {
		if errors.Is(err, counter.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrCodeStoreUnavailable, err)
	}
	if stored == "" || len(stored) != len(candidate) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1, nil
}

// Redeem deletes the live code of phone if it equals candidate and reports
// whether this call removed it. Of several concurrent callers holding the
// right code at most one wins on an atomic store; the fallback matches and
// then deletes, so concurrent callers may all win.
func (s *CodeStore) Redeem(ctx context.Context, phone, candidate string) (bool, error) {
	if candidate == "" {
		return false, nil
	}
	if s.cmp != nil {
		ok, err := s.cmp.DeleteIfEqual(ctx, s.Key(phone), candidate)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrCodeStoreUnavailable, err)
		}
		return ok, nil
	}

	ok, err := s.Match(ctx, phone, candidate)
	if err != nil || !ok {
		return false, err
	}
	if err := s.Delete(ctx, phone); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the live code for phone.
func (s *CodeStore) Delete(ctx context.Context, phone string) error {
	if err := s.store.Delete(ctx, s.Key(phone)); err != nil {
		return fmt.Errorf("%w: %v", ErrCodeStoreUnavailable, err)
	}
	return nil
}
