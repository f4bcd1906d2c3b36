package counter

import (
	"context"
	"time"
)

type prefixed struct {
	store  Store
	prefix string
}

type prefixedIncr struct {
	incr   Incrementer
	prefix string
}

type prefixedCompare struct {
	cmp    CompareDeleter
	prefix string
}

type prefixedIncrementer struct {
	prefixed
	prefixedIncr
}

type prefixedCompareDeleter struct {
	prefixed
	prefixedCompare
}

type prefixedAtomic struct {
	prefixed
	prefixedIncr
	prefixedCompare
}

// WithPrefix namespaces every key written through s. The returned store
// implements Incrementer and CompareDeleter exactly when s does.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	p := prefixed{store: s, prefix: prefix}
	incr, hasIncr := s.(Incrementer)
	cmp, hasCmp := s.(CompareDeleter)
	switch {
	case hasIncr && hasCmp:
		return prefixedAtomic{
			prefixed:        p,
			prefixedIncr:    prefixedIncr{incr: incr, prefix: prefix},
			prefixedCompare: prefixedCompare{cmp: cmp, prefix: prefix},
		}
	case hasIncr:
		return prefixedIncrementer{prefixed: p, prefixedIncr: prefixedIncr{incr: incr, prefix: prefix}}
	case hasCmp:
		return prefixedCompareDeleter{prefixed: p, prefixedCompare: prefixedCompare{cmp: cmp, prefix: prefix}}
	}
	return p
}

func (p prefixed) Get(ctx context.Context, key string) (string, error) {
	return p.store.Get(ctx, p.prefix+key)
}

func (p prefixed) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return p.store.SetWithTTL(ctx, p.prefix+key, value, ttl)
}

func (p prefixed) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.prefix + k
	}
	return p.store.Delete(ctx, full...)
}

func (p prefixedIncr) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return p.incr.IncrWithTTL(ctx, p.prefix+key, ttl)
}

func (p prefixedCompare) DeleteIfEqual(ctx context.Context, key, value string) (bool, error) {
	return p.cmp.DeleteIfEqual(ctx, p.prefix+key, value)
}
