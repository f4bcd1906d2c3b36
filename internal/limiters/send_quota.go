package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/phoneAuth/internal/rate"
)

// SendQuotaConfig holds the daily code issuance cap.
type SendQuotaConfig struct {
	Limit int
	TTL   time.Duration
}

var (
	// ErrSendQuotaUnavailable indicates the send quota backend is unreachable.
	ErrSendQuotaUnavailable = errors.New("send quota backend unavailable")
)

// SendQuota counts code issuances per phone per calendar day.
type SendQuota struct {
	counter *rate.Counter
	config  SendQuotaConfig
}

// NewSendQuota creates a daily quota limiter.
func NewSendQuota(counter *rate.Counter, cfg SendQuotaConfig) *SendQuota {
	return &SendQuota{counter: counter, config: cfg}
}

// Key returns the counter key for phone on day (formatted YYYYMMDD).
func (q *SendQuota) Key(phone, day string) string {
	return "otp-sends:" + phone + ":" + day
}

// Limit returns the configured cap.
func (q *SendQuota) Limit() int {
	if q == nil {
		return 0
	}
	return q.config.Limit
}

// Atomic reports whether Consume is an atomic increment.
func (q *SendQuota) Atomic() bool {
	return q != nil && q.counter.Atomic()
}

// Used returns how many codes were issued to phone on day.
func (q *SendQuota) Used(ctx context.Context, phone, day string) (int, error) {
	if q == nil {
		return 0, nil
	}
	n, err := q.counter.Count(ctx, q.Key(phone, day))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSendQuotaUnavailable, err)
	}
	return n, nil
}

// Consume records one issuance and re-arms the quota TTL. It returns the
// new count, which may exceed Limit when callers charge before checking.
func (q *SendQuota) Consume(ctx context.Context, phone, day string) (int, error) {
	if q == nil {
		return 0, nil
	}
	n, err := q.counter.Increment(ctx, q.Key(phone, day), q.config.TTL)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSendQuotaUnavailable, err)
	}
	return n, nil
}
