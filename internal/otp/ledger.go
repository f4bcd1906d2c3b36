package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/phoneAuth/internal"
	"github.com/MrEthical07/phoneAuth/internal/limiters"
	"github.com/MrEthical07/phoneAuth/internal/stores"
)

// Config holds ledger thresholds.
type Config struct {
	CodeLength  int
	CodeTTL     time.Duration
	MaxFailures int
	// FailureTTL is the failure counter window. Zero means CodeTTL.
	FailureTTL time.Duration
	// Location fixes the calendar used for the daily quota. Nil means UTC.
	Location *time.Location
}

var (
	// ErrQuotaExceeded means the daily send cap for the phone is used up.
	ErrQuotaExceeded = errors.New("otp send quota exceeded")
	// ErrWrongCode means the candidate did not match a live code.
	ErrWrongCode = errors.New("otp code mismatch")
	// ErrLocked means the failure limit was reached and the code was purged.
	ErrLocked = errors.New("otp attempts exhausted")
	// ErrUnavailable wraps counter store failures.
	ErrUnavailable = errors.New("otp ledger unavailable")
)

// Ledger issues and consumes one-time codes.
type Ledger struct {
	codes    *stores.CodeStore
	quota    *limiters.SendQuota
	guard    *limiters.FailureGuard
	config   Config
	now      func() time.Time
	generate func(int) (string, error)
}

// NewLedger wires a ledger. A nil now uses time.Now.
func NewLedger(codes *stores.CodeStore, quota *limiters.SendQuota, guard *limiters.FailureGuard, cfg Config, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.FailureTTL <= 0 {
		cfg.FailureTTL = cfg.CodeTTL
	}
	return &Ledger{
		codes:    codes,
		quota:    quota,
		guard:    guard,
		config:   cfg,
		now:      now,
		generate: internal.NewOTP,
	}
}

// Day returns the quota day of t, formatted YYYYMMDD in the ledger's zone.
func (l *Ledger) Day(t time.Time) string {
	return t.In(l.config.Location).Format("20060102")
}

// FailureKey returns the failure counter key for phone.
func (l *Ledger) FailureKey(phone string) string {
	return "otp-fail:" + phone
}

// Issue generates and stores a new code for phone, replacing any live one.
// It returns the code and how many more codes phone may receive today.
//
// The quota is charged before a code exists. On an atomic store the charge is
// the check, so concurrent callers can never be issued more than the daily
// limit; requests over the limit still bump the stored count, which reads
// back as exhausted. Non-atomic stores check first and accept the race.
func (l *Ledger) Issue(ctx context.Context, phone string) (string, int, error) {
	day := l.Day(l.now())
	limit := l.quota.Limit()

	if !l.quota.Atomic() {
		used, err := l.quota.Used(ctx, phone, day)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if used >= limit {
			return "", 0, ErrQuotaExceeded
		}
	}

	count, err := l.quota.Consume(ctx, phone, day)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count > limit {
		return "", 0, ErrQuotaExceeded
	}

	code, err := l.generate(l.config.CodeLength)
	if err != nil {
		return "", 0, err
	}
	if err := l.codes.Save(ctx, phone, code, l.config.CodeTTL); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return code, limit - count, nil
}

// Consume checks candidate against the live code of phone.
//
// On a match the code and the failure counter are deleted and nil is
// returned. Only one of several concurrent callers with the right code wins
// when the store supports compare-and-delete. On an absent code or a mismatch one failure is recorded: the
// result is ErrWrongCode with the attempts left, or ErrLocked once the limit
// is reached, in which case the code has been purged as well.
func (l *Ledger) Consume(ctx context.Context, phone, candidate string) (int, error) {
	ok, err := l.codes.Redeem(ctx, phone, candidate)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !ok {
		remaining, err := l.guard.RecordFailure(ctx, l.FailureKey(phone), l.config.FailureTTL, l.config.MaxFailures, l.codes.Key(phone))
		if err != nil {
			if errors.Is(err, limiters.ErrFailureLimitReached) {
				return 0, ErrLocked
			}
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return remaining, ErrWrongCode
	}

	if err := l.guard.Clear(ctx, l.FailureKey(phone)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return l.config.MaxFailures, nil
}
