package flows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MrEthical07/phoneAuth/internal/otp"
)

var (
	errNotReady    = errors.New("not ready")
	errQuota       = errors.New("quota")
	errWrongCode   = errors.New("wrong code")
	errWrongPass   = errors.New("wrong password")
	errLocked      = errors.New("locked")
	errNotFound    = errors.New("not found")
	errNoPassword  = errors.New("no password")
	errUnavailable = errors.New("unavailable")
	errDelivery    = errors.New("delivery")
	errSession     = errors.New("session")
	errPolicy      = errors.New("policy")
	errPhone       = errors.New("phone")
)

func testErrors() Errors {
	return Errors{
		EngineNotReady:     errNotReady,
		QuotaExceeded:      errQuota,
		WrongCode:          errWrongCode,
		WrongPassword:      errWrongPass,
		Locked:             errLocked,
		UserNotFound:       errNotFound,
		NoPassword:         errNoPassword,
		CounterUnavailable: errUnavailable,
		CodeDeliveryFailed: errDelivery,
		SessionIssueFailed: errSession,
	}
}

type attemptErr struct {
	kind      error
	remaining int
}

func (a *attemptErr) Error() string { return fmt.Sprintf("%v (%d)", a.kind, a.remaining) }
func (a *attemptErr) Unwrap() error { return a.kind }

type recorder struct {
	mu      sync.Mutex
	metrics map[int]int
	events  []string
	warns   int
}

func newRecorder() *recorder {
	return &recorder{metrics: map[int]int{}}
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		MetricInc: func(id int) {
			r.mu.Lock()
			r.metrics[id]++
			r.mu.Unlock()
		},
		EmitAudit: func(_ context.Context, event string, _ bool, _, _ string, _ error, meta func() map[string]string) {
			if meta != nil {
				_ = meta()
			}
			r.mu.Lock()
			r.events = append(r.events, event)
			r.mu.Unlock()
		},
		Warn: func(string, ...any) {
			r.mu.Lock()
			r.warns++
			r.mu.Unlock()
		},
		Attempt: func(kind error, remaining int) error {
			return &attemptErr{kind: kind, remaining: remaining}
		},
		NormalizePhone: func(s string) (string, error) {
			if s == "" {
				return "", errPhone
			}
			return s, nil
		},
	}
}

func (r *recorder) hasEvent(name string) bool {
	for _, e := range r.events {
		if e == name {
			return true
		}
	}
	return false
}

func remainingOf(t *testing.T, err error) int {
	t.Helper()
	var a *attemptErr
	if !errors.As(err, &a) {
		t.Fatalf("expected attempt error, got %v", err)
	}
	return a.remaining
}

// fakeLedger mimics otp.Ledger.Consume over a single code per phone.
type fakeLedger struct {
	codes    map[string]string
	failures map[string]int
	limit    int
	down     bool
	consumed int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{codes: map[string]string{}, failures: map[string]int{}, limit: 5}
}

func (l *fakeLedger) consume(_ context.Context, phone, code string) (int, error) {
	l.consumed++
	if l.down {
		return 0, fmt.Errorf("%w: dial tcp", otp.ErrUnavailable)
	}
	if stored, ok := l.codes[phone]; ok && stored == code {
		delete(l.codes, phone)
		delete(l.failures, phone)
		return l.limit, nil
	}
	l.failures[phone]++
	if l.failures[phone] >= l.limit {
		delete(l.failures, phone)
		delete(l.codes, phone)
		return 0, otp.ErrLocked
	}
	return l.limit - l.failures[phone], otp.ErrWrongCode
}

func (l *fakeLedger) gate() OTPGate {
	return OTPGate{
		Consume:           l.consume,
		FailureMetric:     1,
		LockedMetric:      2,
		UnavailableMetric: 3,
		FailureEvent:      "otp_failure",
		LockedEvent:       "otp_locked",
	}
}

type fakeUsers struct {
	mu     sync.Mutex
	users  map[string]User
	nextID int
	down   bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]User{}}
}

func (u *fakeUsers) find(_ context.Context, phone string) (User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.down {
		return User{}, errors.New("db down")
	}
	user, ok := u.users[phone]
	if !ok {
		return User{}, fmt.Errorf("%w: %s", errNotFound, phone)
	}
	return user, nil
}

func (u *fakeUsers) create(_ context.Context, phone string) (User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if user, ok := u.users[phone]; ok {
		return user, nil
	}
	u.nextID++
	user := User{UserID: fmt.Sprintf("u%d", u.nextID), Phone: phone}
	u.users[phone] = user
	return user, nil
}

func (u *fakeUsers) setHash(_ context.Context, userID, hash string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for phone, user := range u.users {
		if user.UserID == userID {
			user.PasswordHash = hash
			u.users[phone] = user
			return nil
		}
	}
	return errNotFound
}

func issueFake(_ context.Context, user User) (string, error) {
	return "token-" + user.UserID, nil
}
