package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/phoneAuth/internal/otp"
)

// User is the flow-local account record.
type User struct {
	UserID       string
	Phone        string
	PasswordHash string
}

// Session is the flow-local result of a successful login.
type Session struct {
	Token string
	User  User
}

// Errors carries host-level sentinel errors returned by flows.
type Errors struct {
	EngineNotReady     error
	QuotaExceeded      error
	WrongCode          error
	WrongPassword      error
	Locked             error
	UserNotFound       error
	NoPassword         error
	CounterUnavailable error
	CodeDeliveryFailed error
	SessionIssueFailed error
}

// Hooks groups the side channels every flow reports through.
type Hooks struct {
	Now       func() time.Time
	MetricInc func(int)
	Observe   func(int, time.Duration)
	EmitAudit func(ctx context.Context, event string, success bool, userID, phone string, err error, meta func() map[string]string)
	Warn      func(string, ...any)

	// Attempt wraps kind with the remaining attempt count.
	Attempt func(kind error, remaining int) error
	// NormalizePhone returns the canonical phone or the host's invalid-phone error.
	NormalizePhone func(string) (string, error)
}

func normalizeHooks(h Hooks) Hooks {
	if h.Now == nil {
		h.Now = time.Now
	}
	if h.MetricInc == nil {
		h.MetricInc = func(int) {}
	}
	if h.Observe == nil {
		h.Observe = func(int, time.Duration) {}
	}
	if h.EmitAudit == nil {
		h.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if h.Warn == nil {
		h.Warn = func(string, ...any) {}
	}
	if h.Attempt == nil {
		h.Attempt = func(kind error, _ int) error { return kind }
	}
	if h.NormalizePhone == nil {
		h.NormalizePhone = func(s string) (string, error) { return s, nil }
	}
	return h
}

// OTPGate consumes a code on behalf of a flow.
//
// Consume reports through the otp ledger errors: otp.ErrWrongCode with the
// attempts left, otp.ErrLocked, or anything else as a backend failure.
type OTPGate struct {
	Consume func(ctx context.Context, phone, code string) (int, error)

	FailureMetric     int
	LockedMetric      int
	UnavailableMetric int
	FailureEvent      string
	LockedEvent       string
}

func (g OTPGate) pass(ctx context.Context, phone, code, flow string, h Hooks, errs Errors) error {
	if g.Consume == nil {
		return errs.EngineNotReady
	}

	remaining, err := g.Consume(ctx, phone, code)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, otp.ErrWrongCode):
		wrapped := h.Attempt(errs.WrongCode, remaining)
		h.MetricInc(g.FailureMetric)
		h.EmitAudit(ctx, g.FailureEvent, false, "", phone, wrapped, func() map[string]string {
			return map[string]string{
				"flow":      flow,
				"remaining": fmt.Sprint(remaining),
			}
		})
		return wrapped
	case errors.Is(err, otp.ErrLocked):
		wrapped := h.Attempt(errs.Locked, 0)
		h.MetricInc(g.LockedMetric)
		h.EmitAudit(ctx, g.LockedEvent, false, "", phone, wrapped, func() map[string]string {
			return map[string]string{
				"flow": flow,
			}
		})
		return wrapped
	default:
		h.MetricInc(g.UnavailableMetric)
		h.Warn("phoneauth: otp ledger unavailable", "flow", flow, "error", err)
		return fmt.Errorf("%w: %v", errs.CounterUnavailable, err)
	}
}

// lookupOrCreate returns the account for phone, creating it when absent.
// The bool reports whether a new account was created.
func lookupOrCreate(
	ctx context.Context,
	phone string,
	find func(context.Context, string) (User, error),
	create func(context.Context, string) (User, error),
	notFound error,
) (User, bool, error) {
	user, err := find(ctx, phone)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, notFound) {
		return User{}, false, err
	}

	user, err = create(ctx, phone)
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

func issueSession(
	ctx context.Context,
	user User,
	issue func(context.Context, User) (string, error),
	h Hooks,
	errs Errors,
	sessionMetric int,
) (Session, error) {
	token, err := issue(ctx, user)
	if err != nil {
		h.Warn("phoneauth: session token issue failed", "error", err)
		return Session{}, fmt.Errorf("%w: %v", errs.SessionIssueFailed, err)
	}
	h.MetricInc(sessionMetric)
	return Session{Token: token, User: user}, nil
}
