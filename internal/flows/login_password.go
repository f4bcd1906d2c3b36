package flows

import (
	"context"
	"errors"
	"fmt"
)

// LoginPasswordMetrics carries metric IDs needed by the password login flow.
type LoginPasswordMetrics struct {
	Success            int
	Failure            int
	Locked             int
	NoPassword         int
	HashUpgraded       int
	SessionIssued      int
	CounterUnavailable int
	Latency            int
}

// LoginPasswordEvents carries audit event names used by the password login flow.
type LoginPasswordEvents struct {
	Success string
	Failure string
	Locked  string
}

// LoginPasswordDeps captures password login dependencies.
type LoginPasswordDeps struct {
	Hooks

	UpgradeOnLogin bool

	FindUser       func(ctx context.Context, phone string) (User, error)
	VerifyPassword func(password, hash string) (bool, error)
	// VerifyDecoy spends one verification against a hash that never matches.
	VerifyDecoy func(password string)
	// RecordFailure counts one failure for phone and reports the attempts
	// left, or locked once the limit is reached.
	RecordFailure func(ctx context.Context, phone string) (remaining int, locked bool, err error)
	ClearFailures func(ctx context.Context, phone string) error

	NeedsUpgrade    func(hash string) (bool, error)
	HashPassword    func(password string) (string, error)
	SetPasswordHash func(ctx context.Context, userID, hash string) error
	IssueToken      func(ctx context.Context, user User) (string, error)

	Metrics LoginPasswordMetrics
	Events  LoginPasswordEvents
	Errors  Errors
}

// RunLoginPassword verifies password for rawPhone and opens a session.
//
// An unknown phone and a wrong password take the same path: one argon2
// verification, one recorded failure and the same error value.
func RunLoginPassword(ctx context.Context, rawPhone, password string, deps LoginPasswordDeps) (Session, error) {
	deps.Hooks = normalizeHooks(deps.Hooks)
	if deps.FindUser == nil ||
		deps.VerifyPassword == nil ||
		deps.VerifyDecoy == nil ||
		deps.RecordFailure == nil ||
		deps.ClearFailures == nil ||
		deps.IssueToken == nil {
		return Session{}, deps.Errors.EngineNotReady
	}

	start := deps.Now()
	defer func() {
		deps.Observe(deps.Metrics.Latency, deps.Now().Sub(start))
	}()

	phone, err := deps.NormalizePhone(rawPhone)
	if err != nil {
		return Session{}, err
	}

	user, err := deps.FindUser(ctx, phone)
	found := err == nil
	if err != nil && !errors.Is(err, deps.Errors.UserNotFound) {
		return Session{}, err
	}

	if found && user.PasswordHash == "" {
		deps.MetricInc(deps.Metrics.NoPassword)
		deps.EmitAudit(ctx, deps.Events.Failure, false, user.UserID, phone, deps.Errors.NoPassword, nil)
		return Session{}, deps.Errors.NoPassword
	}

	matched := false
	if found {
		ok, verr := deps.VerifyPassword(password, user.PasswordHash)
		if verr != nil {
			deps.Warn("phoneauth: stored password hash rejected", "user_id", user.UserID, "error", verr)
		}
		matched = verr == nil && ok
	} else {
		deps.VerifyDecoy(password)
	}

	if !matched {
		password = ""
		return Session{}, recordPasswordFailure(ctx, phone, user.UserID, deps)
	}

	if err := deps.ClearFailures(ctx, phone); err != nil {
		deps.Warn("phoneauth: password failure counter clear failed", "error", err)
	}

	if deps.UpgradeOnLogin {
		upgradePasswordHash(ctx, user, password, deps)
	}
	password = ""

	session, err := issueSession(ctx, user, deps.IssueToken, deps.Hooks, deps.Errors, deps.Metrics.SessionIssued)
	if err != nil {
		return Session{}, err
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, user.UserID, phone, nil, nil)
	return session, nil
}

func recordPasswordFailure(ctx context.Context, phone, userID string, deps LoginPasswordDeps) error {
	remaining, locked, err := deps.RecordFailure(ctx, phone)
	if err != nil {
		deps.MetricInc(deps.Metrics.CounterUnavailable)
		deps.Warn("phoneauth: password failure guard unavailable", "error", err)
		return fmt.Errorf("%w: %v", deps.Errors.CounterUnavailable, err)
	}

	if locked {
		wrapped := deps.Attempt(deps.Errors.Locked, 0)
		deps.MetricInc(deps.Metrics.Locked)
		deps.EmitAudit(ctx, deps.Events.Locked, false, userID, phone, wrapped, nil)
		return wrapped
	}

	wrapped := deps.Attempt(deps.Errors.WrongPassword, remaining)
	deps.MetricInc(deps.Metrics.Failure)
	deps.EmitAudit(ctx, deps.Events.Failure, false, userID, phone, wrapped, func() map[string]string {
		return map[string]string{
			"remaining": fmt.Sprint(remaining),
		}
	})
	return wrapped
}

func upgradePasswordHash(ctx context.Context, user User, password string, deps LoginPasswordDeps) {
	if deps.NeedsUpgrade == nil || deps.HashPassword == nil || deps.SetPasswordHash == nil {
		return
	}

	needsUpgrade, err := deps.NeedsUpgrade(user.PasswordHash)
	if err != nil || !needsUpgrade {
		return
	}

	upgraded, err := deps.HashPassword(password)
	if err != nil {
		deps.Warn("phoneauth: password hash upgrade generation failed", "user_id", user.UserID)
		return
	}
	if err := deps.SetPasswordHash(ctx, user.UserID, upgraded); err != nil {
		deps.Warn("phoneauth: password hash upgrade update failed", "user_id", user.UserID)
		return
	}
	deps.MetricInc(deps.Metrics.HashUpgraded)
}
