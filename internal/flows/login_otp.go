package flows

import (
	"context"
)

// LoginOTPMetrics carries metric IDs needed by the code login flow.
type LoginOTPMetrics struct {
	Success        int
	AccountCreated int
	SessionIssued  int
	Latency        int
}

// LoginOTPEvents carries audit event names used by the code login flow.
type LoginOTPEvents struct {
	Success        string
	AccountCreated string
}

// LoginOTPDeps captures code login dependencies.
type LoginOTPDeps struct {
	Hooks

	Gate       OTPGate
	FindUser   func(ctx context.Context, phone string) (User, error)
	CreateUser func(ctx context.Context, phone string) (User, error)
	IssueToken func(ctx context.Context, user User) (string, error)

	Metrics LoginOTPMetrics
	Events  LoginOTPEvents
	Errors  Errors
}

// RunLoginOTP verifies code for rawPhone and opens a session, creating the
// account on first login.
func RunLoginOTP(ctx context.Context, rawPhone, code string, deps LoginOTPDeps) (Session, error) {
	deps.Hooks = normalizeHooks(deps.Hooks)
	if deps.FindUser == nil || deps.CreateUser == nil || deps.IssueToken == nil {
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

	if err := deps.Gate.pass(ctx, phone, code, "login", deps.Hooks, deps.Errors); err != nil {
		return Session{}, err
	}

	user, created, err := lookupOrCreate(ctx, phone, deps.FindUser, deps.CreateUser, deps.Errors.UserNotFound)
	if err != nil {
		return Session{}, err
	}
	if created {
		deps.MetricInc(deps.Metrics.AccountCreated)
		deps.EmitAudit(ctx, deps.Events.AccountCreated, true, user.UserID, phone, nil, nil)
	}

	session, err := issueSession(ctx, user, deps.IssueToken, deps.Hooks, deps.Errors, deps.Metrics.SessionIssued)
	if err != nil {
		return Session{}, err
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, user.UserID, phone, nil, nil)
	return session, nil
}
