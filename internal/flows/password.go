package flows

import (
	"context"
	"fmt"
)

// PasswordMetrics carries metric IDs needed by the set and reset flows.
type PasswordMetrics struct {
	Set            int
	Reset          int
	PolicyRejected int
	AccountCreated int
	SessionIssued  int
}

// PasswordEvents carries audit event names used by the set and reset flows.
type PasswordEvents struct {
	Set            string
	Reset          string
	AccountCreated string
}

// PasswordDeps captures set and reset password dependencies.
type PasswordDeps struct {
	Hooks

	// CheckPolicy returns the host policy error for a rejected password.
	CheckPolicy     func(password string) error
	Gate            OTPGate
	FindUser        func(ctx context.Context, phone string) (User, error)
	CreateUser      func(ctx context.Context, phone string) (User, error)
	HashPassword    func(password string) (string, error)
	SetPasswordHash func(ctx context.Context, userID, hash string) error
	IssueToken      func(ctx context.Context, user User) (string, error)

	Metrics PasswordMetrics
	Events  PasswordEvents
	Errors  Errors
}

func (d PasswordDeps) ready() bool {
	return d.CheckPolicy != nil &&
		d.FindUser != nil &&
		d.HashPassword != nil &&
		d.SetPasswordHash != nil
}

// RunSetPassword proves ownership of rawPhone with code, stores password and
// opens a session. The account is created when it does not exist yet.
//
// A password rejected by policy returns before the code is looked at, so
// neither the code nor the failure counter is touched.
func RunSetPassword(ctx context.Context, rawPhone, code, password string, deps PasswordDeps) (Session, error) {
	deps.Hooks = normalizeHooks(deps.Hooks)
	if !deps.ready() || deps.CreateUser == nil || deps.IssueToken == nil {
		return Session{}, deps.Errors.EngineNotReady
	}

	phone, err := deps.NormalizePhone(rawPhone)
	if err != nil {
		return Session{}, err
	}
	// Policy before the gate: a rejected password must not spend the code.
	if err := deps.CheckPolicy(password); err != nil {
		deps.MetricInc(deps.Metrics.PolicyRejected)
		return Session{}, err
	}

	if err := deps.Gate.pass(ctx, phone, code, "set_password", deps.Hooks, deps.Errors); err != nil {
		return Session{}, err
	}

	hash, err := deps.HashPassword(password)
	password = ""
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, created, err := lookupOrCreate(ctx, phone, deps.FindUser, deps.CreateUser, deps.Errors.UserNotFound)
	if err != nil {
		return Session{}, err
	}
	if created {
		deps.MetricInc(deps.Metrics.AccountCreated)
		deps.EmitAudit(ctx, deps.Events.AccountCreated, true, user.UserID, phone, nil, nil)
	}

	if err := deps.SetPasswordHash(ctx, user.UserID, hash); err != nil {
		return Session{}, err
	}
	user.PasswordHash = hash

	deps.MetricInc(deps.Metrics.Set)
	deps.EmitAudit(ctx, deps.Events.Set, true, user.UserID, phone, nil, nil)

	return issueSession(ctx, user, deps.IssueToken, deps.Hooks, deps.Errors, deps.Metrics.SessionIssued)
}

// RunResetPassword proves ownership of rawPhone with code and replaces the
// password of its existing account. No session is issued.
//
// The account lookup runs after the code check, so an unknown phone is only
// reported to a caller holding a valid code.
func RunResetPassword(ctx context.Context, rawPhone, code, password string, deps PasswordDeps) error {
	deps.Hooks = normalizeHooks(deps.Hooks)
	if !deps.ready() {
		return deps.Errors.EngineNotReady
	}

	phone, err := deps.NormalizePhone(rawPhone)
	if err != nil {
		return err
	}
	if err := deps.CheckPolicy(password); err != nil {
		deps.MetricInc(deps.Metrics.PolicyRejected)
		return err
	}

	if err := deps.Gate.pass(ctx, phone, code, "reset_password", deps.Hooks, deps.Errors); err != nil {
		return err
	}

	user, err := deps.FindUser(ctx, phone)
	if err != nil {
		return err
	}

	hash, err := deps.HashPassword(password)
	password = ""
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := deps.SetPasswordHash(ctx, user.UserID, hash); err != nil {
		return err
	}

	deps.MetricInc(deps.Metrics.Reset)
	deps.EmitAudit(ctx, deps.Events.Reset, true, user.UserID, phone, nil, nil)
	return nil
}
