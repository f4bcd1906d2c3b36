package phoneAuth

import (
	"context"
	"errors"

	"github.com/MrEthical07/phoneAuth/internal/flows"
	"github.com/MrEthical07/phoneAuth/internal/limiters"
)

// PasswordFailureKey returns the counter store key that counts failed
// password logins for a normalized phone.
func PasswordFailureKey(phone string) string {
	return "pwd-fail:" + phone
}

// LoginWithPassword verifies password for phone and returns a session.
//
// An unknown phone and a wrong password are indistinguishable: both cost one
// argon2 verification, both count a failure and both return ErrWrongPassword
// with the attempts left, then ErrLocked. An account that never set a
// password returns ErrNoPassword without counting a failure.
func (e *Engine) LoginWithPassword(ctx context.Context, phone, password string) (*LoginResult, error) {
	if e == nil || e.passwordHash == nil || e.loginGuard == nil {
		return nil, ErrEngineNotReady
	}

	session, err := flows.RunLoginPassword(ctx, phone, password, e.loginPasswordFlowDeps())
	if err != nil {
		return nil, err
	}
	return loginResult(session), nil
}

// SetPassword proves ownership of phone with code, stores password and
// returns a session. The account is created if it does not exist.
//
// The password policy is checked before the code: a rejected password
// returns ErrPasswordPolicy and leaves the code and its failure counter as
// they were, so the same code can be retried with a compliant password.
// ResetPassword keeps the same order. Do not move the policy check behind
// the OTP gate: a policy rejection must never spend a valid code.
func (e *Engine) SetPassword(ctx context.Context, phone, code, password string) (*LoginResult, error) {
	if e == nil || e.ledger == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	session, err := flows.RunSetPassword(ctx, phone, code, password, e.passwordFlowDeps())
	if err != nil {
		return nil, err
	}
	return loginResult(session), nil
}

// ResetPassword proves ownership of phone with code and replaces the password
// of the existing account. It returns ErrUserNotFound only after a valid code
// was consumed.
func (e *Engine) ResetPassword(ctx context.Context, phone, code, newPassword string) error {
	if e == nil || e.ledger == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}
	return flows.RunResetPassword(ctx, phone, code, newPassword, e.passwordFlowDeps())
}

func (e *Engine) recordPasswordFailure(ctx context.Context, phone string) (int, bool, error) {
	remaining, err := e.loginGuard.RecordFailure(ctx, PasswordFailureKey(phone), e.config.Login.FailureTTL, e.config.Login.MaxFailures)
	if errors.Is(err, limiters.ErrFailureLimitReached) {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return remaining, false, nil
}

func (e *Engine) clearPasswordFailures(ctx context.Context, phone string) error {
	return e.loginGuard.Clear(ctx, PasswordFailureKey(phone))
}

func (e *Engine) verifyDecoy(password string) {
	if err := e.passwordHash.VerifyDecoy(password); err != nil {
		e.warn("phoneauth: decoy verification failed", "error", err)
	}
}

func (e *Engine) loginPasswordFlowDeps() flows.LoginPasswordDeps {
	return flows.LoginPasswordDeps{
		Hooks:           e.flowHooks(),
		UpgradeOnLogin:  e.config.Password.UpgradeOnLogin,
		FindUser:        e.findUser,
		VerifyPassword:  e.passwordHash.Verify,
		VerifyDecoy:     e.verifyDecoy,
		RecordFailure:   e.recordPasswordFailure,
		ClearFailures:   e.clearPasswordFailures,
		NeedsUpgrade:    e.passwordHash.NeedsUpgrade,
		HashPassword:    e.passwordHash.Hash,
		SetPasswordHash: e.userProvider.SetPasswordHash,
		IssueToken:      e.issueToken,
		Metrics: flows.LoginPasswordMetrics{
			Success:            int(MetricPasswordLoginSuccess),
			Failure:            int(MetricPasswordLoginFailure),
			Locked:             int(MetricPasswordLoginLocked),
			NoPassword:         int(MetricPasswordLoginNoPassword),
			HashUpgraded:       int(MetricPasswordHashUpgraded),
			SessionIssued:      int(MetricSessionIssued),
			CounterUnavailable: int(MetricCounterUnavailable),
			Latency:            int(MetricLoginPasswordLatency),
		},
		Events: flows.LoginPasswordEvents{
			Success: auditEventPasswordLoginSuccess,
			Failure: auditEventPasswordLoginFailure,
			Locked:  auditEventPasswordLoginLocked,
		},
		Errors: flowErrors(),
	}
}

func (e *Engine) passwordFlowDeps() flows.PasswordDeps {
	return flows.PasswordDeps{
		Hooks:           e.flowHooks(),
		CheckPolicy:     e.policy.Check,
		Gate:            e.otpGate(),
		FindUser:        e.findUser,
		CreateUser:      e.createUser,
		HashPassword:    e.passwordHash.Hash,
		SetPasswordHash: e.userProvider.SetPasswordHash,
		IssueToken:      e.issueToken,
		Metrics: flows.PasswordMetrics{
			Set:            int(MetricPasswordSet),
			Reset:          int(MetricPasswordReset),
			PolicyRejected: int(MetricPasswordPolicyRejected),
			AccountCreated: int(MetricAccountCreated),
			SessionIssued:  int(MetricSessionIssued),
		},
		Events: flows.PasswordEvents{
			Set:            auditEventPasswordSet,
			Reset:          auditEventPasswordReset,
			AccountCreated: auditEventAccountCreated,
		},
		Errors: flowErrors(),
	}
}
