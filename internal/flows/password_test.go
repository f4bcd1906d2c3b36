package flows

import (
	"context"
	"errors"
	"testing"
)

func passwordDeps(r *recorder, ledger *fakeLedger, users *fakeUsers) PasswordDeps {
	return PasswordDeps{
		Hooks: r.hooks(),
		CheckPolicy: func(pw string) error {
			if len(pw) < 6 || len(pw) > 12 {
				return errPolicy
			}
			return nil
		},
		Gate:            ledger.gate(),
		FindUser:        users.find,
		CreateUser:      users.create,
		HashPassword:    fakeHash,
		SetPasswordHash: users.setHash,
		IssueToken:      issueFake,
		Metrics: PasswordMetrics{
			Set:            40,
			Reset:          41,
			PolicyRejected: 42,
			AccountCreated: 43,
			SessionIssued:  44,
		},
		Events: PasswordEvents{Set: "password_set", Reset: "password_reset", AccountCreated: "account_created"},
		Errors: testErrors(),
	}
}

func TestRunSetPasswordPolicyRejectsBeforeGate(t *testing.T) {
	r := newRecorder()
	ledger := newFakeLedger()
	deps := passwordDeps(r, ledger, newFakeUsers())
	ledger.codes["919876543210"] = "111111"

	_, err := RunSetPassword(context.Background(), "919876543210", "111111", "abc", deps)
	if !errors.Is(err, errPolicy) {
		t.Fatalf("expected policy error, got %v", err)
	}
	if ledger.consumed != 0 || len(ledger.failures) != 0 {
		t.Fatal("policy rejection must not touch the code or failure counter")
	}
	if ledger.codes["919876543210"] != "111111" {
		t.Fatal("code must survive a policy rejection")
	}
}

func TestRunSetPasswordCreatesAccountAndLogsIn(t *testing.T) {
	r := newRecorder()
	ledger := newFakeLedger()
	users := newFakeUsers()
	deps := passwordDeps(r, ledger, users)
	ledger.codes["919876543210"] = "111111"

	session, err := RunSetPassword(context.Background(), "919876543210", "111111", "abc123", deps)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if session.Token == "" || session.User.PasswordHash != "v2:abc123" {
		t.Fatalf("unexpected session %+v", session)
	}
	if users.users["919876543210"].PasswordHash != "v2:abc123" {
		t.Fatal("expected stored hash")
	}
	if !r.hasEvent("account_created") || !r.hasEvent("password_set") {
		t.Fatalf("expected account and password events, got %v", r.events)
	}

	if _, err := RunSetPassword(context.Background(), "919876543210", "111111", "abc123", deps); !errors.Is(err, errWrongCode) {
		t.Fatalf("expected consumed code to be rejected, got %v", err)
	}
}

func TestRunSetPasswordWrongCode(t *testing.T) {
	r := newRecorder()
	ledger := newFakeLedger()
	users := newFakeUsers()
	deps := passwordDeps(r, ledger, users)
	ledger.codes["919876543210"] = "111111"

	_, err := RunSetPassword(context.Background(), "919876543210", "999999", "abc123", deps)
	if !errors.Is(err, errWrongCode) {
		t.Fatalf("expected wrong code, got %v", err)
	}
	if remainingOf(t, err) != 4 {
		t.Fatal("expected 4 remaining")
	}
	if len(users.users) != 0 {
		t.Fatal("account must not be created on a wrong code")
	}
}

func TestRunResetPasswordUnknownAccountAfterGate(t *testing.T) {
	r := newRecorder()
	ledger := newFakeLedger()
	deps := passwordDeps(r, ledger, newFakeUsers())

	// Without a valid code the caller learns nothing about the account.
	err := RunResetPassword(context.Background(), "919876543210", "111111", "abc123", deps)
	if !errors.Is(err, errWrongCode) {
		t.Fatalf("expected wrong code, got %v", err)
	}

	ledger.codes["919876543210"] = "111111"
	err = RunResetPassword(context.Background(), "919876543210", "111111", "abc123", deps)
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRunResetPasswordReplacesHash(t *testing.T) {
	r := newRecorder()
	ledger := newFakeLedger()
	users := newFakeUsers()
	deps := passwordDeps(r, ledger, users)
	seedUser(users, "919876543210", "v2:old123")
	ledger.codes["919876543210"] = "111111"

	if err := RunResetPassword(context.Background(), "919876543210", "111111", "new123", deps); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got := users.users["919876543210"].PasswordHash; got != "v2:new123" {
		t.Fatalf("expected new hash, got %q", got)
	}
	if r.metrics[41] != 1 || !r.hasEvent("password_reset") {
		t.Fatalf("expected reset metric and event, got %v %v", r.metrics, r.events)
	}
	if r.metrics[44] != 0 {
		t.Fatal("reset must not issue a session")
	}
}

func TestRunResetPasswordPolicy(t *testing.T) {
	r := newRecorder()
	ledger := newFakeLedger()
	deps := passwordDeps(r, ledger, newFakeUsers())

	err := RunResetPassword(context.Background(), "919876543210", "111111", "thirteen-char", deps)
	if !errors.Is(err, errPolicy) {
		t.Fatalf("expected policy error, got %v", err)
	}
	if ledger.consumed != 0 {
		t.Fatal("policy rejection must not consume the code")
	}
	if r.metrics[42] != 1 {
		t.Fatalf("expected policy metric, got %v", r.metrics)
	}
}
