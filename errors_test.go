package phoneAuth

import (
	"errors"
	"fmt"
	"testing"
)

func TestAttemptErrorUnwrapsKind(t *testing.T) {
	err := newAttemptError(ErrWrongCode, 3)
	if !errors.Is(err, ErrWrongCode) {
		t.Fatalf("expected ErrWrongCode, got %v", err)
	}
	if errors.Is(err, ErrLocked) {
		t.Fatal("wrong code must not match ErrLocked")
	}

	wrapped := fmt.Errorf("login: %w", err)
	remaining, ok := RemainingAttempts(wrapped)
	if !ok || remaining != 3 {
		t.Fatalf("expected 3 remaining through wrapping, got %d ok=%v", remaining, ok)
	}
	if got := err.Error(); got != "wrong verification code (3 attempts remaining)" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAttemptErrorLockedHasZeroRemaining(t *testing.T) {
	err := newAttemptError(ErrLocked, -2)
	remaining, ok := RemainingAttempts(err)
	if !ok || remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d ok=%v", remaining, ok)
	}
	if err.Error() != ErrLocked.Error() {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRemainingAttemptsAbsent(t *testing.T) {
	if _, ok := RemainingAttempts(ErrNoPassword); ok {
		t.Fatal("plain sentinel should not carry remaining attempts")
	}
	if _, ok := RemainingAttempts(nil); ok {
		t.Fatal("nil should not carry remaining attempts")
	}
}
