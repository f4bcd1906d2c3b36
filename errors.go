package phoneAuth

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/phoneAuth/password"
)

var (
	// ErrUnauthorized is an exported constant or variable used by the authentication engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrQuotaExceeded is an exported constant or variable used by the authentication engine.
	ErrQuotaExceeded = errors.New("daily code quota exceeded")
	// ErrWrongCode is an exported constant or variable used by the authentication engine.
	ErrWrongCode = errors.New("wrong verification code")
	// ErrWrongPassword is an exported constant or variable used by the authentication engine.
	ErrWrongPassword = errors.New("wrong phone or password")
	// ErrLocked is an exported constant or variable used by the authentication engine.
	ErrLocked = errors.New("too many failed attempts")
	// ErrPasswordPolicy is an exported constant or variable used by the authentication engine.
	ErrPasswordPolicy = password.ErrPolicy
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoPassword is an exported constant or variable used by the authentication engine.
	ErrNoPassword = errors.New("password not set for account")
	// ErrInvalidPhone is an exported constant or variable used by the authentication engine.
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrCounterUnavailable is an exported constant or variable used by the authentication engine.
	ErrCounterUnavailable = errors.New("counter store unavailable")
	// ErrCodeDeliveryFailed is an exported constant or variable used by the authentication engine.
	ErrCodeDeliveryFailed = errors.New("verification code delivery failed")
	// ErrSessionIssueFailed is an exported constant or variable used by the authentication engine.
	ErrSessionIssueFailed = errors.New("session issue failed")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// AttemptError carries the attempt budget left after a throttled operation.
//
// Kind is one of ErrWrongCode, ErrWrongPassword, ErrLocked or
// ErrQuotaExceeded, so errors.Is(err, ErrLocked) works on the wrapped value.
// Remaining is zero for ErrLocked and ErrQuotaExceeded.
type AttemptError struct {
	Kind      error
	Remaining int
}

func (e *AttemptError) Error() string {
	if e == nil || e.Kind == nil {
		return "attempt rejected"
	}
	if e.Remaining > 0 {
		return fmt.Sprintf("%s (%d attempts remaining)", e.Kind.Error(), e.Remaining)
	}
	return e.Kind.Error()
}

func (e *AttemptError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// RemainingAttempts extracts the remaining attempt count from err. The bool is
// false when err does not carry one.
func RemainingAttempts(err error) (int, bool) {
	var attempt *AttemptError
	if errors.As(err, &attempt) {
		return attempt.Remaining, true
	}
	return 0, false
}

func newAttemptError(kind error, remaining int) error {
	if remaining < 0 {
		remaining = 0
	}
	return &AttemptError{Kind: kind, Remaining: remaining}
}
