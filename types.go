package phoneAuth

import (
	"context"
)

// UserProvider is the interface callers implement to connect phoneAuth to
// their user database. A phone identifies at most one account.
//
// FindByPhone returns ErrUserNotFound (or an error wrapping it) when no
// account exists. CreateWithPhone must be idempotent: a second call for the
// same phone returns the existing record.
type UserProvider interface {
	FindByPhone(ctx context.Context, phone string) (UserRecord, error)
	CreateWithPhone(ctx context.Context, phone string) (UserRecord, error)
	SetPasswordHash(ctx context.Context, userID string, hash string) error
}

// UserRecord is the account record returned by [UserProvider]. PasswordHash
// is empty until the user sets a password.
type UserRecord struct {
	UserID       string
	Phone        string
	PasswordHash string
}

// User is the public part of a [UserRecord] returned to callers.
type User struct {
	ID          string `json:"id"`
	Phone       string `json:"phone"`
	HasPassword bool   `json:"hasPassword"`
}

// Signer issues session tokens. jwt.Manager implements it.
type Signer interface {
	Sign(subject, phone string) (string, error)
}

// CodeSender delivers a one-time code to a phone, typically over SMS.
type CodeSender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// SendOTPResult is returned by [Engine.SendOTP]. Remaining is the number of
// further codes the phone may request today.
type SendOTPResult struct {
	Remaining int
}

// LoginResult is returned by every flow that ends in a session.
type LoginResult struct {
	Token string
	User  User
}

// Identity is the verified content of a session token.
type Identity struct {
	UserID string
	Phone  string
}

func publicUser(r UserRecord) User {
	return User{
		ID:          r.UserID,
		Phone:       r.Phone,
		HasPassword: r.PasswordHash != "",
	}
}
