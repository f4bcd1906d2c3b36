package phoneAuth

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by phoneAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	OTP      OTPConfig
	Login    LoginConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Security SecurityConfig

	// KeyPrefix namespaces every counter store key, e.g. "pa:" gives "pa:otp:{phone}".
	KeyPrefix string
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls the session tokens returned by successful logins.
type JWTConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "hs256" (default), "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool
	MaxFutureIAT  time.Duration
	KeyID         string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines argon2id cost parameters and the character policy.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	MinLength int
	MaxLength int

	UpgradeOnLogin bool
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines code issuance limits.
//
// TimezoneOffset fixes the zone whose calendar day bounds DailyLimit; the
// default is UTC+8.
type OTPConfig struct {
	CodeLength     int
	CodeTTL        time.Duration
	DailyLimit     int
	QuotaTTL       time.Duration
	MaxFailures    int
	FailureTTL     time.Duration
	TimezoneOffset time.Duration
}

// LoginConfig defines the password login failure guard.
type LoginConfig struct {
	MaxFailures int
	FailureTTL  time.Duration
}

// AuditConfig defines a public type used by phoneAuth APIs.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by phoneAuth APIs.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// SecurityConfig defines a public type used by phoneAuth APIs.
//
// RequireAtomicCounters makes Build reject counter stores that do not
// implement both counter.Incrementer and counter.CompareDeleter.
// ProductionMode implies it.
type SecurityConfig struct {
	ProductionMode        bool
	RequireAtomicCounters bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the thresholds used by the phone login service:
// 6 digit codes valid for five minutes, five codes per day, five failures
// per five minute window for both codes and passwords.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     24 * time.Hour,
			SigningMethod: "hs256",
			MaxFutureIAT:  10 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			MinLength:      6,
			MaxLength:      12,
			UpgradeOnLogin: true,
		},
		OTP: OTPConfig{
			CodeLength:     6,
			CodeTTL:        5 * time.Minute,
			DailyLimit:     5,
			QuotaTTL:       24 * time.Hour,
			MaxFailures:    5,
			FailureTTL:     5 * time.Minute,
			TimezoneOffset: 8 * time.Hour,
		},
		Login: LoginConfig{
			MaxFailures: 5,
			FailureTTL:  5 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Security: SecurityConfig{
			ProductionMode:        false,
			RequireAtomicCounters: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// location returns the fixed zone used for the daily send quota.
func (c OTPConfig) location() *time.Location {
	if c.TimezoneOffset == 0 {
		return time.UTC
	}
	return time.FixedZone("", int(c.TimezoneOffset/time.Second))
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.SigningMethod != "ed25519" && c.JWT.SigningMethod != "hs256" {
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}
	if c.JWT.MaxFutureIAT < 0 || c.JWT.MaxFutureIAT > 24*time.Hour {
		return errors.New("JWT MaxFutureIAT must be between 0 and 24h")
	}
	if c.JWT.Audience != "" && strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("JWT Audience must not be blank")
	}

	// Password
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be > 0")
	}
	if c.Password.MaxLength < c.Password.MinLength {
		return errors.New("Password MaxLength must be >= MinLength")
	}

	// OTP
	if c.OTP.CodeLength < 6 || c.OTP.CodeLength > 10 {
		return errors.New("OTP CodeLength must be between 6 and 10")
	}
	if c.OTP.CodeTTL <= 0 {
		return errors.New("OTP CodeTTL must be > 0")
	}
	if c.OTP.DailyLimit <= 0 {
		return errors.New("OTP DailyLimit must be > 0")
	}
	if c.OTP.QuotaTTL < 24*time.Hour {
		return errors.New("OTP QuotaTTL must be >= 24h")
	}
	if c.OTP.MaxFailures <= 0 {
		return errors.New("OTP MaxFailures must be > 0")
	}
	if c.OTP.FailureTTL <= 0 {
		return errors.New("OTP FailureTTL must be > 0")
	}
	if c.OTP.TimezoneOffset < -12*time.Hour || c.OTP.TimezoneOffset > 14*time.Hour {
		return errors.New("OTP TimezoneOffset must be between -12h and +14h")
	}

	// Login
	if c.Login.MaxFailures <= 0 {
		return errors.New("Login MaxFailures must be > 0")
	}
	if c.Login.FailureTTL <= 0 {
		return errors.New("Login FailureTTL must be > 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Security.ProductionMode {
		if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) < 32 {
			return errors.New("production mode requires an HS256 key of at least 256 bits")
		}
		if c.Password.Memory < 64*1024 {
			return errors.New("production mode requires Password Memory >= 65536 KB")
		}
		if c.Password.Time < 2 {
			return errors.New("production mode requires Password Time >= 2")
		}
	}

	return nil
}
