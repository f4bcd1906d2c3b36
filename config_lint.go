package phoneAuth

import (
	"errors"
	"strings"
	"time"
)

// LintSeverity ranks configuration warnings.
type LintSeverity int

const (
	// LintInfo is an exported constant or variable used by the authentication engine.
	LintInfo LintSeverity = iota
	// LintWarn is an exported constant or variable used by the authentication engine.
	LintWarn
	// LintHigh is an exported constant or variable used by the authentication engine.
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is a single finding reported by Config.Lint.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the list of warnings for a configuration.
type LintResult []LintWarning

// Codes returns the warning codes in report order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins every warning at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	selected := r.BySeverity(min)
	if len(selected) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(selected))
	for _, w := range selected {
		msgs = append(msgs, w.Severity.String()+" "+w.Code+": "+w.Message)
	}
	return errors.New("config lint: " + strings.Join(msgs, "; "))
}

// Lint reports settings that pass Validate but weaken the login throttles.
// It never mutates the config.
func (c Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if c.OTP.MaxFailures > 10 {
		add("otp_failures_high", LintHigh, "more than 10 wrong codes per window makes 6 digit codes guessable")
	}
	if c.Login.MaxFailures > 10 {
		add("login_failures_high", LintHigh, "more than 10 wrong passwords per window weakens brute-force protection")
	}
	if c.OTP.CodeTTL > 15*time.Minute {
		add("code_ttl_long", LintWarn, "codes live longer than 15 minutes")
	}
	if c.OTP.DailyLimit > 20 {
		add("daily_limit_high", LintWarn, "more than 20 codes per phone per day invites SMS pumping")
	}
	if c.JWT.AccessTTL > 7*24*time.Hour {
		add("access_ttl_long", LintWarn, "session tokens cannot be revoked and live longer than a week")
	}
	if c.JWT.Leeway > time.Minute {
		add("leeway_large", LintWarn, "JWT leeway above one minute")
	}
	if c.JWT.SigningMethod == "hs256" {
		add("hs256_shared_secret", LintInfo, "HS256 requires every verifier to hold the signing secret")
	}
	if c.Password.Memory < 64*1024 {
		add("argon2_memory_low", LintWarn, "argon2 memory below 64 MiB")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "no audit trail for login events")
	}
	if !c.Security.ProductionMode && !c.Security.RequireAtomicCounters {
		add("non_atomic_counters_allowed", LintInfo, "counter stores without atomic increment are accepted")
	}

	return ws
}
