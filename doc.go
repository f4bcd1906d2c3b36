// Package phoneAuth provides a phone-number authentication engine: one-time
// codes with a daily send quota, password login with lockout, and signed
// session tokens.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// phoneAuth is the public surface. It exposes [Engine], [Builder], [Config], the
// collaborator interfaces ([UserProvider], [Signer], [CodeSender]) and value types.
// Flow orchestration, counters, code storage and audit dispatch live under
// internal/ and are never exported. All short-lived state (codes, quotas,
// failure counters) lives in a counter.Store; accounts live behind UserProvider.
//
// # Keys
//
// With an empty Config.KeyPrefix the engine writes:
//
//	otp:{phone}                one live code, TTL OTP.CodeTTL
//	otp-fail:{phone}           code failures, TTL OTP.FailureTTL
//	otp-sends:{phone}:{day}    codes sent on day (YYYYMMDD), TTL OTP.QuotaTTL
//	pwd-fail:{phone}           password failures, TTL Login.FailureTTL
//
// # What this package must NOT do
//
//   - Log or audit codes or passwords.
//   - Tell an unknown phone apart from a wrong password in password login.
//   - Import any sub-package that re-imports phoneAuth (no import cycles).
package phoneAuth
