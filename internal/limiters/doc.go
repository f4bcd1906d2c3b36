// Package limiters provides the throttling primitives of the phone auth flows,
// built on top of the internal/rate counter.
//
// # Limiters
//
//   - [FailureGuard]: consecutive-failure lockout keyed by the caller, with
//     purge-on-breach. Shared by OTP consumption and password login.
//   - [SendQuota]: daily cap on issued codes per phone.
//
// All limiters are nil-safe where a nil receiver has an obvious meaning.
//
// # Architecture boundaries
//
// Key namespaces for failure counters are chosen by callers. Thresholds and
// windows are passed per call or come from Config structs supplied at
// construction time.
//
// # What this package must NOT do
//
//   - Import phoneAuth or any sibling internal package except internal/rate.
//   - Decide what a lockout means to the user. Flow functions map results to errors.
package limiters
