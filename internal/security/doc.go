// Package security summarises the security posture of an engine
// configuration for operators: signing algorithm, argon2 cost, lockout
// thresholds and whether counters are atomic.
//
// # What this package must NOT do
//
//   - Import phoneAuth. The root package converts its Config into a ReportInput.
//   - Make decisions. Validation and lint live in the root package.
package security
