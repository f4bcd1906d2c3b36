// Package internal contains helper utilities that are intentionally private to phoneAuth,
// currently the cryptographically random one-time code generator.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: pure-function flow orchestrators for every Engine operation
//   - limiters: failure guard and daily send quota
//   - otp: the code ledger (issue, consume, lockout)
//   - rate: the TTL counter primitive over counter.Store
//   - security: the configuration posture report
//   - stores: the live code store
//
// # What this package must NOT do
//
//   - Export types that appear in the public phoneAuth API.
//   - Be imported by any package outside the phoneAuth module.
package internal
