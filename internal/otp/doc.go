// Package otp implements the one-time code ledger: issuance under a daily quota
// and single-use consumption guarded by a consecutive-failure lockout.
//
// Lifecycle of one code:
//
//	NoCode -> CodeIssued(<5 failures) -> Consumed | Locked | Expired
//
// Locked and Expired are terminal for that code. Only a new Issue leaves them.
//
// # Architecture boundaries
//
// The ledger composes internal/stores (code persistence), internal/limiters
// (send quota, failure guard) and internal code generation. It does not deliver
// codes and does not know about users or tokens.
package otp
