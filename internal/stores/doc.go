// Package stores provides short-lived record stores for the phone auth flows.
//
// # Design
//
// [CodeStore] persists the single live one-time code per phone in a
// counter.Store with a TTL. Re-issuing overwrites the previous code, and
// deleting it makes the code single-use. Candidate codes are compared in
// constant time.
//
// # Architecture boundaries
//
// This package owns persistence of codes. It does NOT generate codes, count
// failures, or make authentication decisions. Those belong to internal/otp
// and internal/flows.
//
// # What this package must NOT do
//
//   - Import phoneAuth or any sibling internal package.
//   - Log or expose plaintext codes.
//   - Use non-constant-time comparisons for secret matching.
package stores
