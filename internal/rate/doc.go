// Package rate provides the counting primitive every phoneAuth limiter is built on:
// read a TTL counter, increment it with a re-armed TTL, and reset it.
//
// # Window semantics
//
// Sliding windows: each increment re-arms the full TTL, so a key expires ttl after
// its most recent write. When the store implements [counter.Incrementer] the
// increment is atomic. Otherwise [Counter] falls back to get, add one, set; two
// concurrent callers may then both observe the same count and write the same value.
// That fallback can only under-count, so lockouts fire late, never early.
//
// # What this package must NOT do
//
//   - Implement thresholds or purge policy (those live in internal/limiters).
//   - Be imported outside the phoneAuth module.
package rate
