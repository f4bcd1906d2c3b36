// Package counter defines the TTL key-value contract that holds every piece of
// ephemeral authentication state (one-time codes, send quotas, failure counters).
//
// # Implementations
//
//   - [RedisStore]: go-redis v9 backed, atomic INCR+EXPIRE via MULTI/EXEC and
//     compare-and-delete via WATCH.
//   - [MemoryStore]: mutex-guarded map with an injectable clock, used by tests
//     and single-process development servers.
//   - [NonAtomic]: wraps any store and hides [Incrementer] and [CompareDeleter],
//     forcing callers onto the read-modify-write path.
//   - [WithPrefix]: namespaces keys for stores shared with other applications.
//
// Values are opaque strings. Absent keys are reported as [ErrNotFound]; transport
// failures are wrapped with [ErrUnavailable].
//
// # What this package must NOT do
//
//   - Interpret values or apply thresholds. Counting policy lives in internal/limiters.
//   - Import phoneAuth or any internal package.
package counter
