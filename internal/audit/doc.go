// Package audit implements async event dispatching for login-relevant operations.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, logrus, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full
//     semantics and a deadline-bounded [Dispatcher.Shutdown].
//   - [Event]: structured audit record with timestamp, type, user, masked phone, IP, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which
// events to emit; the Engine and flow functions do.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import phoneAuth or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
