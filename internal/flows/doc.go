// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunSendOTP, RunLoginOTP, RunLoginPassword,
// RunSetPassword, RunResetPassword) accepts a typed dependency struct and
// returns results without side-effects beyond those dependencies. The Engine
// builds the dependency structs and stays thin.
//
// # Architecture boundaries
//
// Flow functions coordinate the otp ledger, the password failure guard, the
// password hasher, the user provider, the session signer, audit and metrics.
// They do not own any of these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import phoneAuth (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency functions.
package flows
