// Package password implements password hashing, verification and the
// character policy used by phone login accounts.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters so the
// caller can re-hash on the next successful login. [Argon2.VerifyDecoy] burns
// the same work as a real verification for accounts that have no hash.
//
// [Policy] accepts only ASCII letters and digits within a length range,
// validated with go-playground/validator.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other phoneAuth package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
