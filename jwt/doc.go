// Package jwt signs and verifies the session tokens handed out after a
// successful phone login.
//
// A token carries sub (user ID), phone, iat, exp and jti, plus iss, aud and a
// kid header when configured. Parse enforces the algorithm allow-list,
// expiry, issuer, audience and an iat ceiling.
package jwt
