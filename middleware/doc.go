// Package middleware adapts phoneAuth session tokens to net/http.
//
// [Guard] reads the Authorization header, verifies the bearer token through
// Engine.ParseToken and stores the resulting identity in the request
// context, where handlers read it back with [IdentityFromContext].
//
// The package never parses JWTs itself and never touches the counter store.
package middleware
