// Package userstore provides phoneAuth.UserProvider implementations.
//
// [Memory] keeps accounts in process memory for development and tests.
// [Postgres] stores them in a single table through sqlx and lib/pq and can
// create that table on startup. Both assign UUID account IDs and enforce one
// account per phone.
package userstore
