// Package httpapi serves the phone login flows over HTTP with gin.
//
// Routes:
//
//	POST /verify-phone    {phone}                      send a code
//	POST /login           {phone, code}                log in with a code
//	POST /password-login  {phone, password}            log in with a password
//	POST /set-password    {phone, code, password}      set a password, get a session
//	POST /reset-password  {phone, code, newPassword}   replace a password
//	GET  /me                                           identity of the bearer token
//	GET  /metrics                                      Prometheus text, when mounted
//	GET  /healthz
//
// Every engine error is mapped to a status and a stable error code by
// writeError. Request bodies, codes and passwords are never logged.
package httpapi
