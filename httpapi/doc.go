// Package httpapi exposes the six public workflow endpoints as a plain
// net/http handler: register, login, logout, send-verification-otp,
// verify-email, send-forgot-otp, and reset-password, all POST with flat JSON
// bodies. Engine errors map onto a stable machine-checkable code plus a
// short human-readable message; internal detail never reaches the response.
package httpapi
