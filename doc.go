// Package authgate provides a credential and proof-of-possession engine for
// HTTP services: registration, login, logout, email verification, and
// password recovery, driven by email/password credentials and short-lived
// one-time codes.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// the [Repository] and [Mailer] collaborator interfaces, [Hooks], and value
// types. Rate limiting, audit dispatch, and metrics counters live under
// internal/ and are never exported directly.
//
// Persistent identity storage is the caller's concern: implement [Repository]
// against your database. [MemoryRepository] ships as a reference
// implementation for tests and demos.
//
// # Session artifacts
//
// Exactly one artifact kind is active per built Engine, selected by
// [Config.Mode] and never mixed per-request: [ModeToken] issues stateless
// signed tokens (authgate/jwt), [ModeSession] stores server-side records in
// Redis behind opaque handles (authgate/session).
package authgate
