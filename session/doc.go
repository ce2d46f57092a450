// Package session implements the stateful session store used in session
// mode: server-owned identity records in Redis, referenced by an opaque
// handle handed to the client. Record lifetime is bounded by the store TTL
// and explicit deletion; deletion is idempotent.
package session
