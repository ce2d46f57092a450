// Package middleware provides the request-scoped access guard pair:
// [Authenticate] resolves the caller's identity from the configured session
// artifact, and [RequireRoles] enforces a role-set check on the resolved
// identity. RequireRoles assumes Authenticate already ran on the chain.
package middleware
