// Package jwt issues and verifies the stateless identity assertions used in
// token mode. Tokens are standard JWTs signed with HS256 or Ed25519 and carry
// the identity ID, role, and any extension claims merged at issuance.
//
// Verification failures are classified into three sentinel errors:
// [ErrExpired], [ErrMalformed], and [ErrSignature]. Callers collapse them to
// a single external code; the distinction exists for logging and tests.
package jwt
