package authgate

import "errors"

var (
	// ErrInvalidInput is an exported constant or variable used by the identity engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidEmail is an exported constant or variable used by the identity engine.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrPasswordPolicy is an exported constant or variable used by the identity engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrRoleInvalid is an exported constant or variable used by the identity engine.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrEmailTaken is an exported constant or variable used by the identity engine.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is an exported constant or variable used by the identity engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountUnverified is an exported constant or variable used by the identity engine.
	ErrAccountUnverified = errors.New("account unverified")
	// ErrIdentityNotFound is an exported constant or variable used by the identity engine.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrCodeInvalid is an exported constant or variable used by the identity engine.
	ErrCodeInvalid = errors.New("code invalid or expired")
	// ErrRateLimited is an exported constant or variable used by the identity engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthorized is an exported constant or variable used by the identity engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is an exported constant or variable used by the identity engine.
	ErrForbidden = errors.New("forbidden")
	// ErrStoreUnavailable is an exported constant or variable used by the identity engine.
	ErrStoreUnavailable = errors.New("backend store unavailable")
	// ErrMailUnavailable is an exported constant or variable used by the identity engine.
	ErrMailUnavailable = errors.New("mail delivery unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the identity engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
