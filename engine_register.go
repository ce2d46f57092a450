package authgate

import (
	"context"
	"errors"
)

// Register creates an unverified identity from an email/password pair.
//
// Validation runs before any side effect: email format, password policy, and
// role membership each return a client-fixable error. A duplicate email
// returns [ErrEmailTaken] — registration deliberately reveals existence,
// unlike login. The OnRegister hook fires after the identity is persisted;
// hook failures are logged and never roll back registration.
func (e *Engine) Register(ctx context.Context, email, pw, role string) (*PublicIdentity, error) {
	if e == nil || e.repo == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if err := e.gate(ctx, routeRegister, email, MetricRegisterRateLimited); err != nil {
		return nil, err
	}

	if err := validateEmail(email); err != nil {
		return nil, e.fail(ctx, err)
	}
	if err := e.config.validatePassword(pw); err != nil {
		return nil, e.fail(ctx, err)
	}
	resolvedRole, err := e.config.resolveRole(role)
	if err != nil {
		return nil, e.fail(ctx, err)
	}

	hash, err := e.hasher.Hash(pw)
	if err != nil {
		e.logger.Printf("authgate: password hash: %v", err)
		return nil, e.fail(ctx, ErrStoreUnavailable)
	}

	identity := &Identity{
		Email:        email,
		PasswordHash: hash,
		Role:         resolvedRole,
	}
	if err := e.repo.Create(ctx, identity); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			e.metricInc(MetricRegisterConflict)
			e.emit(ctx, "register", "", email, false, ErrEmailTaken, nil)
			return nil, e.fail(ctx, ErrEmailTaken)
		}
		e.logger.Printf("authgate: register create: %v", err)
		e.emit(ctx, "register", "", email, false, ErrStoreUnavailable, nil)
		return nil, e.fail(ctx, ErrStoreUnavailable)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emit(ctx, "register", identity.ID, email, true, nil, nil)

	e.runHook(ctx, "onRegister", func() error {
		if e.hooks.OnRegister == nil {
			return nil
		}
		return e.hooks.OnRegister(ctx, identity)
	})

	public := identity.Public()
	return &public, nil
}
