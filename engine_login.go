package authgate

import (
	"context"
	"errors"
)

// Login authenticates an email/password pair and issues the configured
// session artifact.
//
// Unknown emails and password mismatches are indistinguishable to the
// caller: both return [ErrInvalidCredentials]. When RequireVerifiedLogin is
// set, a correct password against an unverified identity returns
// [ErrAccountUnverified] — a precondition failure, not a credential one.
func (e *Engine) Login(ctx context.Context, email, pw string) (*LoginResult, error) {
	if e == nil || e.repo == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if err := e.gate(ctx, routeLogin, email, MetricLoginRateLimited); err != nil {
		return nil, err
	}

	if email == "" || pw == "" {
		return nil, e.fail(ctx, ErrInvalidInput)
	}

	identity, err := e.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emit(ctx, "login", "", email, false, ErrInvalidCredentials, nil)
			return nil, e.fail(ctx, ErrInvalidCredentials)
		}
		e.logger.Printf("authgate: login lookup: %v", err)
		return nil, e.fail(ctx, ErrStoreUnavailable)
	}

	if !e.hasher.Verify(pw, identity.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emit(ctx, "login", identity.ID, email, false, ErrInvalidCredentials, nil)
		return nil, e.fail(ctx, ErrInvalidCredentials)
	}

	if e.config.RequireVerifiedLogin && !identity.Verified {
		e.metricInc(MetricLoginUnverified)
		e.emit(ctx, "login", identity.ID, email, false, ErrAccountUnverified, nil)
		return nil, e.fail(ctx, ErrAccountUnverified)
	}

	e.maybeUpgradeHash(ctx, identity, pw)

	extra := e.loginExtensionClaims(ctx, identity)

	result := &LoginResult{
		User:   identity.Public(),
		Claims: extra,
	}

	switch e.config.Mode {
	case ModeToken:
		token, err := e.tokens.Issue(identity.ID, identity.Role, extra)
		if err != nil {
			e.logger.Printf("authgate: token issue: %v", err)
			return nil, e.fail(ctx, ErrStoreUnavailable)
		}
		result.Token = token

	case ModeSession:
		handle, err := e.sessions.Create(ctx, identity.ID, identity.Role, extra)
		if err != nil {
			e.logger.Printf("authgate: session create: %v", err)
			return nil, e.fail(ctx, ErrStoreUnavailable)
		}
		result.SessionID = handle
		e.metricInc(MetricSessionCreated)
	}

	e.metricInc(MetricLoginSuccess)
	e.emit(ctx, "login", identity.ID, email, true, nil, nil)

	return result, nil
}

// Logout invalidates a session artifact.
//
// Session mode destroys the server-side record; a store failure is a server
// error. Token mode is a no-op acknowledgment — the engine holds no record
// to revoke, so the caller is responsible for discarding the token. The
// OnLogout hook fires after successful destruction, or immediately in token
// mode.
func (e *Engine) Logout(ctx context.Context, artifact string) error {
	if e == nil || e.repo == nil {
		return ErrEngineNotReady
	}

	var result *AuthResult

	switch e.config.Mode {
	case ModeSession:
		if record, err := e.sessions.Get(ctx, artifact); err == nil {
			result = &AuthResult{
				IdentityID: record.IdentityID,
				Role:       record.Role,
				Claims:     record.Claims,
				SessionID:  artifact,
			}
		}
		if err := e.sessions.Delete(ctx, artifact); err != nil {
			e.logger.Printf("authgate: session destroy: %v", err)
			e.emit(ctx, "logout", "", "", false, ErrStoreUnavailable, nil)
			return e.fail(ctx, ErrStoreUnavailable)
		}
		e.metricInc(MetricSessionDestroyed)

	case ModeToken:
		if claims, err := e.tokens.Parse(artifact); err == nil {
			result = &AuthResult{
				IdentityID: claims.UID,
				Role:       claims.Role,
				Claims:     claims.Extra,
			}
		}
	}

	e.metricInc(MetricLogout)
	if result != nil {
		e.emit(ctx, "logout", result.IdentityID, "", true, nil, nil)
	} else {
		e.emit(ctx, "logout", "", "", true, nil, nil)
	}

	e.runHook(ctx, "onLogout", func() error {
		if e.hooks.OnLogout == nil {
			return nil
		}
		return e.hooks.OnLogout(ctx, result)
	})

	return nil
}

// loginExtensionClaims invokes the OnLogin hook. Hooks are best-effort
// enrichers: a hook error or panic yields no extension claims and a logged
// warning, never a failed login.
func (e *Engine) loginExtensionClaims(ctx context.Context, identity *Identity) map[string]any {
	if e.hooks.OnLogin == nil {
		return nil
	}

	var extra map[string]any
	func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Printf("authgate: onLogin hook panic: %v", r)
				e.emit(ctx, "hook_panic", identity.ID, "", false, nil, map[string]string{"hook": "onLogin"})
			}
		}()

		claims, err := e.hooks.OnLogin(ctx, identity)
		if err != nil {
			e.logger.Printf("authgate: onLogin hook: %v", err)
			e.emit(ctx, "hook_error", identity.ID, "", false, err, map[string]string{"hook": "onLogin"})
			return
		}
		extra = claims
	}()

	return extra
}

func (e *Engine) maybeUpgradeHash(ctx context.Context, identity *Identity, pw string) {
	if !e.config.Password.UpgradeOnLogin {
		return
	}

	needs, err := e.hasher.NeedsUpgrade(identity.PasswordHash)
	if err != nil || !needs {
		return
	}

	hash, err := e.hasher.Hash(pw)
	if err != nil {
		return
	}
	if err := e.repo.UpdatePasswordHash(ctx, identity.ID, hash); err != nil {
		e.logger.Printf("authgate: hash upgrade: %v", err)
		return
	}
	identity.PasswordHash = hash
}
