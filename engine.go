package authgate

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mwhitlock/authgate/internal/audit"
	"github.com/mwhitlock/authgate/internal/metrics"
	"github.com/mwhitlock/authgate/internal/rate"
	"github.com/mwhitlock/authgate/jwt"
	"github.com/mwhitlock/authgate/password"
	"github.com/mwhitlock/authgate/session"
)

// Engine defines a public type used by authgate APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	repo     Repository
	mailer   Mailer
	hooks    Hooks
	hasher   *password.Hasher
	tokens   *jwt.Manager
	sessions *session.Store
	limiter  *rate.Limiter
	audit    *audit.Dispatcher
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// Mode returns the sealed artifact mode the engine was built with.
func (e *Engine) Mode() Mode {
	return e.config.Mode
}

// SessionCookieName returns the cookie name configured for session handles.
func (e *Engine) SessionCookieName() string {
	return e.config.Session.CookieName
}

// Close releases engine resources. Safe to call on a nil engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events discarded under pressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.Snapshot()
}

// Authenticate resolves a session artifact to the caller's identity.
//
// In token mode the artifact is a bearer token; expiry, malformation, and
// signature failures are all collapsed into [ErrUnauthorized] (the
// distinction is logged, never returned). In session mode the artifact is a
// session handle that must resolve to a live record.
func (e *Engine) Authenticate(ctx context.Context, artifact string) (*AuthResult, error) {
	if e == nil || e.repo == nil {
		return nil, ErrEngineNotReady
	}
	if artifact == "" {
		return nil, ErrUnauthorized
	}

	switch e.config.Mode {
	case ModeToken:
		claims, err := e.tokens.Parse(artifact)
		if err != nil {
			e.logger.Printf("authgate: token rejected: %v", err)
			return nil, ErrUnauthorized
		}
		return &AuthResult{
			IdentityID: claims.UID,
			Role:       claims.Role,
			Claims:     claims.Extra,
		}, nil

	case ModeSession:
		record, err := e.sessions.Get(ctx, artifact)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				e.logger.Printf("authgate: session resolve: %v", err)
			}
			return nil, ErrUnauthorized
		}
		return &AuthResult{
			IdentityID: record.IdentityID,
			Role:       record.Role,
			Claims:     record.Claims,
			SessionID:  artifact,
		}, nil
	}

	return nil, ErrUnauthorized
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

// gate consults the rate limiter for route before any other work. A
// rejection is terminal: no hooks fire and the repository is not touched.
func (e *Engine) gate(ctx context.Context, route, fallbackKey string, limitedMetric MetricID) error {
	if e.limiter == nil {
		return nil
	}

	key := clientIPFromContext(ctx)
	if key == "" {
		key = fallbackKey
	}

	if err := e.limiter.Allow(ctx, route, key); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(limitedMetric)
			e.emit(ctx, "rate_limited", "", fallbackKey, false, ErrRateLimited, map[string]string{"route": route})
			return ErrRateLimited
		}
		e.logger.Printf("authgate: rate limiter: %v", err)
		return ErrStoreUnavailable
	}

	return nil
}

// fail routes a workflow error through the OnError hook before returning it.
func (e *Engine) fail(ctx context.Context, err error) error {
	if e.hooks.OnError != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Printf("authgate: onError hook panic: %v", r)
				}
			}()
			e.hooks.OnError(ctx, err)
		}()
	}
	return err
}

// runHook invokes an optional lifecycle hook. Errors and panics are caught,
// logged, and audited; they never propagate to the caller.
func (e *Engine) runHook(ctx context.Context, name string, fn func() error) {
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("authgate: %s hook panic: %v", name, r)
			e.emit(ctx, "hook_panic", "", "", false, nil, map[string]string{"hook": name})
		}
	}()

	if err := fn(); err != nil {
		e.logger.Printf("authgate: %s hook: %v", name, err)
		e.emit(ctx, "hook_error", "", "", false, err, map[string]string{"hook": name})
	}
}

func (e *Engine) emit(ctx context.Context, eventType, identityID, email string, success bool, err error, meta map[string]string) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:  time.Now(),
		EventType:  eventType,
		IdentityID: identityID,
		Email:      email,
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   meta,
	}
	if err != nil {
		event.Error = err.Error()
	}

	e.audit.Emit(ctx, event)
}
