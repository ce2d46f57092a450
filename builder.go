package authgate

import (
	"errors"
	"log"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/mwhitlock/authgate/internal/audit"
	internalmetrics "github.com/mwhitlock/authgate/internal/metrics"
	"github.com/mwhitlock/authgate/internal/rate"
	"github.com/mwhitlock/authgate/jwt"
	"github.com/mwhitlock/authgate/password"
	"github.com/mwhitlock/authgate/session"
)

// Builder defines a public type used by authgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	repo      Repository
	mailer    Mailer
	hooks     Hooks
	auditSink AuditSink
	logger    *log.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client used for session records and rate-limit
// counters. Required in session mode and whenever rate limiting is enabled.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRepository sets the identity repository. Required.
func (b *Builder) WithRepository(repo Repository) *Builder {
	b.repo = repo
	return b
}

// WithMailer sets the out-of-band code delivery collaborator. Defaults to
// [NoOpMailer].
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithHooks sets the lifecycle extension points.
func (b *Builder) WithHooks(hooks Hooks) *Builder {
	b.hooks = hooks
	return b
}

// WithAuditSink sets the sink receiving audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the logger for hook failures and backend errors.
// Defaults to [log.Default].
func (b *Builder) WithLogger(logger *log.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and assembles the Engine. A Builder can
// build at most once; per-process infrastructure wiring is therefore
// idempotent by construction, with no ambient globals involved.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.repo == nil {
		return nil, errors.New("repository is required")
	}
	if b.config.Mode == ModeSession && b.redis == nil {
		return nil, errors.New("session mode requires a redis client")
	}
	if b.config.RateLimit.Enabled && b.redis == nil {
		return nil, errors.New("rate limiting requires a redis client")
	}

	engine := &Engine{
		config: b.config,
		repo:   b.repo,
		mailer: b.mailer,
		hooks:  b.hooks,
		logger: b.logger,
	}
	if engine.mailer == nil {
		engine.mailer = NoOpMailer{}
	}
	if engine.logger == nil {
		engine.logger = log.Default()
	}

	hasher, err := password.NewHasher(password.Config{Cost: b.config.Password.Cost})
	if err != nil {
		return nil, err
	}
	engine.hasher = hasher

	switch b.config.Mode {
	case ModeToken:
		manager, err := jwt.NewManager(jwt.Config{
			TTL:           b.config.Token.TTL,
			SigningMethod: jwt.SigningMethod(b.config.Token.SigningMethod),
			PrivateKey:    b.config.Token.PrivateKey,
			PublicKey:     b.config.Token.PublicKey,
			Issuer:        b.config.Token.Issuer,
			Leeway:        b.config.Token.Leeway,
		})
		if err != nil {
			return nil, err
		}
		engine.tokens = manager

	case ModeSession:
		engine.sessions = session.NewStore(
			b.redis,
			b.config.Session.RedisPrefix,
			b.config.Session.TTL,
			b.config.Session.Sliding,
		)
	}

	if b.config.RateLimit.Enabled {
		engine.limiter = rate.New(b.redis, b.config.RateLimit.RedisPrefix, map[string]rate.Rule{
			routeLogin:    {Window: b.config.RateLimit.Login.Window, Max: b.config.RateLimit.Login.Max},
			routeRegister: {Window: b.config.RateLimit.Register.Window, Max: b.config.RateLimit.Register.Max},
			routeSendCode: {Window: b.config.RateLimit.SendCode.Window, Max: b.config.RateLimit.SendCode.Max},
		})
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.auditSink)

	engine.metrics = internalmetrics.New(b.config.Metrics.Enabled)

	b.built = true
	return engine, nil
}

const (
	routeLogin    = "login"
	routeRegister = "register"
	routeSendCode = "send_code"
)
