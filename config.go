package authgate

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/mwhitlock/authgate/otc"
)

// Mode selects the session artifact kind for the lifetime of a built Engine.
// It is a sealed per-deployment choice: there is no runtime switching and no
// per-request mixing.
type Mode int

const (
	// ModeToken issues stateless signed tokens; the server holds no record.
	ModeToken Mode = iota
	// ModeSession stores server-side records behind opaque handles.
	ModeSession
)

// Config defines a public type used by authgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Mode                 Mode
	Roles                []string
	DefaultRole          string
	RequireVerifiedLogin bool

	Password     PasswordConfig
	Token        TokenConfig
	Session      SessionConfig
	Verification CodeConfig
	Reset        CodeConfig
	RateLimit    RateLimitConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authgate APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Cost           int
	MinLength      int
	RequireDigit   bool
	RequireLetter  bool
	UpgradeOnLogin bool
}

/*
====================================
TOKEN / SESSION CONFIG
====================================
*/

// TokenConfig defines a public type used by authgate APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// SessionConfig defines a public type used by authgate APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
	Sliding     bool
	CookieName  string
}

/*
====================================
ONE-TIME CODE CONFIG
====================================
*/

// CodeConfig configures one one-time-code workflow (verification or reset).
//
// CodeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CodeConfig struct {
	Length  int
	Charset otc.Charset
	Expiry  time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RouteLimit bounds attempts for one gated route.
type RouteLimit struct {
	Window time.Duration
	Max    int
}

// RateLimitConfig defines a public type used by authgate APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled     bool
	RedisPrefix string
	Login       RouteLimit
	Register    RouteLimit
	SendCode    RouteLimit
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by authgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: token mode, HS256,
// ten-round bcrypt, six-digit numeric codes with a ten-minute expiry, and
// conservative rate limits on the four sensitive routes.
func DefaultConfig() Config {
	return Config{
		Mode:        ModeToken,
		Roles:       []string{"user", "admin"},
		DefaultRole: "user",

		Password: PasswordConfig{
			Cost:          10,
			MinLength:     8,
			RequireDigit:  true,
			RequireLetter: true,
		},
		Token: TokenConfig{
			TTL:           15 * time.Minute,
			SigningMethod: "hs256",
			Issuer:        "authgate",
		},
		Session: SessionConfig{
			RedisPrefix: "ag:s",
			TTL:         24 * time.Hour,
			CookieName:  "authgate_session",
		},
		Verification: CodeConfig{
			Length:  6,
			Charset: otc.Numeric,
			Expiry:  10 * time.Minute,
		},
		Reset: CodeConfig{
			Length:  6,
			Charset: otc.Numeric,
			Expiry:  10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:     true,
			RedisPrefix: "ag:rl",
			Login:       RouteLimit{Window: time.Minute, Max: 10},
			Register:    RouteLimit{Window: time.Minute, Max: 5},
			SendCode:    RouteLimit{Window: time.Minute, Max: 3},
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Roles = slices.Clone(cfg.Roles)
	out.Token.PrivateKey = slices.Clone(cfg.Token.PrivateKey)
	out.Token.PublicKey = slices.Clone(cfg.Token.PublicKey)
	return out
}

func validateConfig(cfg Config) error {
	if cfg.Mode != ModeToken && cfg.Mode != ModeSession {
		return errors.New("invalid mode")
	}
	if len(cfg.Roles) == 0 {
		return errors.New("at least one role is required")
	}
	for _, role := range cfg.Roles {
		if strings.TrimSpace(role) == "" {
			return errors.New("roles must be non-empty strings")
		}
	}
	if cfg.DefaultRole != "" && !slices.Contains(cfg.Roles, cfg.DefaultRole) {
		return errors.New("default role is not in the role set")
	}
	if cfg.Password.Cost < 10 {
		return errors.New("password cost must be >= 10")
	}
	if cfg.Password.MinLength < 1 {
		return errors.New("password min length must be >= 1")
	}
	if cfg.Mode == ModeToken && cfg.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if cfg.Mode == ModeSession && cfg.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	for _, cc := range []CodeConfig{cfg.Verification, cfg.Reset} {
		if cc.Length < 4 || cc.Length > 32 {
			return errors.New("code length must be between 4 and 32")
		}
		if cc.Charset != otc.Numeric && cc.Charset != otc.Alphanumeric {
			return errors.New("code charset must be numeric or alphanumeric")
		}
		if cc.Expiry <= 0 {
			return errors.New("code expiry must be positive")
		}
	}
	if cfg.RateLimit.Enabled {
		for _, rl := range []RouteLimit{cfg.RateLimit.Login, cfg.RateLimit.Register, cfg.RateLimit.SendCode} {
			if rl.Max > 0 && rl.Window <= 0 {
				return errors.New("rate limit window must be positive when a max is set")
			}
		}
	}
	return nil
}

func (c Config) defaultRole() string {
	if c.DefaultRole != "" {
		return c.DefaultRole
	}
	return c.Roles[0]
}
