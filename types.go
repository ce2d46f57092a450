package authgate

import (
	"context"
	"time"
)

// Identity is one registered principal. The code/expiry pairs are transient
// proof state: both fields of a pair are set together and cleared together,
// and the two pairs are independent (a verification code is never usable as
// a reset code or vice versa).
type Identity struct {
	ID              string
	Email           string
	PasswordHash    string `json:"-"`
	Role            string
	Verified        bool
	EmailCode       string `json:"-"`
	EmailCodeExpiry time.Time
	ResetCode       string `json:"-"`
	ResetCodeExpiry time.Time
}

// PublicIdentity is the caller-visible projection of an [Identity],
// excluding every secret field.
type PublicIdentity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

// Public returns the caller-visible projection of i.
func (i *Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:       i.ID,
		Email:    i.Email,
		Role:     i.Role,
		Verified: i.Verified,
	}
}

// Repository is the primary interface that callers must implement to
// integrate authgate with their identity database.
//
// Implementations must return [ErrEmailTaken] from Create on duplicate
// emails and [ErrIdentityNotFound] from lookups that miss. The two Redeem
// methods carry the engine's only atomicity requirement: the stored code
// comparison, the pair clearing, and the accompanying mutation must happen
// as one unit so a code can never be redeemed twice.
type Repository interface {
	Create(ctx context.Context, identity *Identity) error
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByID(ctx context.Context, id string) (*Identity, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SaveEmailCode(ctx context.Context, id, code string, expiry time.Time) error
	SaveResetCode(ctx context.Context, id, code string, expiry time.Time) error

	// RedeemEmailCode sets Verified and clears the email code pair iff the
	// stored code equals code. Returns false when the code does not match or
	// was already cleared.
	RedeemEmailCode(ctx context.Context, id, code string) (bool, error)

	// RedeemResetCode replaces the password hash and clears the reset code
	// pair iff the stored code equals code.
	RedeemResetCode(ctx context.Context, id, code, newHash string) (bool, error)
}

// Mailer delivers one-time codes out-of-band. Implementations own transport,
// templating, and retries; the engine only hands over the address and code.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendResetCode(ctx context.Context, email, code string) error
}

// NoOpMailer discards outgoing codes. Useful in tests.
type NoOpMailer struct{}

// SendVerificationCode implements [Mailer].
func (NoOpMailer) SendVerificationCode(context.Context, string, string) error { return nil }

// SendResetCode implements [Mailer].
func (NoOpMailer) SendResetCode(context.Context, string, string) error { return nil }

// Hooks holds the optional lifecycle extension points. Every slot may be
// nil. Hooks run synchronously within the request; their errors and panics
// are caught, logged, and audited, and never alter the primary response.
//
// OnLogin may return extension claims that are merged into the issued
// artifact; for stateless tokens the token is then the sole source of truth
// for their content until it expires. There is deliberately no hook after
// password reset completion.
type Hooks struct {
	OnRegister func(ctx context.Context, identity *Identity) error
	OnLogin    func(ctx context.Context, identity *Identity) (map[string]any, error)
	OnLogout   func(ctx context.Context, result *AuthResult) error
	OnVerify   func(ctx context.Context, identity *Identity) error
	OnError    func(ctx context.Context, err error)
}

// AuthResult is the resolved caller identity attached to a request after
// authentication: the identity ID, its role, and any extension claims
// carried by the artifact. SessionID is set only in session mode.
type AuthResult struct {
	IdentityID string         `json:"id"`
	Role       string         `json:"role"`
	Claims     map[string]any `json:"claims,omitempty"`
	SessionID  string         `json:"-"`
}

// LoginResult is returned by [Engine.Login]. Exactly one of Token and
// SessionID is set, per the engine's configured mode.
type LoginResult struct {
	Token     string         `json:"token,omitempty"`
	SessionID string         `json:"session,omitempty"`
	User      PublicIdentity `json:"user"`
	Claims    map[string]any `json:"claims,omitempty"`
}
