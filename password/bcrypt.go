package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minCost = 10

// Config defines a public type used by authgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cost int
}

// Hasher hashes and verifies credentials with bcrypt at a fixed cost.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a ready Hasher.
//
// NewHasher may return an error when input validation fails. A cost below 10
// is rejected regardless of bcrypt's own minimum.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Cost < minCost {
		return nil, errors.New("password cost must be >= 10")
	}
	if cfg.Cost > bcrypt.MaxCost {
		return nil, errors.New("password cost exceeds bcrypt maximum")
	}

	return &Hasher{config: cfg}, nil
}

// Hash returns the bcrypt digest of password at the configured cost.
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.config.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches digest.
//
// Verify never returns an error to the caller's control flow: a malformed
// digest, like a mismatched password, yields false. The underlying comparison
// is constant-time with respect to the derived keys.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// NeedsUpgrade reports whether digest was produced at a lower cost than the
// configured one and should be re-hashed on next successful verification.
func (h *Hasher) NeedsUpgrade(digest string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return false, err
	}
	return cost < h.config.Cost, nil
}
