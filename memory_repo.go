package authgate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process [Repository] for tests and demos. All
// methods are safe for concurrent use; the Redeem methods perform their
// compare-and-clear under the repository lock, satisfying the engine's
// never-redeemed-twice requirement.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Identity
	byEmail map[string]string
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    map[string]*Identity{},
		byEmail: map[string]string{},
	}
}

// Create implements [Repository]. It assigns a UUID when identity.ID is
// empty and returns [ErrEmailTaken] on a duplicate email.
func (r *MemoryRepository) Create(_ context.Context, identity *Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[identity.Email]; exists {
		return ErrEmailTaken
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}

	stored := *identity
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	return nil
}

// FindByEmail implements [Repository].
func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

// FindByID implements [Repository].
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	out := *stored
	return &out, nil
}

// UpdatePasswordHash implements [Repository].
func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return ErrIdentityNotFound
	}
	stored.PasswordHash = hash
	return nil
}

// SaveEmailCode implements [Repository].
func (r *MemoryRepository) SaveEmailCode(_ context.Context, id, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return ErrIdentityNotFound
	}
	stored.EmailCode = code
	stored.EmailCodeExpiry = expiry
	return nil
}

// SaveResetCode implements [Repository].
func (r *MemoryRepository) SaveResetCode(_ context.Context, id, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return ErrIdentityNotFound
	}
	stored.ResetCode = code
	stored.ResetCodeExpiry = expiry
	return nil
}

// RedeemEmailCode implements [Repository].
func (r *MemoryRepository) RedeemEmailCode(_ context.Context, id, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return false, ErrIdentityNotFound
	}
	if stored.EmailCode == "" || stored.EmailCode != code {
		return false, nil
	}

	stored.Verified = true
	stored.EmailCode = ""
	stored.EmailCodeExpiry = time.Time{}
	return true, nil
}

// RedeemResetCode implements [Repository].
func (r *MemoryRepository) RedeemResetCode(_ context.Context, id, code, newHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return false, ErrIdentityNotFound
	}
	if stored.ResetCode == "" || stored.ResetCode != code {
		return false, nil
	}

	stored.PasswordHash = newHash
	stored.ResetCode = ""
	stored.ResetCodeExpiry = time.Time{}
	return true, nil
}
