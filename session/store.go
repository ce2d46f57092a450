package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no record exists for a handle.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("session store unavailable")

const recordVersionV1 = 1

// Session is the server-side identity record bound to one handle.
type Session struct {
	Version    int            `json:"v"`
	IdentityID string         `json:"uid"`
	Role       string         `json:"role"`
	Claims     map[string]any `json:"ext,omitempty"`
	IssuedAt   int64          `json:"iat"`
}

// Store defines a public type used by authgate APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	redis   redis.UniversalClient
	prefix  string
	ttl     time.Duration
	sliding bool
}

// NewStore creates a session Store backed by the given Redis client.
// Records expire after ttl; when sliding is true, each successful Get
// refreshes the TTL.
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration, sliding bool) *Store {
	if prefix == "" {
		prefix = "ag:s"
	}
	return &Store{
		redis:   client,
		prefix:  prefix,
		ttl:     ttl,
		sliding: sliding,
	}
}

// Create writes a record for identityID and returns the opaque handle the
// client presents on subsequent requests.
func (s *Store) Create(ctx context.Context, identityID, role string, claims map[string]any) (string, error) {
	record := Session{
		Version:    recordVersionV1,
		IdentityID: identityID,
		Role:       role,
		Claims:     claims,
		IssuedAt:   time.Now().Unix(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}

	handle := uuid.NewString()
	if err := s.redis.Set(ctx, s.key(handle), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return handle, nil
}

// Get resolves handle to its record. Missing handles return [ErrNotFound];
// corrupt records are deleted and reported as [ErrNotFound].
func (s *Store) Get(ctx context.Context, handle string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var record Session
	if err := json.Unmarshal(data, &record); err != nil || record.Version != recordVersionV1 {
		_ = s.redis.Del(ctx, s.key(handle)).Err()
		return nil, ErrNotFound
	}

	if s.sliding && s.ttl > 0 {
		_ = s.redis.Expire(ctx, s.key(handle), s.ttl).Err()
	}

	return &record, nil
}

// Delete removes the record for handle. Deleting a handle that no longer
// exists is not an error.
func (s *Store) Delete(ctx context.Context, handle string) error {
	if err := s.redis.Del(ctx, s.key(handle)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) key(handle string) string {
	return s.prefix + ":" + handle
}
