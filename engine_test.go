package authgate

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testTokenSecret = []byte("unit-test-secret-32-bytes-long!!")

// captureMailer records the last code delivered per address and can be told
// to fail, standing in for a broken mail backend.
type captureMailer struct {
	mu           sync.Mutex
	verification map[string]string
	reset        map[string]string
	failSend     bool
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		verification: map[string]string{},
		reset:        map[string]string{},
	}
}

func (m *captureMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend {
		return errors.New("smtp down")
	}
	m.verification[email] = code
	return nil
}

func (m *captureMailer) SendResetCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend {
		return errors.New("smtp down")
	}
	m.reset[email] = code
	return nil
}

func (m *captureMailer) lastVerification(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verification[email]
}

func (m *captureMailer) lastReset(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset[email]
}

type testEngineOption func(*Config, *Builder)

func withHooks(hooks Hooks) testEngineOption {
	return func(_ *Config, b *Builder) {
		b.WithHooks(hooks)
	}
}

func withConfig(mutate func(*Config)) testEngineOption {
	return func(cfg *Config, _ *Builder) {
		mutate(cfg)
	}
}

func newTestEngine(t *testing.T, opts ...testEngineOption) (*Engine, *MemoryRepository, *captureMailer) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := DefaultConfig()
	cfg.Token.PrivateKey = testTokenSecret

	repo := NewMemoryRepository()
	mailer := newCaptureMailer()

	builder := New().
		WithRedis(rdb).
		WithRepository(repo).
		WithMailer(mailer).
		WithLogger(log.New(io.Discard, "", 0))

	for _, opt := range opts {
		opt(&cfg, builder)
	}
	builder.WithConfig(cfg)

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, repo, mailer
}

func mustRegister(t *testing.T, e *Engine, email, pw string) *PublicIdentity {
	t.Helper()

	user, err := e.Register(context.Background(), email, pw, "")
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return user
}
