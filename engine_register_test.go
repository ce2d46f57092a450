package authgate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegisterSuccess(t *testing.T) {
	engine, repo, _ := newTestEngine(t)
	ctx := context.Background()

	user, err := engine.Register(ctx, "  Alice@Example.COM ", "hunter4242", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected assigned identity ID")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", user.Email)
	}
	if user.Role != "user" {
		t.Fatalf("role = %q, want default role", user.Role)
	}
	if user.Verified {
		t.Fatal("new identities must start unverified")
	}

	stored, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "hunter4242" {
		t.Fatal("password must be stored as a hash, never in the clear")
	}
}

func TestRegisterExplicitRole(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	user, err := engine.Register(context.Background(), "root@example.com", "hunter4242", "admin")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != "admin" {
		t.Fatalf("role = %q, want admin", user.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustRegister(t, engine, "alice@example.com", "hunter4242")

	if _, err := engine.Register(ctx, "ALICE@example.com", "different9pw", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}

	// The first registration stands untouched.
	if _, err := engine.Login(ctx, "alice@example.com", "hunter4242"); err != nil {
		t.Fatalf("original credentials rejected after conflict: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     string
		want     error
	}{
		{"malformed email", "not-an-email", "hunter4242", "", ErrInvalidEmail},
		{"empty email", "", "hunter4242", "", ErrInvalidEmail},
		{"short password", "bob@example.com", "a1", "", ErrPasswordPolicy},
		{"no digit", "bob@example.com", "onlyletters", "", ErrPasswordPolicy},
		{"no letter", "bob@example.com", "12345678", "", ErrPasswordPolicy},
		{"unknown role", "bob@example.com", "hunter4242", "superuser", ErrRoleInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.Register(ctx, tc.email, tc.password, tc.role); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterHookFires(t *testing.T) {
	var hooked *Identity
	engine, _, _ := newTestEngine(t, withHooks(Hooks{
		OnRegister: func(_ context.Context, identity *Identity) error {
			hooked = identity
			return nil
		},
	}))

	user := mustRegister(t, engine, "alice@example.com", "hunter4242")

	if hooked == nil {
		t.Fatal("OnRegister hook did not fire")
	}
	if hooked.ID != user.ID {
		t.Fatalf("hook identity = %q, want %q", hooked.ID, user.ID)
	}
}

func TestRegisterHookErrorDoesNotFailRegistration(t *testing.T) {
	engine, repo, _ := newTestEngine(t, withHooks(Hooks{
		OnRegister: func(context.Context, *Identity) error {
			return errors.New("webhook down")
		},
	}))

	mustRegister(t, engine, "alice@example.com", "hunter4242")

	if _, err := repo.FindByEmail(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("identity missing despite successful registration: %v", err)
	}
}

func TestRegisterHookPanicIsContained(t *testing.T) {
	engine, _, _ := newTestEngine(t, withHooks(Hooks{
		OnRegister: func(context.Context, *Identity) error {
			panic("boom")
		},
	}))

	mustRegister(t, engine, "alice@example.com", "hunter4242")
}

func TestRegisterRateLimited(t *testing.T) {
	var hookErrs []error
	engine, _, _ := newTestEngine(t,
		withConfig(func(cfg *Config) {
			cfg.RateLimit.Register = RouteLimit{Window: time.Minute, Max: 2}
		}),
		withHooks(Hooks{
			OnError: func(_ context.Context, err error) {
				hookErrs = append(hookErrs, err)
			},
		}),
	)
	ctx := WithClientIP(context.Background(), "1.2.3.4")

	if _, err := engine.Register(ctx, "a@example.com", "hunter4242", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := engine.Register(ctx, "b@example.com", "hunter4242", ""); err != nil {
		t.Fatalf("second register: %v", err)
	}

	if _, err := engine.Register(ctx, "c@example.com", "hunter4242", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}

	// A rate-limit rejection is terminal: no hook observes it.
	for _, err := range hookErrs {
		if errors.Is(err, ErrRateLimited) {
			t.Fatal("OnError must not fire for rate-limit rejections")
		}
	}
}
