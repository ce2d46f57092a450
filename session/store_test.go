package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration, sliding bool) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, "test:s", ttl, sliding), mr
}

func TestCreateGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Hour, false)
	ctx := context.Background()

	handle, err := store.Create(ctx, "user-1", "admin", map[string]any{"plan": "pro"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if handle == "" {
		t.Fatal("expected non-empty handle")
	}

	record, err := store.Get(ctx, handle)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.IdentityID != "user-1" || record.Role != "admin" {
		t.Fatalf("record = %+v", record)
	}
	if record.Claims["plan"] != "pro" {
		t.Fatalf("claims = %v, want plan=pro", record.Claims)
	}
}

func TestGetUnknownHandle(t *testing.T) {
	store, _ := newTestStore(t, time.Hour, false)

	if _, err := store.Get(context.Background(), "no-such-handle"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordExpires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute, false)
	ctx := context.Background()

	handle, err := store.Create(ctx, "user-1", "user", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, handle); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after TTL", err)
	}
}

func TestSlidingRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Minute, true)
	ctx := context.Background()

	handle, err := store.Create(ctx, "user-1", "user", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Touch the record just before expiry; the TTL should restart.
	mr.FastForward(50 * time.Second)
	if _, err := store.Get(ctx, handle); err != nil {
		t.Fatalf("Get: %v", err)
	}

	mr.FastForward(50 * time.Second)
	if _, err := store.Get(ctx, handle); err != nil {
		t.Fatalf("Get after sliding refresh: %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t, time.Hour, false)
	ctx := context.Background()

	handle, err := store.Create(ctx, "user-1", "user", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Delete(ctx, handle); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, handle); err != nil {
		t.Fatalf("second Delete: %v", err)
	}

	if _, err := store.Get(ctx, handle); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestCorruptRecordTreatedAsMissing(t *testing.T) {
	store, mr := newTestStore(t, time.Hour, false)
	ctx := context.Background()

	if err := mr.Set("test:s:bad-handle", "not-json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.Get(ctx, "bad-handle"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for corrupt record", err)
	}
	if mr.Exists("test:s:bad-handle") {
		t.Fatal("expected corrupt record to be deleted")
	}
}
