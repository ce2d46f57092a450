package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule bounds attempts for one route: at most Max attempts per Window.
type Rule struct {
	Window time.Duration
	Max    int
}

// Limiter enforces per-route, per-key attempt budgets using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	prefix string
	rules  map[string]Rule
}

// New creates a [Limiter] backed by the given Redis client. Routes without a
// rule (or with a non-positive Max) are unlimited.
func New(client redis.UniversalClient, prefix string, rules map[string]Rule) *Limiter {
	if prefix == "" {
		prefix = "ag:rl"
	}
	return &Limiter{
		redis:  client,
		prefix: prefix,
		rules:  rules,
	}
}

// Allow records one attempt for key on route and reports whether it is within
// budget. Attempts are counted in arrival order; the first attempt in a
// window starts the window clock.
func (l *Limiter) Allow(ctx context.Context, route, key string) error {
	rule, ok := l.rules[route]
	if !ok || rule.Max <= 0 {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, l.counterKey(route, key), rule.Window)
	if err != nil {
		return err
	}
	if count > int64(rule.Max) {
		return ErrRateLimited
	}

	return nil
}

// Reset clears the counter for key on route. Called after outcomes that
// should forgive prior attempts, such as a completed password reset.
func (l *Limiter) Reset(ctx context.Context, route, key string) error {
	if err := l.redis.Del(ctx, l.counterKey(route, key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func (l *Limiter) counterKey(route, key string) string {
	return l.prefix + ":" + route + ":" + key
}
