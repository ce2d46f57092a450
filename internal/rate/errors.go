package rate

import "errors"

// ErrRateLimited is returned when a key has exhausted its attempt budget for
// the current window.
var ErrRateLimited = errors.New("rate limited")

// ErrRedisUnavailable is returned when the counter store cannot be reached.
var ErrRedisUnavailable = errors.New("rate limit store unavailable")
