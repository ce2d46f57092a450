// Package rate enforces fixed-window attempt budgets per (route, key) pair
// using Redis counters. A window opens on the first attempt for a key and
// closes when its TTL lapses; attempts beyond the route's budget are
// rejected without touching anything downstream.
package rate
