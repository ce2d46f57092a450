// Package metrics holds lock-free in-process counters for flow outcomes.
// Counters are plain atomics; a disabled Metrics makes every operation a
// no-op so callers never branch on configuration.
package metrics

import "sync/atomic"

// ID identifies one counter.
type ID uint8

const (
	MetricRegisterSuccess ID = iota
	MetricRegisterConflict
	MetricRegisterRateLimited
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginUnverified
	MetricLoginRateLimited
	MetricLogout
	MetricVerificationSent
	MetricVerificationSuccess
	MetricVerificationFailure
	MetricSendCodeRateLimited
	MetricResetSent
	MetricResetSuccess
	MetricResetFailure
	MetricSessionCreated
	MetricSessionDestroyed

	// MetricIDCount is the number of defined counter IDs.
	MetricIDCount
)

var names = [MetricIDCount]string{
	MetricRegisterSuccess:     "register_success",
	MetricRegisterConflict:    "register_conflict",
	MetricRegisterRateLimited: "register_rate_limited",
	MetricLoginSuccess:        "login_success",
	MetricLoginFailure:        "login_failure",
	MetricLoginUnverified:     "login_unverified",
	MetricLoginRateLimited:    "login_rate_limited",
	MetricLogout:              "logout",
	MetricVerificationSent:    "verification_sent",
	MetricVerificationSuccess: "verification_success",
	MetricVerificationFailure: "verification_failure",
	MetricSendCodeRateLimited: "send_code_rate_limited",
	MetricResetSent:           "reset_sent",
	MetricResetSuccess:        "reset_success",
	MetricResetFailure:        "reset_failure",
	MetricSessionCreated:      "session_created",
	MetricSessionDestroyed:    "session_destroyed",
}

// Name returns the snake_case counter name used by exporters.
func (id ID) Name() string {
	if id >= MetricIDCount {
		return "unknown"
	}
	return names[id]
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot map[ID]uint64

// Metrics holds the counter set.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// New creates a Metrics instance. When enabled is false all operations are
// no-ops and Snapshot returns an empty map.
func New(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id ID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{}
	if m == nil || !m.enabled {
		return snap
	}
	for id := ID(0); id < MetricIDCount; id++ {
		snap[id] = m.counters[id].Load()
	}
	return snap
}
