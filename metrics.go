package authgate

import internalmetrics "github.com/mwhitlock/authgate/internal/metrics"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.ID

const (
	// MetricRegisterSuccess is an exported constant or variable used by the identity engine.
	MetricRegisterSuccess = internalmetrics.MetricRegisterSuccess
	// MetricRegisterConflict is an exported constant or variable used by the identity engine.
	MetricRegisterConflict = internalmetrics.MetricRegisterConflict
	// MetricRegisterRateLimited is an exported constant or variable used by the identity engine.
	MetricRegisterRateLimited = internalmetrics.MetricRegisterRateLimited
	// MetricLoginSuccess is an exported constant or variable used by the identity engine.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the identity engine.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginUnverified is an exported constant or variable used by the identity engine.
	MetricLoginUnverified = internalmetrics.MetricLoginUnverified
	// MetricLoginRateLimited is an exported constant or variable used by the identity engine.
	MetricLoginRateLimited = internalmetrics.MetricLoginRateLimited
	// MetricLogout is an exported constant or variable used by the identity engine.
	MetricLogout = internalmetrics.MetricLogout
	// MetricVerificationSent is an exported constant or variable used by the identity engine.
	MetricVerificationSent = internalmetrics.MetricVerificationSent
	// MetricVerificationSuccess is an exported constant or variable used by the identity engine.
	MetricVerificationSuccess = internalmetrics.MetricVerificationSuccess
	// MetricVerificationFailure is an exported constant or variable used by the identity engine.
	MetricVerificationFailure = internalmetrics.MetricVerificationFailure
	// MetricSendCodeRateLimited is an exported constant or variable used by the identity engine.
	MetricSendCodeRateLimited = internalmetrics.MetricSendCodeRateLimited
	// MetricResetSent is an exported constant or variable used by the identity engine.
	MetricResetSent = internalmetrics.MetricResetSent
	// MetricResetSuccess is an exported constant or variable used by the identity engine.
	MetricResetSuccess = internalmetrics.MetricResetSuccess
	// MetricResetFailure is an exported constant or variable used by the identity engine.
	MetricResetFailure = internalmetrics.MetricResetFailure
	// MetricSessionCreated is an exported constant or variable used by the identity engine.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
	// MetricSessionDestroyed is an exported constant or variable used by the identity engine.
	MetricSessionDestroyed = internalmetrics.MetricSessionDestroyed
)

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
