package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines the timeout hierarchy for charge operations.
//
// Hierarchy (from outermost to innermost):
//
//	Service operation (50s)
//	  ↓
//	External API (30s - Stripe)
//	  ↓
//	Database query (5s)
//
// Each layer completes before its parent times out, so a slow provider
// call fails as a provider timeout rather than an opaque service timeout.
type TimeoutConfig struct {
	// Service is the overall timeout for one state-machine operation
	Service time.Duration

	// ExternalAPI bounds a single charge-processor round trip
	ExternalAPI time.Duration

	// NonCritical bounds best-effort work (ledger posting, in-flight
	// guard release)
	NonCritical time.Duration

	// Database bounds a single repository call
	Database time.Duration
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Service:     50 * time.Second,
		ExternalAPI: 30 * time.Second,
		NonCritical: 10 * time.Second,
		Database:    5 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Service:     4 * time.Second,
		ExternalAPI: 2 * time.Second,
		NonCritical: 1 * time.Second,
		Database:    1 * time.Second,
	}
}

// ServiceContext creates a context with timeout for a state-machine operation
func (tc *TimeoutConfig) ServiceContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Service)
}

// ExternalAPIContext creates a context for a charge-processor call
func (tc *TimeoutConfig) ExternalAPIContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.ExternalAPI)
}

// NonCriticalContext creates a context for best-effort work
func (tc *TimeoutConfig) NonCriticalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.NonCritical)
}

// DatabaseContext creates a context for a repository call
func (tc *TimeoutConfig) DatabaseContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Database)
}
