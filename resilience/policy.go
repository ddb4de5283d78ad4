package resilience

import (
	"context"
	"time"
)

// Policy bundles the optional layers applied to one operation. A nil
// sub-config disables that layer; a zero-valued sub-config enables it
// with defaults.
type Policy struct {
	// CircuitBreaker gates the whole pipeline (outermost of the four
	// core layers).
	CircuitBreaker *CircuitBreakerConfig

	// Retry re-attempts the bulkhead+timeout layers.
	Retry *RetryConfig

	// Timeout races each attempt against a deadline (innermost).
	Timeout *TimeoutConfig

	// Bulkhead bounds concurrent attempts per operation name.
	Bulkhead *BulkheadConfig

	// RateLimit, when set, sits outside all other layers.
	RateLimit *RateLimiterConfig

	// Fallback, when set, absorbs any error escaping the pipeline. It is
	// the only place the pipeline can fully absorb a failure.
	Fallback func(ctx context.Context, err error) error
}

// APIPolicy is tuned for ordinary third-party HTTP APIs.
func APIPolicy() Policy {
	return Policy{
		CircuitBreaker: &CircuitBreakerConfig{
			FailureThreshold: 5,
			VolumeThreshold:  10,
			ResetTimeout:     30 * time.Second,
		},
		Retry: &RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
		Timeout:  &TimeoutConfig{Timeout: 10 * time.Second},
		Bulkhead: &BulkheadConfig{MaxConcurrent: 50, MaxQueueSize: 50},
	}
}

// AIPolicy is tuned for AI model providers: long completions, slow
// recovery, a small isolation pool.
func AIPolicy() Policy {
	return Policy{
		CircuitBreaker: &CircuitBreakerConfig{
			FailureThreshold: 3,
			VolumeThreshold:  5,
			ResetTimeout:     60 * time.Second,
		},
		Retry: &RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     30 * time.Second,
			Jitter:       true,
		},
		Timeout:  &TimeoutConfig{Timeout: 120 * time.Second},
		Bulkhead: &BulkheadConfig{MaxConcurrent: 10, MaxQueueSize: 10},
	}
}

// DatabasePolicy is tuned for database queries: a large pool and fast
// retries.
func DatabasePolicy() Policy {
	return Policy{
		CircuitBreaker: &CircuitBreakerConfig{
			FailureThreshold: 5,
			VolumeThreshold:  20,
			ResetTimeout:     15 * time.Second,
		},
		Retry: &RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     time.Second,
		},
		Timeout:  &TimeoutConfig{Timeout: 30 * time.Second},
		Bulkhead: &BulkheadConfig{MaxConcurrent: 100, MaxQueueSize: 100},
	}
}

// ExternalPolicy is tuned for miscellaneous external services and
// sensor networks.
func ExternalPolicy() Policy {
	return Policy{
		CircuitBreaker: &CircuitBreakerConfig{
			FailureThreshold: 5,
			VolumeThreshold:  10,
			ResetTimeout:     30 * time.Second,
		},
		Retry: &RetryConfig{
			MaxAttempts:  2,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Jitter:       true,
		},
		Timeout:  &TimeoutConfig{Timeout: 15 * time.Second},
		Bulkhead: &BulkheadConfig{MaxConcurrent: 20, MaxQueueSize: 20},
	}
}

// CriticalPolicy is tuned for dependencies on the request hot path:
// tight deadlines, an aggressive breaker, minimal retries.
func CriticalPolicy() Policy {
	return Policy{
		CircuitBreaker: &CircuitBreakerConfig{
			FailureThreshold: 3,
			VolumeThreshold:  5,
			ResetTimeout:     60 * time.Second,
		},
		Retry: &RetryConfig{
			MaxAttempts:  2,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     500 * time.Millisecond,
		},
		Timeout:  &TimeoutConfig{Timeout: 5 * time.Second},
		Bulkhead: &BulkheadConfig{MaxConcurrent: 25, MaxQueueSize: 25},
	}
}

// PresetPolicy returns the named preset: api, ai, database, external or
// critical.
func PresetPolicy(name string) (Policy, bool) {
	switch name {
	case "api":
		return APIPolicy(), true
	case "ai":
		return AIPolicy(), true
	case "database":
		return DatabasePolicy(), true
	case "external":
		return ExternalPolicy(), true
	case "critical":
		return CriticalPolicy(), true
	default:
		return Policy{}, false
	}
}
