package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and the
	// call was rejected without executing the operation.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrCircuitTimeout is returned when the circuit breaker's own
	// per-call timer expired.
	ErrCircuitTimeout = errors.New("resilience: circuit breaker call timed out")

	// ErrQueueFull is returned when a bulkhead's queue is at capacity.
	ErrQueueFull = errors.New("resilience: bulkhead queue is full")

	// ErrQueueTimeout is returned when a queued bulkhead entry waited
	// past its timeout.
	ErrQueueTimeout = errors.New("resilience: bulkhead queue wait timed out")

	// ErrQueueCleared is returned to queued entries when the bulkhead
	// queue is forcibly drained.
	ErrQueueCleared = errors.New("resilience: bulkhead queue cleared")

	// ErrTimeout is returned when the standalone timeout guard's timer
	// expired.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")
)

// TimeoutError reports a timed-out operation along with how long it ran
// before the timer fired. It matches ErrTimeout under errors.Is.
type TimeoutError struct {
	// Elapsed is the time the operation ran before the timer fired.
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("resilience: operation timed out after %v", e.Elapsed)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
