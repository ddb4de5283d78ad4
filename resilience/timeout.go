package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TimeoutConfig configures the timeout guard.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: 30 seconds
	Timeout time.Duration

	// Fallback, when set, is invoked instead of returning a TimeoutError
	// after the timer fires. It receives the original (pre-deadline)
	// context.
	Fallback func(ctx context.Context) error
}

// Timeout races a unit of work against a deadline.
//
// Racing does not cancel the underlying work beyond propagating a
// context deadline: a unit that ignores its context may still settle
// after the timer fires, in which case its result is discarded but its
// side effects may occur.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout guard.
func NewTimeout(config TimeoutConfig) *Timeout {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Timeout{config: config}
}

// Execute runs the operation against the deadline. On expiry it returns
// a *TimeoutError carrying the elapsed duration, or the fallback's
// result when one is configured.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)

	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			if t.config.Fallback != nil {
				return t.config.Fallback(parent)
			}
			return &TimeoutError{Elapsed: time.Since(start)}
		}
		return ctx.Err()
	}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout is a convenience function to run an operation
// against a plain deadline.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	t := NewTimeout(TimeoutConfig{Timeout: timeout})
	return t.Execute(ctx, op)
}

// Default timeout profiles per dependency class.
var defaultProfiles = map[string]time.Duration{
	"api.request":    10 * time.Second,
	"ai.completion":  120 * time.Second,
	"database.query": 30 * time.Second,
	"cache.get":      time.Second,
	"external":       15 * time.Second,
}

// TimeoutManager holds named timeout profiles so collaborators can
// reference a dependency class instead of a literal duration.
type TimeoutManager struct {
	mu       sync.RWMutex
	profiles map[string]time.Duration
}

// NewTimeoutManager creates a manager preloaded with the default
// profiles.
func NewTimeoutManager() *TimeoutManager {
	profiles := make(map[string]time.Duration, len(defaultProfiles))
	for name, d := range defaultProfiles {
		profiles[name] = d
	}
	return &TimeoutManager{profiles: profiles}
}

// Profile returns the duration for a named profile.
func (tm *TimeoutManager) Profile(name string) (time.Duration, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	d, ok := tm.profiles[name]
	return d, ok
}

// SetProfile adds or replaces a named profile.
func (tm *TimeoutManager) SetProfile(name string, d time.Duration) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.profiles[name] = d
}

// ExecuteProfile runs the operation under the named profile's deadline.
// Unknown profiles fall back to the 30 second default.
func (tm *TimeoutManager) ExecuteProfile(ctx context.Context, name string, op func(context.Context) error) error {
	d, ok := tm.Profile(name)
	if !ok {
		d = 30 * time.Second
	}
	return ExecuteWithTimeout(ctx, d, op)
}
