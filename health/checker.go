package health

import (
	"context"
	"time"
)

// Status grades a guarded component. A degraded component still serves
// calls (a half-open breaker, a filling bulkhead queue); an unhealthy one
// is rejecting them.
type Status int

const (
	// StatusHealthy indicates the component is accepting calls normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component serves calls with reduced
	// capacity or is probing recovery.
	StatusDegraded
	// StatusUnhealthy indicates the component is rejecting calls.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of probing one component.
type Result struct {
	// Status grades the component.
	Status Status

	// Message provides additional context about the status.
	Message string

	// Issues lists the specific problems behind a non-healthy status,
	// one line per problem. Empty for healthy results.
	Issues []string

	// Details contains arbitrary metadata about the check, such as
	// breaker call counts or bulkhead queue depth.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check was performed.
	Timestamp time.Time

	// Error is the error if the check failed.
	Error error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{
		Status:    StatusUnhealthy,
		Message:   message,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// WithDetails adds details to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithIssues attaches the problem list to a result.
func (r Result) WithIssues(issues ...string) Result {
	r.Issues = issues
	return r
}

// WithDuration sets the duration on a result.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Checker probes one guarded component. BreakerChecker, BulkheadChecker
// and ManagerChecker cover the resilience primitives; NewCheckerFunc
// adapts anything else.
type Checker interface {
	// Name identifies the component, e.g. "circuit-breaker:payments".
	Name() string

	// Check probes the component and grades it.
	Check(ctx context.Context) Result
}

// CheckerFunc is an adapter to allow ordinary functions to be used as Checkers.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a new CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name returns the name of this checker.
func (f *CheckerFunc) Name() string {
	return f.name
}

// Check performs the health check.
func (f *CheckerFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}
