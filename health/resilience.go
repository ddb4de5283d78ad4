package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/faultops/resilience"
)

// BreakerChecker reports the health of a single circuit breaker. A closed
// breaker is healthy, a half-open breaker is degraded while it probes, and
// an open breaker is unhealthy.
type BreakerChecker struct {
	breaker *resilience.CircuitBreaker
}

// NewBreakerChecker creates a checker watching the given breaker.
func NewBreakerChecker(cb *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{breaker: cb}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return "circuit-breaker:" + c.breaker.Name()
}

// Check reports the breaker state and call statistics.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	m := c.breaker.Metrics()

	details := map[string]any{
		"state":        m.State.String(),
		"total_calls":  m.Calls.TotalCalls,
		"failures":     m.Calls.Failures,
		"failure_rate": m.FailureRate,
	}

	switch m.State {
	case resilience.StateClosed:
		return Healthy("circuit closed").WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing recovery").WithDetails(details)
	default:
		return Unhealthy("circuit open", resilience.ErrCircuitOpen).WithDetails(details)
	}
}

// BulkheadChecker reports the health of a bulkhead. A saturated queue is
// unhealthy, a queue above the degraded threshold is degraded.
type BulkheadChecker struct {
	bulkhead *resilience.Bulkhead

	// DegradedAt is the queue fill ratio above which the bulkhead is
	// reported degraded. Default: 0.5
	DegradedAt float64
}

// NewBulkheadChecker creates a checker watching the given bulkhead.
func NewBulkheadChecker(b *resilience.Bulkhead) *BulkheadChecker {
	return &BulkheadChecker{bulkhead: b, DegradedAt: 0.5}
}

// Name returns the name of this checker.
func (c *BulkheadChecker) Name() string {
	return "bulkhead:" + c.bulkhead.Name()
}

// Check reports queue pressure and slot usage.
func (c *BulkheadChecker) Check(ctx context.Context) Result {
	m := c.bulkhead.Metrics()

	details := map[string]any{
		"active":         m.Active,
		"queued":         m.Queued,
		"rejected":       m.Rejected,
		"max_concurrent": m.MaxConcurrent,
		"max_queue_size": m.MaxQueueSize,
	}

	if m.MaxQueueSize <= 0 {
		return Healthy("queue disabled").WithDetails(details)
	}

	fill := float64(m.Queued) / float64(m.MaxQueueSize)
	switch {
	case m.Queued >= m.MaxQueueSize:
		return Unhealthy("queue saturated", resilience.ErrQueueFull).WithDetails(details)
	case fill >= c.DegradedAt:
		return Degraded(fmt.Sprintf("queue %d%% full", int(fill*100))).WithDetails(details)
	default:
		return Healthy("queue has capacity").WithDetails(details)
	}
}

// ManagerChecker reports the aggregate health of a resilience manager:
// every breaker and bulkhead the manager has created.
type ManagerChecker struct {
	manager *resilience.Manager
}

// NewManagerChecker creates a checker watching the given manager.
func NewManagerChecker(m *resilience.Manager) *ManagerChecker {
	return &ManagerChecker{manager: m}
}

// Name returns the name of this checker.
func (c *ManagerChecker) Name() string {
	return "resilience-manager"
}

// Check folds every issue the manager reports into one result. Open or
// half-open breakers make the result unhealthy; the issue list carries
// the specifics.
func (c *ManagerChecker) Check(ctx context.Context) Result {
	status := c.manager.HealthStatus()

	details := map[string]any{
		"breakers_healthy":   status.Breakers.Healthy,
		"breakers_unhealthy": status.Breakers.Unhealthy,
		"bulkheads":          len(status.Bulkheads),
	}

	if status.Healthy {
		return Healthy("all resilience components nominal").WithDetails(details)
	}
	return Unhealthy(
		fmt.Sprintf("%d issue(s) detected", len(status.Issues)),
		ErrCheckFailed,
	).WithDetails(details).WithIssues(status.Issues...)
}

// RegisterManager registers a manager checker plus one checker per
// existing breaker on the aggregator. Breakers created after the call
// are covered by the manager checker only.
func RegisterManager(agg *Aggregator, m *resilience.Manager) {
	agg.Register("resilience-manager", NewManagerChecker(m))
	for _, name := range m.Breakers().Names() {
		agg.Register("circuit-breaker:"+name, NewBreakerChecker(m.Breakers().Get(name)))
	}
}
