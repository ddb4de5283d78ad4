package resilience

import (
	"context"
	"fmt"
	"sync"
)

// ManagerConfig configures the resilience manager.
type ManagerConfig struct {
	// BreakerDefaults is applied to breakers created through the
	// manager's registry when an operation's policy leaves fields zero.
	BreakerDefaults CircuitBreakerConfig

	// Clock is propagated to every primitive the manager creates.
	// Default: SystemClock
	Clock Clock
}

// Manager composes the primitives into a single execution pipeline per
// named operation. Breakers, bulkheads and rate limiters are created
// lazily on first use per name and shared by every subsequent call with
// that name.
type Manager struct {
	clock    Clock
	breakers *BreakerRegistry
	timeouts *TimeoutManager
	notifier *Notifier

	mu        sync.Mutex
	bulkheads map[string]*Bulkhead
	limiters  map[string]*RateLimiter
}

// NewManager creates a new manager.
func NewManager(config ManagerConfig) *Manager {
	if config.Clock == nil {
		config.Clock = SystemClock
	}
	defaults := config.BreakerDefaults
	if defaults.Clock == nil {
		defaults.Clock = config.Clock
	}

	m := &Manager{
		clock:     config.Clock,
		breakers:  NewBreakerRegistry(defaults),
		timeouts:  NewTimeoutManager(),
		notifier:  &Notifier{},
		bulkheads: make(map[string]*Bulkhead),
		limiters:  make(map[string]*RateLimiter),
	}
	// One subscription on the manager observes the whole fleet.
	m.breakers.Subscribe(m.notifier.Emit)
	return m
}

// Breakers returns the manager's breaker registry.
func (m *Manager) Breakers() *BreakerRegistry {
	return m.breakers
}

// Timeouts returns the manager's named timeout profiles.
func (m *Manager) Timeouts() *TimeoutManager {
	return m.timeouts
}

// Subscribe registers a listener for all manager, breaker and bulkhead
// events.
func (m *Manager) Subscribe(fn Listener) func() {
	return m.notifier.Subscribe(fn)
}

// Execute runs the operation under the policy. The pipeline is built in
// a fixed order, innermost to outermost: Timeout, Bulkhead, Retry,
// CircuitBreaker, then RateLimit when present. The breaker therefore
// gates the entire retry loop, while each individual retry attempt
// independently competes for a bulkhead slot and races its own timeout.
// After the pipeline settles, the policy fallback (if any) absorbs any
// escaping error.
func (m *Manager) Execute(ctx context.Context, name string, op func(context.Context) error, p Policy) error {
	start := m.clock.Now()
	m.notifier.Emit(Event{Type: EventExecutionStarted, Name: name, Time: start})

	execute := op

	if p.Timeout != nil {
		t := NewTimeout(*p.Timeout)
		inner := execute
		execute = func(ctx context.Context) error {
			return t.Execute(ctx, inner)
		}
	}

	if p.Bulkhead != nil {
		b := m.bulkhead(name, *p.Bulkhead)
		inner := execute
		execute = func(ctx context.Context) error {
			return b.Execute(ctx, inner)
		}
	}

	if p.Retry != nil {
		cfg := *p.Retry
		if cfg.Clock == nil {
			cfg.Clock = m.clock
		}
		r := NewRetry(cfg)
		inner := execute
		execute = func(ctx context.Context) error {
			return r.Execute(ctx, inner)
		}
	}

	if p.CircuitBreaker != nil {
		cfg := *p.CircuitBreaker
		if cfg.Clock == nil {
			cfg.Clock = m.clock
		}
		cb := m.breakers.GetWith(name, cfg)
		inner := execute
		execute = func(ctx context.Context) error {
			return cb.Execute(ctx, inner)
		}
	}

	if p.RateLimit != nil {
		rl := m.limiter(name, *p.RateLimit)
		inner := execute
		execute = func(ctx context.Context) error {
			return rl.Execute(ctx, inner)
		}
	}

	err := execute(ctx)

	m.notifier.Emit(Event{
		Type:     EventExecutionCompleted,
		Name:     name,
		Time:     m.clock.Now(),
		Duration: m.clock.Now().Sub(start),
		Err:      err,
	})

	if err != nil && p.Fallback != nil {
		return p.Fallback(ctx, err)
	}
	return err
}

// Do runs a value-returning operation under the policy. When the policy
// fallback absorbs an error, the zero value is returned with a nil
// error.
func Do[T any](ctx context.Context, m *Manager, name string, op func(context.Context) (T, error), p Policy) (T, error) {
	var result T
	err := m.Execute(ctx, name, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, p)
	return result, err
}

// bulkhead returns the bulkhead for name, creating it on first use.
func (m *Manager) bulkhead(name string, cfg BulkheadConfig) *Bulkhead {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.bulkheads[name]; ok {
		return b
	}

	cfg.Name = name
	if cfg.Clock == nil {
		cfg.Clock = m.clock
	}
	b := NewBulkhead(cfg)
	m.bulkheads[name] = b
	b.Subscribe(m.notifier.Emit)
	return b
}

// limiter returns the rate limiter for name, creating it on first use.
func (m *Manager) limiter(name string, cfg RateLimiterConfig) *RateLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rl, ok := m.limiters[name]; ok {
		return rl
	}

	if cfg.Clock == nil {
		cfg.Clock = m.clock
	}
	rl := NewRateLimiter(cfg)
	m.limiters[name] = rl
	return rl
}

// HealthStatus aggregates breaker and bulkhead health for operational
// dashboards.
type HealthStatus struct {
	// Healthy is true when no breaker is open or half-open and no
	// bulkhead queue is saturated.
	Healthy bool

	// Issues lists human-readable problems found.
	Issues []string

	// Breakers summarizes the breaker fleet.
	Breakers RegistryHealth

	// Bulkheads maps operation name to bulkhead metrics.
	Bulkheads map[string]BulkheadMetrics
}

// HealthStatus reports the current aggregate health.
func (m *Manager) HealthStatus() HealthStatus {
	status := HealthStatus{
		Breakers:  m.breakers.Health(),
		Bulkheads: make(map[string]BulkheadMetrics),
	}

	for _, bh := range status.Breakers.Breakers {
		if bh.State != StateClosed {
			status.Issues = append(status.Issues,
				fmt.Sprintf("circuit breaker %q is %s", bh.Name, bh.State))
		}
	}

	m.mu.Lock()
	bulkheads := make(map[string]*Bulkhead, len(m.bulkheads))
	for name, b := range m.bulkheads {
		bulkheads[name] = b
	}
	m.mu.Unlock()

	for name, b := range bulkheads {
		bm := b.Metrics()
		status.Bulkheads[name] = bm
		if bm.Queued >= bm.MaxQueueSize && bm.MaxQueueSize > 0 {
			status.Issues = append(status.Issues,
				fmt.Sprintf("bulkhead %q queue is saturated (%d queued)", name, bm.Queued))
		}
	}

	status.Healthy = len(status.Issues) == 0
	return status
}

// ResetAll resets every breaker and clears every bulkhead queue. Used
// for operational recovery.
func (m *Manager) ResetAll() {
	m.breakers.ResetAll()

	m.mu.Lock()
	bulkheads := make([]*Bulkhead, 0, len(m.bulkheads))
	for _, b := range m.bulkheads {
		bulkheads = append(bulkheads, b)
	}
	m.mu.Unlock()

	for _, b := range bulkheads {
		b.ClearQueue()
	}

	m.notifier.Emit(Event{Type: EventReset, Time: m.clock.Now()})
}
