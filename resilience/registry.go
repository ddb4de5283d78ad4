package resilience

import (
	"sort"
	"sync"
)

// BreakerRegistry is a process-wide directory of circuit breakers with
// get-or-create semantics: one breaker instance per name, shared by all
// collaborators referencing that name. Construct one at process start
// and pass it by reference; multiple isolated registries are fine in
// tests.
type BreakerRegistry struct {
	defaults CircuitBreakerConfig
	notifier *Notifier

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	cancels  map[string]func()
}

// NewBreakerRegistry creates a registry. The defaults config is applied
// to breakers created by Get; the Name field is overwritten per breaker.
func NewBreakerRegistry(defaults CircuitBreakerConfig) *BreakerRegistry {
	return &BreakerRegistry{
		defaults: defaults,
		notifier: &Notifier{},
		breakers: make(map[string]*CircuitBreaker),
		cancels:  make(map[string]func()),
	}
}

// Get returns the breaker for name, creating it with the registry
// defaults on first use.
func (r *BreakerRegistry) Get(name string) *CircuitBreaker {
	cfg := r.defaults
	cfg.Name = name
	return r.GetWith(name, cfg)
}

// GetWith returns the breaker for name, creating it with cfg on first
// use. An existing breaker is returned as-is; cfg is ignored.
func (r *BreakerRegistry) GetWith(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[name]; ok {
		return cb
	}

	cfg.Name = name
	cb := NewCircuitBreaker(cfg)
	r.breakers[name] = cb
	// Forward the breaker's events so one subscription observes the fleet.
	r.cancels[name] = cb.Subscribe(r.notifier.Emit)
	return cb
}

// Names returns the registered breaker names, sorted.
func (r *BreakerRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove deletes the breaker for name. Idempotent.
func (r *BreakerRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cancel, ok := r.cancels[name]; ok {
		cancel()
		delete(r.cancels, name)
	}
	delete(r.breakers, name)
}

// ResetAll resets every registered breaker.
func (r *BreakerRegistry) ResetAll() {
	for _, cb := range r.snapshot() {
		cb.Reset()
	}
}

// Subscribe registers a listener that receives every event from every
// breaker in the registry, in emission order.
func (r *BreakerRegistry) Subscribe(fn Listener) func() {
	return r.notifier.Subscribe(fn)
}

// BreakerHealth summarizes one breaker for health reporting.
type BreakerHealth struct {
	Name        string
	State       CircuitState
	FailureRate float64
}

// RegistryHealth aggregates breaker health across the registry.
type RegistryHealth struct {
	// Healthy counts breakers in the closed state.
	Healthy int
	// Unhealthy counts breakers that are open or half-open.
	Unhealthy int
	// Breakers lists every breaker, sorted by descending failure rate.
	Breakers []BreakerHealth
}

// Health reports aggregate breaker health. Breakers are ordered by
// descending rolling-window failure rate, so the first n entries are
// the top-n worst dependencies.
func (r *BreakerRegistry) Health() RegistryHealth {
	var h RegistryHealth
	for _, cb := range r.snapshot() {
		m := cb.Metrics()
		if m.State == StateClosed {
			h.Healthy++
		} else {
			h.Unhealthy++
		}
		h.Breakers = append(h.Breakers, BreakerHealth{
			Name:        cb.Name(),
			State:       m.State,
			FailureRate: m.FailureRate,
		})
	}
	sort.Slice(h.Breakers, func(i, j int) bool {
		if h.Breakers[i].FailureRate != h.Breakers[j].FailureRate {
			return h.Breakers[i].FailureRate > h.Breakers[j].FailureRate
		}
		return h.Breakers[i].Name < h.Breakers[j].Name
	})
	return h
}

// snapshot copies the breaker set so callers can iterate without the lock.
func (r *BreakerRegistry) snapshot() []*CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		breakers = append(breakers, r.breakers[name])
	}
	return breakers
}
