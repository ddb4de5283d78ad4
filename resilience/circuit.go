package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CircuitState represents the circuit breaker state.
type CircuitState int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed CircuitState = iota
	// StateOpen means the circuit is failing fast.
	StateOpen
	// StateHalfOpen means the circuit is probing recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the breaker in events and health reports.
	Name string

	// FailureThreshold is the number of consecutive failures that opens
	// the circuit once VolumeThreshold calls have been observed.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes in
	// half-open state that closes the circuit.
	// Default: 2
	SuccessThreshold int

	// VolumeThreshold is the minimum number of observed calls before any
	// trip condition is trusted.
	// Default: 10
	VolumeThreshold int

	// FailureRateThreshold opens the circuit when the rolling-window
	// failure rate reaches it. A negative value disables the rate
	// condition.
	// Default: 0.5
	FailureRateThreshold float64

	// SlowCallDuration is the duration at or above which a call counts
	// as slow. 0 disables slow-call tracking.
	SlowCallDuration time.Duration

	// SlowCallRateThreshold opens the circuit when the rolling-window
	// slow-call rate reaches it. Only evaluated when SlowCallDuration is
	// set. 0 disables the condition.
	SlowCallRateThreshold float64

	// ResetTimeout is how long the circuit stays open before a single
	// automatic transition to half-open.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// CallTimeout bounds each individual call. A timed-out call is
	// recorded as a failure and counted distinctly in metrics.
	// 0 disables the per-call timer.
	CallTimeout time.Duration

	// Clock drives state transitions and the rolling window.
	// Default: SystemClock
	Clock Clock
}

// CallMetrics holds per-breaker call counters. Counters accumulate
// monotonically and are cleared only by Reset.
type CallMetrics struct {
	Successes            int64
	Failures             int64
	Timeouts             int64
	SlowCalls            int64
	TotalCalls           int64
	ConsecutiveSuccesses int64
	ConsecutiveFailures  int64
	LastFailureTime      time.Time
}

// CircuitBreaker is a per-operation fault state machine that fails fast
// once a dependency is judged unhealthy. It communicates with the rest
// of the system exclusively through emitted events and has no knowledge
// of what it protects.
type CircuitBreaker struct {
	config   CircuitBreakerConfig
	notifier *Notifier

	mu               sync.Mutex
	state            CircuitState
	metrics          CallMetrics
	window           *rollingWindow
	openedAt         time.Time
	halfOpenInFlight int
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	if config.VolumeThreshold <= 0 {
		config.VolumeThreshold = 10
	}
	if config.FailureRateThreshold < 0 {
		config.FailureRateThreshold = 0
	} else if config.FailureRateThreshold == 0 {
		config.FailureRateThreshold = 0.5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.Clock == nil {
		config.Clock = SystemClock
	}

	return &CircuitBreaker{
		config:   config,
		notifier: &Notifier{},
		state:    StateClosed,
		window:   newRollingWindow(),
	}
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// Subscribe registers a listener for this breaker's events.
func (cb *CircuitBreaker) Subscribe(fn Listener) func() {
	return cb.notifier.Subscribe(fn)
}

// Execute runs the operation through the circuit breaker. When the
// circuit is open the operation is not invoked and ErrCircuitOpen is
// returned immediately. The triggering error is always rethrown to the
// caller; the breaker recovers nothing itself.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		cb.notifier.Emit(Event{
			Type: EventRejected,
			Name: cb.config.Name,
			Time: cb.config.Clock.Now(),
			Err:  err,
		})
		return err
	}

	start := cb.config.Clock.Now()
	err, timedOut := cb.call(ctx, op)
	cb.record(err, timedOut, cb.config.Clock.Now().Sub(start))
	return err
}

// State returns the current circuit state, applying the automatic
// open-to-half-open transition if the reset timeout has elapsed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	var change *Event
	state := cb.stateLocked(&change)
	cb.mu.Unlock()

	if change != nil {
		cb.notifier.Emit(*change)
	}
	return state
}

// Metrics returns a snapshot of the breaker's metrics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	var change *Event
	state := cb.stateLocked(&change)
	now := cb.config.Clock.Now()
	m := CircuitBreakerMetrics{
		State:        state,
		Calls:        cb.metrics,
		FailureRate:  cb.window.failureRate(now),
		SlowCallRate: 0,
		WindowSize:   cb.window.size(now),
	}
	if cb.config.SlowCallDuration > 0 {
		m.SlowCallRate = cb.window.slowRate(now, cb.config.SlowCallDuration)
	}
	cb.mu.Unlock()

	if change != nil {
		cb.notifier.Emit(*change)
	}
	return m
}

// Reset clears all metrics and forces the circuit closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	now := cb.config.Clock.Now()
	var events []Event
	if cb.state != StateClosed {
		cb.transitionLocked(StateClosed, now, &events)
	}
	cb.metrics = CallMetrics{}
	cb.window.reset()
	cb.halfOpenInFlight = 0
	cb.mu.Unlock()

	for _, e := range events {
		cb.notifier.Emit(e)
	}
	cb.notifier.Emit(Event{Type: EventReset, Name: cb.config.Name, Time: now})
}

// ForceOpen forces the circuit open. The reset timeout applies as for a
// tripped circuit.
func (cb *CircuitBreaker) ForceOpen() {
	cb.force(StateOpen)
}

// ForceClose forces the circuit closed without clearing metrics.
func (cb *CircuitBreaker) ForceClose() {
	cb.force(StateClosed)
}

func (cb *CircuitBreaker) force(state CircuitState) {
	cb.mu.Lock()
	var events []Event
	if cb.state != state {
		cb.transitionLocked(state, cb.config.Clock.Now(), &events)
	}
	cb.mu.Unlock()

	for _, e := range events {
		cb.notifier.Emit(e)
	}
}

// admit decides whether a call may proceed.
func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	var change *Event
	state := cb.stateLocked(&change)

	var err error
	switch state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		// Bound in-flight probes to the number of successes needed to close.
		if cb.halfOpenInFlight >= cb.config.SuccessThreshold {
			err = ErrCircuitOpen
		} else {
			cb.halfOpenInFlight++
		}
	}
	cb.mu.Unlock()

	if change != nil {
		cb.notifier.Emit(*change)
	}
	return err
}

// call runs the operation, racing it against CallTimeout when set.
func (cb *CircuitBreaker) call(ctx context.Context, op func(context.Context) error) (err error, timedOut bool) {
	if cb.config.CallTimeout <= 0 {
		return op(ctx), false
	}

	ctx, cancel := context.WithTimeout(ctx, cb.config.CallTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err, false
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrCircuitTimeout, true
		}
		return ctx.Err(), false
	}
}

// record updates metrics and applies state transitions after a call.
func (cb *CircuitBreaker) record(err error, timedOut bool, duration time.Duration) {
	cb.mu.Lock()
	now := cb.config.Clock.Now()
	success := err == nil

	m := &cb.metrics
	m.TotalCalls++
	if success {
		m.Successes++
		m.ConsecutiveSuccesses++
		m.ConsecutiveFailures = 0
	} else {
		m.Failures++
		m.ConsecutiveFailures++
		m.ConsecutiveSuccesses = 0
		m.LastFailureTime = now
		if timedOut {
			m.Timeouts++
		}
	}
	if cb.config.SlowCallDuration > 0 && duration >= cb.config.SlowCallDuration {
		m.SlowCalls++
	}
	cb.window.record(now, success, duration)

	var events []Event
	switch cb.state {
	case StateClosed:
		if cb.shouldTripLocked(now) {
			cb.transitionLocked(StateOpen, now, &events)
		}
	case StateHalfOpen:
		if cb.halfOpenInFlight > 0 {
			cb.halfOpenInFlight--
		}
		if !success {
			// No partial tolerance while probing.
			cb.transitionLocked(StateOpen, now, &events)
		} else if m.ConsecutiveSuccesses >= int64(cb.config.SuccessThreshold) {
			cb.transitionLocked(StateClosed, now, &events)
		}
	case StateOpen:
		// A call admitted before the trip settled late; record only.
	}
	cb.mu.Unlock()

	cb.notifier.Emit(Event{
		Type:     EventCall,
		Name:     cb.config.Name,
		Time:     now,
		Err:      err,
		Duration: duration,
	})
	for _, e := range events {
		cb.notifier.Emit(e)
	}
}

// shouldTripLocked evaluates the closed-state trip conditions.
func (cb *CircuitBreaker) shouldTripLocked(now time.Time) bool {
	m := &cb.metrics
	if m.TotalCalls < int64(cb.config.VolumeThreshold) {
		return false
	}
	if m.ConsecutiveFailures >= int64(cb.config.FailureThreshold) {
		return true
	}
	if cb.config.FailureRateThreshold > 0 &&
		cb.window.failureRate(now) >= cb.config.FailureRateThreshold {
		return true
	}
	if cb.config.SlowCallDuration > 0 && cb.config.SlowCallRateThreshold > 0 &&
		cb.window.slowRate(now, cb.config.SlowCallDuration) >= cb.config.SlowCallRateThreshold {
		return true
	}
	return false
}

// stateLocked returns the effective state, applying the single scheduled
// open-to-half-open transition once the reset timeout has elapsed.
// Rejected calls while open do not re-arm the timer.
func (cb *CircuitBreaker) stateLocked(change **Event) CircuitState {
	if cb.state == StateOpen {
		now := cb.config.Clock.Now()
		if now.Sub(cb.openedAt) >= cb.config.ResetTimeout {
			cb.state = StateHalfOpen
			cb.halfOpenInFlight = 0
			cb.metrics.ConsecutiveSuccesses = 0
			*change = &Event{
				Type: EventStateChange,
				Name: cb.config.Name,
				Time: now,
				From: StateOpen,
				To:   StateHalfOpen,
			}
		}
	}
	return cb.state
}

// transitionLocked moves to state and appends the stateChange event.
func (cb *CircuitBreaker) transitionLocked(state CircuitState, now time.Time, events *[]Event) {
	from := cb.state
	cb.state = state
	switch state {
	case StateOpen:
		cb.openedAt = now
	case StateHalfOpen:
		cb.halfOpenInFlight = 0
	}
	*events = append(*events, Event{
		Type: EventStateChange,
		Name: cb.config.Name,
		Time: now,
		From: from,
		To:   state,
	})
}

// CircuitBreakerMetrics is a snapshot of breaker statistics.
type CircuitBreakerMetrics struct {
	State        CircuitState
	Calls        CallMetrics
	FailureRate  float64
	SlowCallRate float64
	WindowSize   int
}
