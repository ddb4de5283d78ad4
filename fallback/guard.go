package fallback

import (
	"context"
	"errors"

	"github.com/jonwraymond/faultops/resilience"
)

// ProducerFunc is the function signature for operations whose results can
// be served from the store when the live call fails.
type ProducerFunc func(ctx context.Context, operation string, args any) ([]byte, error)

// ServeRule determines whether a stored result may be served for the
// given failure. Returns true if degradation is allowed.
type ServeRule func(operation string, err error) bool

// DefaultServeRule serves stale results only for failures the resilience
// layer produced: open circuits, saturated bulkheads, timeouts and rate
// limits. Business errors from the operation itself are returned as-is.
func DefaultServeRule(_ string, err error) bool {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrCircuitTimeout),
		errors.Is(err, resilience.ErrQueueFull),
		errors.Is(err, resilience.ErrQueueTimeout),
		errors.Is(err, resilience.ErrQueueCleared),
		errors.Is(err, resilience.ErrTimeout),
		errors.Is(err, resilience.ErrRateLimitExceeded):
		return true
	default:
		return false
	}
}

// ServeAlways allows degradation for every failure.
func ServeAlways(string, error) bool { return true }

// Guard wraps operation execution with last-known-good degradation.
type Guard struct {
	store     Store
	keyer     Keyer
	policy    FreshnessPolicy
	serveRule ServeRule
}

// NewGuard creates a new fallback guard.
// If keyer is nil, DefaultKeyer is used. If serveRule is nil,
// DefaultServeRule is used.
func NewGuard(store Store, keyer Keyer, policy FreshnessPolicy, serveRule ServeRule) *Guard {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if serveRule == nil {
		serveRule = DefaultServeRule
	}
	return &Guard{
		store:     store,
		keyer:     keyer,
		policy:    policy,
		serveRule: serveRule,
	}
}

// Execute runs the operation, recording successes and degrading failures.
// On success the result is stored and returned. On failure the last stored
// result is served when the serve rule permits; otherwise the error is
// returned unchanged. Errors are never stored.
func (g *Guard) Execute(
	ctx context.Context,
	operation string,
	args any,
	producer ProducerFunc,
) ([]byte, error) {
	key, keyErr := g.keyer.Key(operation, args)

	result, err := producer(ctx, operation, args)
	if err == nil {
		if keyErr == nil && g.policy.ShouldStore() {
			_ = g.store.Set(ctx, key, result, g.policy.EffectiveTTL(0))
		}
		return result, nil
	}

	// Failure: consult the store when the failure class allows it.
	if keyErr == nil && g.serveRule(operation, err) {
		if stored, ok := g.store.Get(ctx, key); ok {
			return stored, nil
		}
	}

	return result, err
}

// Recover returns the stored result for the operation and args, or
// ErrNoFallback when nothing servable is stored.
func (g *Guard) Recover(ctx context.Context, operation string, args any) ([]byte, error) {
	key, err := g.keyer.Key(operation, args)
	if err != nil {
		return nil, err
	}
	if stored, ok := g.store.Get(ctx, key); ok {
		return stored, nil
	}
	return nil, ErrNoFallback
}

// Record stores a known-good result for the operation and args without
// executing anything. Useful for warming the store.
func (g *Guard) Record(ctx context.Context, operation string, args any, result []byte) error {
	key, err := g.keyer.Key(operation, args)
	if err != nil {
		return err
	}
	if !g.policy.ShouldStore() {
		return nil
	}
	return g.store.Set(ctx, key, result, g.policy.EffectiveTTL(0))
}

// PolicyFallback returns a fallback function for a resilience policy. The
// returned function absorbs an error when a stored result exists for the
// operation and args, and the sink receives the recovered bytes. Errors
// without a stored result propagate unchanged.
func (g *Guard) PolicyFallback(operation string, args any, sink func([]byte)) func(context.Context, error) error {
	return func(ctx context.Context, err error) error {
		if !g.serveRule(operation, err) {
			return err
		}
		stored, recoverErr := g.Recover(ctx, operation, args)
		if recoverErr != nil {
			return err
		}
		if sink != nil {
			sink(stored)
		}
		return nil
	}
}
