package fallback

import "time"

// FreshnessPolicy bounds how long stored results remain servable.
type FreshnessPolicy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, storage is disabled by default.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultFreshnessPolicy returns the default freshness policy.
// DefaultTTL: 5 minutes, MaxTTL: 1 hour
func DefaultFreshnessPolicy() FreshnessPolicy {
	return FreshnessPolicy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     1 * time.Hour,
	}
}

// NoStorePolicy returns a policy that disables storage entirely.
func NoStorePolicy() FreshnessPolicy {
	return FreshnessPolicy{}
}

// ShouldStore returns true if storage is enabled by this policy.
func (p FreshnessPolicy) ShouldStore() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p FreshnessPolicy) EffectiveTTL(override time.Duration) time.Duration {
	// Use default if no override (or negative override)
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	// Clamp to MaxTTL if set
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
