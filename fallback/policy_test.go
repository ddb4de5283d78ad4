package fallback

import (
	"testing"
	"time"
)

func TestFreshnessPolicy_ShouldStore(t *testing.T) {
	tests := []struct {
		name   string
		policy FreshnessPolicy
		want   bool
	}{
		{"default policy", DefaultFreshnessPolicy(), true},
		{"no-store policy", NoStorePolicy(), false},
		{"explicit TTL", FreshnessPolicy{DefaultTTL: time.Second}, true},
		{"zero TTL", FreshnessPolicy{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.ShouldStore(); got != tt.want {
				t.Errorf("ShouldStore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFreshnessPolicy_EffectiveTTL(t *testing.T) {
	policy := FreshnessPolicy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     time.Hour,
	}

	tests := []struct {
		name     string
		override time.Duration
		want     time.Duration
	}{
		{"no override uses default", 0, 5 * time.Minute},
		{"negative override uses default", -time.Second, 5 * time.Minute},
		{"override within max", 10 * time.Minute, 10 * time.Minute},
		{"override clamped to max", 2 * time.Hour, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.EffectiveTTL(tt.override); got != tt.want {
				t.Errorf("EffectiveTTL(%v) = %v, want %v", tt.override, got, tt.want)
			}
		})
	}
}

func TestFreshnessPolicy_NoMax(t *testing.T) {
	policy := FreshnessPolicy{DefaultTTL: time.Minute}

	if got := policy.EffectiveTTL(24 * time.Hour); got != 24*time.Hour {
		t.Errorf("EffectiveTTL() = %v, want unclamped 24h", got)
	}
}
