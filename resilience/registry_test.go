package resilience

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestBreakerRegistry_GetOrCreate(t *testing.T) {
	r := NewBreakerRegistry(CircuitBreakerConfig{})

	a := r.Get("db")
	b := r.Get("db")
	if a != b {
		t.Error("Get() returned different instances for the same name")
	}
	if a.Name() != "db" {
		t.Errorf("Name() = %q, want db", a.Name())
	}

	c := r.Get("api")
	if c == a {
		t.Error("Get() returned the same instance for different names")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "api" || names[1] != "db" {
		t.Errorf("Names() = %v, want [api db]", names)
	}
}

func TestBreakerRegistry_GetWithIgnoresConfigForExisting(t *testing.T) {
	r := NewBreakerRegistry(CircuitBreakerConfig{FailureThreshold: 3})

	a := r.Get("db")
	b := r.GetWith("db", CircuitBreakerConfig{FailureThreshold: 99})
	if a != b {
		t.Error("GetWith() replaced an existing breaker")
	}
	if a.config.FailureThreshold != 3 {
		t.Errorf("FailureThreshold = %d, want 3", a.config.FailureThreshold)
	}
}

func TestBreakerRegistry_Remove(t *testing.T) {
	r := NewBreakerRegistry(CircuitBreakerConfig{})

	a := r.Get("db")
	r.Remove("db")
	r.Remove("db") // idempotent

	if b := r.Get("db"); b == a {
		t.Error("Get() after Remove() returned the removed instance")
	}
}

func TestBreakerRegistry_Health(t *testing.T) {
	r := NewBreakerRegistry(CircuitBreakerConfig{
		FailureThreshold:     1,
		VolumeThreshold:      1,
		FailureRateThreshold: 1,
		ResetTimeout:         time.Hour,
	})

	r.Get("healthy-1")
	r.Get("healthy-2")
	bad := r.Get("flaky")
	_ = bad.Execute(context.Background(), failing)

	h := r.Health()
	if h.Healthy != 2 {
		t.Errorf("Healthy = %d, want 2", h.Healthy)
	}
	if h.Unhealthy != 1 {
		t.Errorf("Unhealthy = %d, want 1", h.Unhealthy)
	}
	if len(h.Breakers) != 3 {
		t.Fatalf("Breakers = %d entries, want 3", len(h.Breakers))
	}
	// Worst failure rate first.
	if h.Breakers[0].Name != "flaky" {
		t.Errorf("Top breaker = %q, want flaky", h.Breakers[0].Name)
	}
	if h.Breakers[0].State != StateOpen {
		t.Errorf("Top breaker state = %v, want open", h.Breakers[0].State)
	}
}

func TestBreakerRegistry_ResetAll(t *testing.T) {
	r := NewBreakerRegistry(CircuitBreakerConfig{
		FailureThreshold:     1,
		VolumeThreshold:      1,
		FailureRateThreshold: 1,
		ResetTimeout:         time.Hour,
	})

	for _, name := range []string{"a", "b"} {
		_ = r.Get(name).Execute(context.Background(), failing)
	}
	if h := r.Health(); h.Unhealthy != 2 {
		t.Fatalf("Unhealthy = %d, want 2", h.Unhealthy)
	}

	r.ResetAll()

	h := r.Health()
	if h.Unhealthy != 0 || h.Healthy != 2 {
		t.Errorf("After ResetAll, healthy = %d unhealthy = %d, want 2/0", h.Healthy, h.Unhealthy)
	}
}

func TestBreakerRegistry_ForwardsEvents(t *testing.T) {
	r := NewBreakerRegistry(CircuitBreakerConfig{VolumeThreshold: 100})

	var mu sync.Mutex
	var seen []string
	cancel := r.Subscribe(func(e Event) {
		mu.Lock()
		seen = append(seen, e.Name)
		mu.Unlock()
	})

	_ = r.Get("a").Execute(context.Background(), succeeding)
	_ = r.Get("b").Execute(context.Background(), succeeding)

	mu.Lock()
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("Forwarded events = %v, want [a b]", seen)
	}
	mu.Unlock()

	cancel()
	_ = r.Get("a").Execute(context.Background(), succeeding)

	mu.Lock()
	if len(seen) != 2 {
		t.Errorf("Listener received events after unsubscribe: %v", seen)
	}
	mu.Unlock()
}
