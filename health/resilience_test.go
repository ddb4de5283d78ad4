package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/faultops/resilience"
)

func TestBreakerChecker_States(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:         "payments",
		ResetTimeout: time.Hour,
	})
	checker := NewBreakerChecker(cb)

	if checker.Name() != "circuit-breaker:payments" {
		t.Errorf("Name() = %q", checker.Name())
	}

	t.Run("closed is healthy", func(t *testing.T) {
		result := checker.Check(context.Background())
		if result.Status != StatusHealthy {
			t.Errorf("Status = %v, want healthy", result.Status)
		}
		if result.Details["state"] != "closed" {
			t.Errorf("state detail = %v", result.Details["state"])
		}
	})

	t.Run("open is unhealthy", func(t *testing.T) {
		cb.ForceOpen()
		result := checker.Check(context.Background())
		if result.Status != StatusUnhealthy {
			t.Errorf("Status = %v, want unhealthy", result.Status)
		}
		if !errors.Is(result.Error, resilience.ErrCircuitOpen) {
			t.Errorf("Error = %v, want ErrCircuitOpen", result.Error)
		}
	})

	t.Run("closed again after reset", func(t *testing.T) {
		cb.Reset()
		result := checker.Check(context.Background())
		if result.Status != StatusHealthy {
			t.Errorf("Status = %v, want healthy", result.Status)
		}
	})
}

func TestBulkheadChecker(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	b := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "payments",
		MaxConcurrent: 1,
		MaxQueueSize:  2,
	})
	checker := NewBulkheadChecker(b)

	if checker.Name() != "bulkhead:payments" {
		t.Errorf("Name() = %q", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Fatalf("idle bulkhead Status = %v, want healthy", result.Status)
	}

	// Occupy the slot and fill the queue.
	block := func(ctx context.Context) error {
		<-done
		return nil
	}
	for i := 0; i < 3; i++ {
		go func() { _ = b.Execute(context.Background(), block) }()
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m := b.Metrics(); m.Queued == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	result = checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("saturated bulkhead Status = %v, want unhealthy", result.Status)
	}
	if !errors.Is(result.Error, resilience.ErrQueueFull) {
		t.Errorf("Error = %v, want ErrQueueFull", result.Error)
	}
}

func TestBulkheadChecker_QueueDisabled(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "noqueue",
		MaxConcurrent: 1,
		MaxQueueSize:  -1,
	})
	checker := NewBulkheadChecker(b)

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy when queue disabled", result.Status)
	}
}

func TestManagerChecker(t *testing.T) {
	m := resilience.NewManager(resilience.ManagerConfig{})
	checker := NewManagerChecker(m)

	p := resilience.Policy{CircuitBreaker: &resilience.CircuitBreakerConfig{VolumeThreshold: 100}}
	_ = m.Execute(context.Background(), "svc", func(ctx context.Context) error {
		return nil
	}, p)

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Fatalf("Status = %v, want healthy; details %v", result.Status, result.Details)
	}

	m.Breakers().Get("svc").ForceOpen()

	result = checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy after forcing breaker open", result.Status)
	}
	if len(result.Issues) == 0 {
		t.Error("expected issue list on unhealthy result")
	}

	m.ResetAll()

	result = checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy after reset", result.Status)
	}
}

func TestRegisterManager(t *testing.T) {
	m := resilience.NewManager(resilience.ManagerConfig{})
	p := resilience.Policy{CircuitBreaker: &resilience.CircuitBreakerConfig{VolumeThreshold: 100}}
	_ = m.Execute(context.Background(), "svc", func(ctx context.Context) error {
		return nil
	}, p)

	agg := NewAggregator()
	RegisterManager(agg, m)

	names := agg.CheckerNames()
	wantNames := map[string]bool{
		"resilience-manager":  false,
		"circuit-breaker:svc": false,
	}
	for _, n := range names {
		if _, ok := wantNames[n]; ok {
			wantNames[n] = true
		}
	}
	for n, seen := range wantNames {
		if !seen {
			t.Errorf("checker %q not registered", n)
		}
	}

	results := agg.CheckAll(context.Background())
	if agg.OverallStatus(results) != StatusHealthy {
		t.Errorf("overall status = %v, want healthy", agg.OverallStatus(results))
	}
}
