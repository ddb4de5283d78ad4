package resilience

import (
	"testing"
	"time"
)

func TestRollingWindow_Rates(t *testing.T) {
	w := newRollingWindow()
	now := time.Unix(1700000000, 0)

	w.record(now, true, 10*time.Millisecond)
	w.record(now, false, 10*time.Millisecond)
	w.record(now, false, 500*time.Millisecond)
	w.record(now, true, 500*time.Millisecond)

	if got := w.failureRate(now); got != 0.5 {
		t.Errorf("failureRate() = %v, want 0.5", got)
	}
	if got := w.slowRate(now, 100*time.Millisecond); got != 0.5 {
		t.Errorf("slowRate() = %v, want 0.5", got)
	}
	if got := w.size(now); got != 4 {
		t.Errorf("size() = %d, want 4", got)
	}
}

func TestRollingWindow_EmptyRatesAreZero(t *testing.T) {
	w := newRollingWindow()
	now := time.Unix(1700000000, 0)

	if got := w.failureRate(now); got != 0 {
		t.Errorf("failureRate() = %v, want 0", got)
	}
	if got := w.slowRate(now, time.Second); got != 0 {
		t.Errorf("slowRate() = %v, want 0", got)
	}
}

func TestRollingWindow_HorizonEviction(t *testing.T) {
	w := newRollingWindow()
	start := time.Unix(1700000000, 0)

	w.record(start, false, time.Millisecond)
	w.record(start.Add(30*time.Second), false, time.Millisecond)

	// 61s later the first sample is outside the horizon.
	later := start.Add(61 * time.Second)
	if got := w.size(later); got != 1 {
		t.Errorf("size() after horizon = %d, want 1", got)
	}

	// 91s later both are gone and rates read clean.
	latest := start.Add(91 * time.Second)
	if got := w.failureRate(latest); got != 0 {
		t.Errorf("failureRate() after full eviction = %v, want 0", got)
	}
}

func TestRollingWindow_SizeCap(t *testing.T) {
	w := newRollingWindow()
	now := time.Unix(1700000000, 0)

	for i := 0; i < windowMaxSize+100; i++ {
		w.record(now, i%2 == 0, time.Millisecond)
	}

	if got := w.size(now); got != windowMaxSize {
		t.Errorf("size() = %d, want cap %d", got, windowMaxSize)
	}
}

func TestRollingWindow_Reset(t *testing.T) {
	w := newRollingWindow()
	now := time.Unix(1700000000, 0)

	w.record(now, false, time.Millisecond)
	w.reset()

	if got := w.size(now); got != 0 {
		t.Errorf("size() after reset = %d, want 0", got)
	}
}
