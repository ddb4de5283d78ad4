package resilience

import "time"

// Rolling window retention limits.
const (
	windowHorizon = 60 * time.Second
	windowMaxSize = 1000
)

// callSample is one observed call in the rolling window.
type callSample struct {
	at       time.Time
	success  bool
	duration time.Duration
}

// rollingWindow retains recent call samples for a fixed horizon and a
// hard size cap, so rates reflect recent behavior rather than all-time
// totals. Not safe for concurrent use; callers hold the owning lock.
type rollingWindow struct {
	horizon time.Duration
	max     int
	samples []callSample
}

func newRollingWindow() *rollingWindow {
	return &rollingWindow{horizon: windowHorizon, max: windowMaxSize}
}

// record appends a sample, evicting anything outside the horizon and the
// oldest entries beyond the cap.
func (w *rollingWindow) record(now time.Time, success bool, duration time.Duration) {
	w.prune(now)
	w.samples = append(w.samples, callSample{at: now, success: success, duration: duration})
	if len(w.samples) > w.max {
		w.samples = w.samples[len(w.samples)-w.max:]
	}
}

// prune drops samples older than the horizon.
func (w *rollingWindow) prune(now time.Time) {
	cutoff := now.Add(-w.horizon)
	i := 0
	for i < len(w.samples) && !w.samples[i].at.After(cutoff) {
		i++
	}
	if i > 0 {
		w.samples = w.samples[i:]
	}
}

// size returns the number of retained samples.
func (w *rollingWindow) size(now time.Time) int {
	w.prune(now)
	return len(w.samples)
}

// failureRate returns the fraction of retained samples that failed,
// or 0 when the window is empty.
func (w *rollingWindow) failureRate(now time.Time) float64 {
	w.prune(now)
	if len(w.samples) == 0 {
		return 0
	}
	failed := 0
	for _, s := range w.samples {
		if !s.success {
			failed++
		}
	}
	return float64(failed) / float64(len(w.samples))
}

// slowRate returns the fraction of retained samples that ran at least
// threshold, or 0 when the window is empty.
func (w *rollingWindow) slowRate(now time.Time, threshold time.Duration) float64 {
	w.prune(now)
	if len(w.samples) == 0 {
		return 0
	}
	slow := 0
	for _, s := range w.samples {
		if s.duration >= threshold {
			slow++
		}
	}
	return float64(slow) / float64(len(w.samples))
}

// reset discards all samples.
func (w *rollingWindow) reset() {
	w.samples = w.samples[:0]
}
