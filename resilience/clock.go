package resilience

import "time"

// Clock abstracts time so state transitions and backoff delays can be
// driven by virtual time in tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that delivers the time after d elapses.
	After(d time.Duration) <-chan time.Time
}

// systemClock is the wall-clock implementation.
type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the default wall-clock Clock.
var SystemClock Clock = systemClock{}
