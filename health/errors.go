package health

import "errors"

var (
	// ErrCheckFailed indicates a guarded component reported problems. The
	// result's Issues list carries the specifics.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a probe did not answer within the
	// aggregator's deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under the
	// requested component name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
