package resilience

import (
	"sync"
	"time"
)

// EventType identifies a lifecycle event emitted by a primitive.
type EventType string

const (
	// EventCall is emitted after every executed call, success or failure.
	EventCall EventType = "call"
	// EventStateChange is emitted on every circuit state transition.
	EventStateChange EventType = "stateChange"
	// EventQueued is emitted when a bulkhead queues an execution.
	EventQueued EventType = "queued"
	// EventRejected is emitted when admission is denied (open circuit,
	// full queue, rate limit).
	EventRejected EventType = "rejected"
	// EventTimeout is emitted when a queued entry or call times out.
	EventTimeout EventType = "timeout"
	// EventReset is emitted on manual reset of a primitive.
	EventReset EventType = "reset"
	// EventExecutionStarted is emitted by the manager before a pipeline runs.
	EventExecutionStarted EventType = "executionStarted"
	// EventExecutionCompleted is emitted by the manager after a pipeline settles.
	EventExecutionCompleted EventType = "executionCompleted"
)

// Event is a lifecycle notification. Events are consumed by logging,
// metrics and tracing collaborators, never by business logic.
type Event struct {
	// Type is the event kind.
	Type EventType

	// Name is the breaker, bulkhead or operation name that emitted it.
	Name string

	// Time is when the event was emitted.
	Time time.Time

	// From and To carry the transition for EventStateChange.
	From, To CircuitState

	// Err is the call or rejection error, if any.
	Err error

	// Duration is the call duration for EventCall and
	// EventExecutionCompleted, or the wait for EventTimeout.
	Duration time.Duration

	// QueueDepth is the bulkhead queue length after the event.
	QueueDepth int
}

// Listener receives lifecycle events. Listeners are invoked synchronously
// in subscription order and must not block.
type Listener func(Event)

// Notifier fans events out to zero or more listeners in emission order.
// The zero value is ready to use.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs []subscription
}

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers a listener and returns a function that removes it.
func (n *Notifier) Subscribe(fn Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.next++
	id := n.next
	n.subs = append(n.subs, subscription{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers the event to every subscribed listener in order.
func (n *Notifier) Emit(e Event) {
	n.mu.Lock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	// Deliver outside the lock so listeners may subscribe or unsubscribe.
	for _, s := range subs {
		s.fn(e)
	}
}
