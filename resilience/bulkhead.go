package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Number of recent execution durations retained for the rolling average.
const execTimeWindow = 100

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// Name identifies the bulkhead in events and health reports.
	Name string

	// MaxConcurrent is the maximum number of concurrent executions.
	// Default: 10
	MaxConcurrent int

	// MaxQueueSize is the maximum number of queued executions. Demand
	// beyond the active pool and the queue is rejected with ErrQueueFull.
	// Negative disables queueing entirely.
	// Default: 10
	MaxQueueSize int

	// QueueTimeout bounds how long a queued execution waits for a slot.
	// 0 means queued entries wait until promoted or cleared.
	QueueTimeout time.Duration

	// Clock drives queue timeouts and execution timing.
	// Default: SystemClock
	Clock Clock
}

// queuedExecution is one pending entry in the bulkhead queue. Entries
// are promoted strictly in FIFO arrival order.
type queuedExecution struct {
	id         string
	ready      chan error // nil: slot assigned; non-nil: rejected
	enqueuedAt time.Time
}

// Bulkhead bounds concurrent executions of a named resource pool and
// queues excess requests up to a capacity limit. It is the admission
// control boundary: once the active pool and the queue are both
// saturated, new demand is shed rather than accepted.
type Bulkhead struct {
	config   BulkheadConfig
	notifier *Notifier

	mu        sync.Mutex
	active    int
	queue     []*queuedExecution
	completed int64
	rejected  int64
	timeouts  int64
	errors    int64
	execTimes []time.Duration
	execNext  int
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	// Apply defaults
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if config.MaxQueueSize < 0 {
		config.MaxQueueSize = 0
	} else if config.MaxQueueSize == 0 {
		config.MaxQueueSize = 10
	}
	if config.Clock == nil {
		config.Clock = SystemClock
	}

	return &Bulkhead{
		config:   config,
		notifier: &Notifier{},
	}
}

// Name returns the bulkhead name.
func (b *Bulkhead) Name() string {
	return b.config.Name
}

// Subscribe registers a listener for this bulkhead's events.
func (b *Bulkhead) Subscribe(fn Listener) func() {
	return b.notifier.Subscribe(fn)
}

// Execute runs the operation within the bulkhead. It executes
// immediately when a concurrency slot is free, queues when the queue has
// room, and rejects with ErrQueueFull otherwise. A queued caller's wait
// is bounded by QueueTimeout, after which the entry is removed and
// rejected with ErrQueueTimeout.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	b.mu.Lock()

	if b.active < b.config.MaxConcurrent {
		b.active++
		b.mu.Unlock()
		return b.run(ctx, op)
	}

	if len(b.queue) >= b.config.MaxQueueSize {
		b.rejected++
		depth := len(b.queue)
		b.mu.Unlock()
		b.notifier.Emit(Event{
			Type:       EventRejected,
			Name:       b.config.Name,
			Time:       b.config.Clock.Now(),
			Err:        ErrQueueFull,
			QueueDepth: depth,
		})
		return ErrQueueFull
	}

	entry := &queuedExecution{
		id:         uuid.NewString(),
		ready:      make(chan error, 1),
		enqueuedAt: b.config.Clock.Now(),
	}
	b.queue = append(b.queue, entry)
	depth := len(b.queue)
	b.mu.Unlock()

	b.notifier.Emit(Event{
		Type:       EventQueued,
		Name:       b.config.Name,
		Time:       entry.enqueuedAt,
		QueueDepth: depth,
	})

	var timeoutCh <-chan time.Time
	if b.config.QueueTimeout > 0 {
		timeoutCh = b.config.Clock.After(b.config.QueueTimeout)
	}

	select {
	case err := <-entry.ready:
		if err != nil {
			return err
		}
		return b.run(ctx, op)

	case <-timeoutCh:
		if b.remove(entry.id) {
			waited := b.config.Clock.Now().Sub(entry.enqueuedAt)
			b.mu.Lock()
			b.timeouts++
			b.mu.Unlock()
			b.notifier.Emit(Event{
				Type:     EventTimeout,
				Name:     b.config.Name,
				Time:     b.config.Clock.Now(),
				Err:      ErrQueueTimeout,
				Duration: waited,
			})
			return ErrQueueTimeout
		}
		// Lost the race: the slot was already assigned to this entry.
		if err := <-entry.ready; err != nil {
			return err
		}
		return b.run(ctx, op)

	case <-ctx.Done():
		if b.remove(entry.id) {
			return ctx.Err()
		}
		if err := <-entry.ready; err == nil {
			b.finishSlot()
		}
		return ctx.Err()
	}
}

// run executes the operation holding a slot, then hands the slot to the
// queue head or frees it.
func (b *Bulkhead) run(ctx context.Context, op func(context.Context) error) error {
	start := b.config.Clock.Now()
	err := op(ctx)
	elapsed := b.config.Clock.Now().Sub(start)

	b.mu.Lock()
	b.completed++
	if err != nil {
		b.errors++
	}
	if len(b.execTimes) < execTimeWindow {
		b.execTimes = append(b.execTimes, elapsed)
	} else {
		b.execTimes[b.execNext] = elapsed
		b.execNext = (b.execNext + 1) % execTimeWindow
	}
	b.mu.Unlock()

	b.finishSlot()
	return err
}

// finishSlot promotes exactly one queued entry (FIFO) or releases the
// slot. The slot transfers to the promoted entry without ever exceeding
// MaxConcurrent.
func (b *Bulkhead) finishSlot() {
	b.mu.Lock()
	var promoted *queuedExecution
	if len(b.queue) > 0 {
		promoted = b.queue[0]
		b.queue = b.queue[1:]
	} else {
		b.active--
	}
	b.mu.Unlock()

	if promoted != nil {
		promoted.ready <- nil
	}
}

// remove deletes a queued entry by id. Returns false when the entry has
// already been promoted or removed.
func (b *Bulkhead) remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.queue {
		if e.id == id {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			return true
		}
	}
	return false
}

// ClearQueue rejects every pending entry with ErrQueueCleared. Active
// executions are unaffected.
func (b *Bulkhead) ClearQueue() {
	b.mu.Lock()
	cleared := b.queue
	b.queue = nil
	b.rejected += int64(len(cleared))
	b.mu.Unlock()

	now := b.config.Clock.Now()
	for _, e := range cleared {
		e.ready <- ErrQueueCleared
		b.notifier.Emit(Event{
			Type: EventRejected,
			Name: b.config.Name,
			Time: now,
			Err:  ErrQueueCleared,
		})
	}
}

// Metrics returns a snapshot of bulkhead statistics.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	var avg time.Duration
	if len(b.execTimes) > 0 {
		var total time.Duration
		for _, d := range b.execTimes {
			total += d
		}
		avg = total / time.Duration(len(b.execTimes))
	}

	return BulkheadMetrics{
		Active:        b.active,
		Queued:        len(b.queue),
		Completed:     b.completed,
		Rejected:      b.rejected,
		Timeouts:      b.timeouts,
		Errors:        b.errors,
		AvgExecTime:   avg,
		MaxConcurrent: b.config.MaxConcurrent,
		MaxQueueSize:  b.config.MaxQueueSize,
	}
}

// BulkheadMetrics contains bulkhead statistics.
type BulkheadMetrics struct {
	Active        int
	Queued        int
	Completed     int64
	Rejected      int64
	Timeouts      int64
	Errors        int64
	AvgExecTime   time.Duration
	MaxConcurrent int
	MaxQueueSize  int
}
