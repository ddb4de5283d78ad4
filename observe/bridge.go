package observe

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/faultops/resilience"
)

// GuardedFunc is the signature for guarded operation functions.
// This is the standard function signature that Bridge.Wrap wraps.
type GuardedFunc func(ctx context.Context, meta OperationMeta, op func(context.Context) error) error

// Bridge connects a resilience manager to the observability stack. Its
// listener translates resilience events into logs and metrics, and Wrap
// adds tracing around guarded execution.
//
// Contract:
//   - Concurrency: Listener and the wrapped GuardedFunc are thread-safe.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped functions are recorded and propagated unchanged.
type Bridge struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewBridge creates a new Bridge with the given observability components.
func NewBridge(tracer Tracer, metrics Metrics, logger Logger) *Bridge {
	return &Bridge{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// BridgeFromObserver creates a Bridge from an Observer.
// This is a convenience function for common use cases.
func BridgeFromObserver(obs Observer) (*Bridge, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewBridge(tracer, metrics, obs.Logger()), nil
}

// Wrap wraps a guarded execution with tracing, metrics, and logging.
func (b *Bridge) Wrap(fn GuardedFunc) GuardedFunc {
	return func(ctx context.Context, meta OperationMeta, op func(context.Context) error) error {
		if err := meta.Validate(); err != nil {
			return err
		}

		// Start span
		ctx, span := b.tracer.StartSpan(ctx, meta)

		// Record start time
		start := time.Now()

		// Execute the function
		err := fn(ctx, meta, op)

		// Calculate duration
		duration := time.Since(start)

		// End span (records error status if err != nil)
		b.tracer.EndSpan(span, err)

		// Record metrics
		b.metrics.RecordExecution(ctx, meta, duration, err)

		// Log the execution
		opLogger := b.logger.WithOperation(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			opLogger.Error(ctx, "guarded execution failed", fields...)
		} else {
			opLogger.Info(ctx, "guarded execution completed", fields...)
		}

		return err
	}
}

// Listener returns a resilience event listener that records state
// transitions, rejections and completions. Subscribe it on a Manager,
// a BreakerRegistry or an individual primitive.
func (b *Bridge) Listener() resilience.Listener {
	ctx := context.Background()
	return func(e resilience.Event) {
		switch e.Type {
		case resilience.EventStateChange:
			b.metrics.RecordTransition(ctx, e.Name, e.From.String(), e.To.String())
			b.logger.Warn(ctx, "circuit breaker state changed",
				Field{Key: "operation.name", Value: e.Name},
				Field{Key: "circuit.from", Value: e.From.String()},
				Field{Key: "circuit.to", Value: e.To.String()},
			)

		case resilience.EventRejected:
			layer := rejectionLayer(e.Err)
			b.metrics.RecordRejection(ctx, e.Name, layer)
			b.logger.Warn(ctx, "call rejected",
				Field{Key: "operation.name", Value: e.Name},
				Field{Key: "rejection.layer", Value: layer},
				Field{Key: "queue.depth", Value: e.QueueDepth},
			)

		case resilience.EventTimeout:
			b.logger.Warn(ctx, "call timed out",
				Field{Key: "operation.name", Value: e.Name},
				Field{Key: "duration_ms", Value: float64(e.Duration.Milliseconds())},
			)

		case resilience.EventExecutionCompleted:
			meta := OperationMeta{Name: e.Name}
			b.metrics.RecordExecution(ctx, meta, e.Duration, e.Err)
			if e.Err != nil {
				b.logger.Debug(ctx, "execution completed with error",
					Field{Key: "operation.name", Value: e.Name},
					Field{Key: "error", Value: e.Err.Error()},
				)
			}

		case resilience.EventReset:
			b.logger.Info(ctx, "resilience state reset",
				Field{Key: "operation.name", Value: e.Name},
			)
		}
	}
}

// rejectionLayer classifies a rejection error by the layer that produced it.
func rejectionLayer(err error) string {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit"
	case errors.Is(err, resilience.ErrQueueFull),
		errors.Is(err, resilience.ErrQueueTimeout),
		errors.Is(err, resilience.ErrQueueCleared):
		return "bulkhead"
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return "ratelimit"
	default:
		return "unknown"
	}
}
