// Package resilience provides composable fault-tolerance primitives for
// calls to unreliable external dependencies.
//
// The package implements four layering primitives and a manager that
// combines them into a single execution pipeline per named operation.
//
// # Primitives
//
// The package provides the following primitives:
//
//   - Circuit Breaker: a per-operation fault state machine that fails
//     fast once a dependency is judged unhealthy, with consecutive-failure,
//     failure-rate and slow-call-rate trip conditions.
//
//   - Bulkhead: bounds concurrent executions of a named resource pool and
//     queues excess requests FIFO up to a capacity limit. Once the active
//     pool and the queue are both saturated, new demand is shed.
//
//   - Timeout: races a unit of work against a deadline, optionally
//     substituting a fallback result.
//
//   - Retry: re-invokes a unit of work on retryable failures using a
//     backoff schedule (exponential, linear, constant).
//
//   - Rate Limiter: token-bucket admission control for downstream request
//     rates.
//
// # Composition
//
// The Manager wraps an operation in a fixed order: Timeout innermost,
// then Bulkhead, then Retry, then Circuit Breaker outermost (Rate
// Limiter, when configured, sits outside all of them). The order is a
// contract: the breaker gates the entire retry loop, so an open circuit
// means no attempts, no bulkhead admission and no timeout race at all,
// while each individual retry attempt independently competes for a
// bulkhead slot and races its own timeout.
//
//	m := resilience.NewManager(resilience.ManagerConfig{})
//	err := m.Execute(ctx, "billing.charge", chargeCard, resilience.APIPolicy())
//
// Value-returning work goes through the generic helper:
//
//	user, err := resilience.Do(ctx, m, "db.user", loadUser, resilience.DatabasePolicy())
//
// # Observability
//
// Every call outcome, state transition, queue event and reset is emitted
// to subscribed listeners in emission order. Listeners are the only way
// the primitives communicate with the rest of the system; they carry no
// knowledge of what they protect.
//
// All state is process-local. Nothing is persisted and nothing is
// coordinated across instances: each process has an independent view of
// dependency health.
package resilience
