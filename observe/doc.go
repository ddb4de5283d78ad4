// Package observe provides observability primitives for resilient
// operation execution.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into a resilience
// manager through the event bridge, or wrap individual calls directly.
package observe
