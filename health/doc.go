// Package health provides health checking primitives for resilience
// components.
//
// This package implements a generic health checking framework used to
// monitor circuit breakers, bulkheads and whole resilience managers. It
// provides interfaces for defining health checks, aggregating results from
// multiple checkers, and exposing health status via HTTP endpoints.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Basic Usage
//
//	// Watch a circuit breaker
//	cbCheck := health.NewBreakerChecker(breaker)
//
//	// Check health
//	result := cbCheck.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("Circuit open: %s", result.Message)
//	}
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single composite check:
//
//	agg := health.NewAggregator()
//	agg.Register("payments-breaker", health.NewBreakerChecker(cb))
//	agg.Register("payments-bulkhead", health.NewBulkheadChecker(bh))
//	agg.Register("manager", health.NewManagerChecker(mgr))
//
//	// Check all components
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with component checks
//	http.Handle("/readyz", health.ReadinessHandler(aggregator))
//
//	// Detailed health status
//	http.Handle("/health", health.DetailedHandler(aggregator))
package health
