// Package fallback provides last-known-good result storage for graceful
// degradation.
//
// It provides a Store interface with memory implementation, SHA-256-based
// key derivation, and freshness policies that bound how stale a served
// result may be. A Guard ties the pieces together: it records successful
// results and serves the stored copy when the live call is rejected or
// fails.
package fallback
