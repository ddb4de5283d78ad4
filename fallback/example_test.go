package fallback_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/faultops/fallback"
	"github.com/jonwraymond/faultops/resilience"
)

func ExampleNewMemoryStore() {
	store := fallback.NewMemoryStore()
	ctx := context.Background()

	// Store a value
	_ = store.Set(ctx, "my-key", []byte("hello"), 5*time.Minute)

	// Retrieve the value
	value, ok := store.Get(ctx, "my-key")
	if ok {
		fmt.Println("Value:", string(value))
	}
	// Output:
	// Value: hello
}

func ExampleNewGuard() {
	guard := fallback.NewGuard(
		fallback.NewMemoryStore(),
		nil, // default keyer
		fallback.DefaultFreshnessPolicy(),
		nil, // default serve rule
	)
	ctx := context.Background()

	// A successful execution records its result.
	result, err := guard.Execute(ctx, "get-price", "AAPL",
		func(context.Context, string, any) ([]byte, error) {
			return []byte("189.50"), nil
		})
	fmt.Println("Live:", string(result), err)

	// A circuit rejection serves the last-known-good result.
	result, err = guard.Execute(ctx, "get-price", "AAPL",
		func(context.Context, string, any) ([]byte, error) {
			return nil, resilience.ErrCircuitOpen
		})
	fmt.Println("Degraded:", string(result), err)
	// Output:
	// Live: 189.50 <nil>
	// Degraded: 189.50 <nil>
}

func ExampleGuard_Execute_businessError() {
	guard := fallback.NewGuard(
		fallback.NewMemoryStore(),
		nil,
		fallback.DefaultFreshnessPolicy(),
		nil,
	)
	ctx := context.Background()

	_ = guard.Record(ctx, "get-price", "AAPL", []byte("189.50"))

	// Business errors are returned unchanged. Only resilience-layer
	// rejections degrade under the default serve rule.
	_, err := guard.Execute(ctx, "get-price", "AAPL",
		func(context.Context, string, any) ([]byte, error) {
			return nil, errors.New("symbol not found")
		})
	fmt.Println("Error:", err)
	// Output:
	// Error: symbol not found
}

func ExampleGuard_Recover() {
	guard := fallback.NewGuard(
		fallback.NewMemoryStore(),
		nil,
		fallback.DefaultFreshnessPolicy(),
		nil,
	)
	ctx := context.Background()

	_, err := guard.Recover(ctx, "get-price", "AAPL")
	fmt.Println("Before record:", errors.Is(err, fallback.ErrNoFallback))

	_ = guard.Record(ctx, "get-price", "AAPL", []byte("189.50"))

	value, _ := guard.Recover(ctx, "get-price", "AAPL")
	fmt.Println("After record:", string(value))
	// Output:
	// Before record: true
	// After record: 189.50
}

func ExampleGuard_PolicyFallback() {
	guard := fallback.NewGuard(
		fallback.NewMemoryStore(),
		nil,
		fallback.DefaultFreshnessPolicy(),
		nil,
	)
	ctx := context.Background()
	m := resilience.NewManager(resilience.ManagerConfig{})

	_ = guard.Record(ctx, "get-price", "AAPL", []byte("189.50"))

	var served []byte
	policy := resilience.Policy{
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			FailureThreshold: 1,
			VolumeThreshold:  1,
		},
		Fallback: guard.PolicyFallback("get-price", "AAPL", func(b []byte) {
			served = b
		}),
	}

	// Trip the circuit.
	_ = m.Execute(ctx, "get-price", func(context.Context) error {
		return errors.New("upstream down")
	}, policy)

	// The rejected call degrades to the recorded result.
	err := m.Execute(ctx, "get-price", func(context.Context) error {
		return nil
	}, policy)
	fmt.Println("Error:", err)
	fmt.Println("Served:", string(served))
	// Output:
	// Error: <nil>
	// Served: 189.50
}

func ExampleDefaultKeyer_Key() {
	keyer := fallback.NewDefaultKeyer()

	// Keys are deterministic regardless of map iteration order.
	key1, _ := keyer.Key("search", map[string]any{"q": "golang", "limit": 10})
	key2, _ := keyer.Key("search", map[string]any{"limit": 10, "q": "golang"})
	fmt.Println("Deterministic:", key1 == key2)
	// Output:
	// Deterministic: true
}
