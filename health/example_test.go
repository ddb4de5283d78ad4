package health_test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/faultops/health"
	"github.com/jonwraymond/faultops/resilience"
)

func ExampleNewCheckerFunc() {
	checker := health.NewCheckerFunc("upstream", func(ctx context.Context) health.Result {
		// Probe the dependency here.
		return health.Healthy("reachable")
	})

	result := checker.Check(context.Background())
	fmt.Println(checker.Name(), "is", result.Status)
	// Output:
	// upstream is healthy
}

func ExampleNewBreakerChecker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name: "payments",
	})
	checker := health.NewBreakerChecker(cb)

	result := checker.Check(context.Background())
	fmt.Println(result.Status, "-", result.Message)

	cb.ForceOpen()
	result = checker.Check(context.Background())
	fmt.Println(result.Status, "-", result.Message)
	// Output:
	// healthy - circuit closed
	// unhealthy - circuit open
}

func ExampleAggregator() {
	agg := health.NewAggregator(health.AggregatorConfig{
		Timeout:  5 * time.Second,
		Parallel: true,
	})

	agg.Register("database", health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
		return health.Healthy("connected")
	}))
	agg.Register("cache", health.NewCheckerFunc("cache", func(ctx context.Context) health.Result {
		return health.Degraded("high latency")
	}))

	results := agg.CheckAll(context.Background())
	fmt.Println("overall:", agg.OverallStatus(results))
	// Output:
	// overall: degraded
}

func ExampleRegisterManager() {
	m := resilience.NewManager(resilience.ManagerConfig{})
	policy, _ := resilience.PresetPolicy("api")
	_ = m.Execute(context.Background(), "users.lookup", func(ctx context.Context) error {
		return nil
	}, policy)

	agg := health.NewAggregator()
	health.RegisterManager(agg, m)

	results := agg.CheckAll(context.Background())
	fmt.Println("overall:", agg.OverallStatus(results))
	// Output:
	// overall: healthy
}

func ExampleRegisterHandlers() {
	agg := health.NewAggregator()
	agg.Register("self", health.NewCheckerFunc("self", func(ctx context.Context) health.Result {
		return health.Healthy("ok")
	}))

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, agg)
	// mux now serves /healthz, /readyz and /health.
}
