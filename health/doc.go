// Package health aggregates heterogeneous health checks behind one registry.
//
// A HealthCheck collects checks in registration order and runs them
// sequentially on Check, normalizing whatever each one returns into a Result
// and folding the valid ones into a single aggregate record.
//
// # Registering Checks
//
// Register accepts several shapes:
//
//	hc, err := health.New(
//	    health.WithTags("default"),
//	    health.WithCaller(svc), // resolves bare method names
//	)
//
//	hc.Register(func(ctx context.Context, p health.Params) any {
//	    return health.Result{"status": health.StatusOK}
//	})
//	hc.Register("database")                    // method on the caller
//	hc.Register(health.Spec{                   // explicit record
//	    Invocant: cache,
//	    Check:    "ping",
//	    Label:    "Session cache",
//	    Tags:     []string{"fast"},
//	})
//	hc.Register(otherRegistry)                 // delegated as one check
//
// Resolution failures are returned as *ConfigurationError carrying the call
// site of the offending Register call; nothing from a failed call is kept.
//
// # Running Checks
//
//	agg, err := hc.Check(ctx, health.Params{"tags": []string{"fast"}})
//	for _, r := range agg.Results() {
//	    fmt.Println(r.ID(), r.Status())
//	}
//
// Requested tags select every check sharing at least one tag. A check whose
// output cannot be normalized is dropped from the aggregate and reported as an
// InvalidResultWarning through the configured logger.
//
// The aggregate carries no top-level status unless a RollupFunc is configured
// with WithRollup.
//
// # Telemetry
//
// WithMiddleware wraps every invocation with an observe.Middleware, producing
// one span named health.check.<id> and the health.check.* metrics per check.
// WithCheckTimeout gives each check its own context deadline. A Coalescer lets
// concurrent identical Check calls share a single run.
package health
