// Package observe provides observability primitives for health check execution.
//
// It is a pure instrumentation library: it never runs checks itself. The
// health package wraps each check invocation with a Middleware built here so
// that every run produces a span, a set of metrics, and a structured log line.
//
// Configuration can be built in code or read from HEALTH_* environment
// variables with ConfigFromEnv:
//
//	cfg, err := observe.ConfigFromEnv()
//	obs, err := observe.NewObserver(ctx, cfg)
//	defer obs.Shutdown(ctx)
//	mw, err := observe.MiddlewareFromObserver(obs)
package observe
