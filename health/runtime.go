package health

import (
	"context"
	"fmt"
	"runtime"
	"slices"
)

// RuntimeChecksConfig configures the built-in process checks.
type RuntimeChecksConfig struct {
	// WarningThreshold is the heap usage ratio that reports WARNING.
	// Value should be between 0 and 1. Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the heap usage ratio that reports CRITICAL.
	// Value should be between 0 and 1. Default: 0.95
	CriticalThreshold float64

	// MaxAlloc is the expected ceiling for heap allocation in bytes.
	// Default: 0, meaning the memory obtained from the OS.
	MaxAlloc uint64

	// MaxGoroutines is the goroutine count that reports WARNING.
	// Default: 10000
	MaxGoroutines int

	// Tags are the default tags for checks registered against this invocant.
	// Default: ["runtime"]
	Tags []string
}

// RuntimeChecks is an object-style invocant exposing the "memory" and
// "goroutines" checks.
//
//	rc := health.NewRuntimeChecks(health.RuntimeChecksConfig{})
//	hc.Register(health.Spec{Invocant: rc, Check: "memory"})
type RuntimeChecks struct {
	config  RuntimeChecksConfig
	methods Methods
	stats   func(*runtime.MemStats)
	count   func() int
}

// NewRuntimeChecks creates the runtime invocant, applying defaults to any
// out-of-range setting.
func NewRuntimeChecks(config RuntimeChecksConfig) *RuntimeChecks {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = min(config.WarningThreshold+0.1, 0.99)
	}
	if config.MaxGoroutines <= 0 {
		config.MaxGoroutines = 10000
	}
	if len(config.Tags) == 0 {
		config.Tags = []string{"runtime"}
	}

	rc := &RuntimeChecks{
		config: config,
		stats:  runtime.ReadMemStats,
		count:  runtime.NumGoroutine,
	}
	rc.methods = Methods{
		"memory":     rc.memory,
		"goroutines": rc.goroutines,
	}
	return rc
}

// Resolve implements Invocant.
func (rc *RuntimeChecks) Resolve(name string) (Method, bool) {
	return rc.methods.Resolve(name)
}

// DefaultTags implements HasDefaultTags.
func (rc *RuntimeChecks) DefaultTags() []string {
	return slices.Clone(rc.config.Tags)
}

func (rc *RuntimeChecks) String() string {
	return "runtime"
}

func (rc *RuntimeChecks) memory(ctx context.Context, _ Invocant, params Params) any {
	if err := ctx.Err(); err != nil {
		return withIdentity(Result{KeyStatus: StatusCritical, "info": "context cancelled: " + err.Error()}, "memory", params)
	}

	var stats runtime.MemStats
	rc.stats(&stats)

	maxAlloc := rc.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}

	r := Result{
		"alloc_bytes": stats.Alloc,
		"heap_alloc":  stats.HeapAlloc,
		"heap_in_use": stats.HeapInuse,
		"num_gc":      stats.NumGC,
		"max_alloc":   maxAlloc,
	}
	if maxAlloc == 0 {
		r[KeyStatus] = StatusUnknown
		r["info"] = "memory stats unavailable"
		return withIdentity(r, "memory", params)
	}

	ratio := float64(stats.Alloc) / float64(maxAlloc)
	r["usage_percent"] = ratio * 100

	switch {
	case ratio >= rc.config.CriticalThreshold:
		r[KeyStatus] = StatusCritical
		r["info"] = fmt.Sprintf("memory usage critical: %.1f%%", ratio*100)
	case ratio >= rc.config.WarningThreshold:
		r[KeyStatus] = StatusWarning
		r["info"] = fmt.Sprintf("memory usage high: %.1f%%", ratio*100)
	default:
		r[KeyStatus] = StatusOK
		r["info"] = fmt.Sprintf("memory usage normal: %.1f%%", ratio*100)
	}
	return withIdentity(r, "memory", params)
}

func (rc *RuntimeChecks) goroutines(ctx context.Context, _ Invocant, params Params) any {
	if err := ctx.Err(); err != nil {
		return withIdentity(Result{KeyStatus: StatusCritical, "info": "context cancelled: " + err.Error()}, "goroutines", params)
	}

	n := rc.count()
	status := StatusOK
	if n >= rc.config.MaxGoroutines {
		status = StatusWarning
	}
	return withIdentity(Result{
		KeyStatus:    status,
		"goroutines": n,
		"max":        rc.config.MaxGoroutines,
		"info":       fmt.Sprintf("%d goroutines", n),
	}, "goroutines", params)
}

// withIdentity copies id and label from params onto r, defaulting id.
func withIdentity(r Result, defaultID string, params Params) Result {
	r[KeyID] = defaultID
	if id, ok := params[KeyID].(string); ok && id != "" {
		r[KeyID] = id
	}
	if label, ok := params[KeyLabel].(string); ok && label != "" {
		r[KeyLabel] = label
	}
	return r
}
