package health

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/jonwraymond/healthcheck/observe"
)

// HealthCheck is an ordered, append-only registry of checks.
//
// Register and Check may be called from multiple goroutines; Check works on a
// snapshot of the entries registered when it started.
type HealthCheck struct {
	mu      sync.RWMutex
	entries []Entry

	tags       []string
	caller     Invocant
	logger     observe.Logger
	middleware *observe.Middleware
	rollup     RollupFunc
	onInvalid  func(InvalidResultWarning)
	timeout    time.Duration

	pending []any
}

// Option configures a HealthCheck.
type Option func(*HealthCheck)

// WithChecks registers specs at construction time, after all other options
// have been applied.
func WithChecks(specs ...any) Option {
	return func(h *HealthCheck) {
		h.pending = append(h.pending, specs...)
	}
}

// WithTags sets the registry's default tags.
func WithTags(tags ...string) Option {
	return func(h *HealthCheck) {
		h.tags = slices.Clone(tags)
	}
}

// WithCaller sets the context bare check names are resolved against.
func WithCaller(caller Invocant) Option {
	return func(h *HealthCheck) {
		h.caller = caller
	}
}

// WithLogger sets the logger receiving invalid-result warnings.
// Default: a JSON logger on stderr at warn level.
func WithLogger(logger observe.Logger) Option {
	return func(h *HealthCheck) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMiddleware wraps every check invocation with tracing, metrics and
// logging.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(h *HealthCheck) {
		h.middleware = mw
	}
}

// WithRollup enables a synthesized top-level status on the aggregate.
func WithRollup(fn RollupFunc) Option {
	return func(h *HealthCheck) {
		h.rollup = fn
	}
}

// WithInvalidResultHandler registers a callback for every dropped output, in
// addition to the logged warning.
func WithInvalidResultHandler(fn func(InvalidResultWarning)) Option {
	return func(h *HealthCheck) {
		h.onInvalid = fn
	}
}

// WithCheckTimeout bounds each check invocation with a context deadline.
// Checks still run on the calling goroutine, so a check that ignores its
// context is not interrupted.
func WithCheckTimeout(d time.Duration) Option {
	return func(h *HealthCheck) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// New creates a registry. Checks passed with WithChecks are resolved exactly
// like Register; a resolution failure fails construction.
func New(opts ...Option) (*HealthCheck, error) {
	h := &HealthCheck{
		logger: observe.NewLogger("warn"),
	}
	for _, opt := range opts {
		opt(h)
	}

	pending := h.pending
	h.pending = nil
	if len(pending) > 0 {
		if err := h.register(callSite(1), pending); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Register resolves each spec and appends the resulting entries in order.
// Either every spec is registered or none is. The registry is returned for
// chaining.
func (h *HealthCheck) Register(specs ...any) (*HealthCheck, error) {
	if h == nil {
		return nil, ErrUsage
	}
	if err := h.register(callSite(1), specs); err != nil {
		return h, err
	}
	return h, nil
}

func (h *HealthCheck) register(site string, specs []any) error {
	if len(specs) == 0 {
		specs = []any{nil}
	}

	resolved := make([]Entry, 0, len(specs))
	for _, spec := range specs {
		entry, err := h.resolve(spec)
		if err != nil {
			var ce *ConfigurationError
			if errors.As(err, &ce) {
				ce.Site = site
			}
			return err
		}
		resolved = append(resolved, entry)
	}

	h.mu.Lock()
	h.entries = append(h.entries, resolved...)
	h.mu.Unlock()
	return nil
}

// Check runs every selected check in registration order and returns the
// aggregate. Requested tags are read from params["tags"]; params are passed
// to every check, overriding static params with the same key.
func (h *HealthCheck) Check(ctx context.Context, params Params) (Result, error) {
	if h == nil {
		return nil, ErrUsage
	}
	return h.check(ctx, callSite(1), params)
}

// runKey carries the state of an in-progress Check to nested registries.
type runKey struct{}

type runState struct {
	// site is the call site of the outermost Check.
	site string
	// active lists the registries currently running, outermost first.
	active []*HealthCheck
}

func runStateFrom(ctx context.Context) runState {
	s, _ := ctx.Value(runKey{}).(runState)
	return s
}

func (h *HealthCheck) check(ctx context.Context, site string, params Params) (Result, error) {
	outer := runStateFrom(ctx)
	if slices.Contains(outer.active, h) {
		return nil, &ConfigurationError{Reason: ErrCannotResolve, Message: "registry is already running in this check", Site: site}
	}
	ctx = context.WithValue(ctx, runKey{}, runState{
		site:   site,
		active: append(slices.Clone(outer.active), h),
	})

	h.mu.RLock()
	entries := slices.Clone(h.entries)
	h.mu.RUnlock()

	if len(entries) == 0 {
		return nil, &ConfigurationError{Reason: ErrNoChecks, Message: "no registered checks", Site: site}
	}

	tags := requestedTags(params)
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		if !h.ShouldRun(entry, tags) {
			continue
		}
		if r, ok := h.run(ctx, entry, params, site); ok {
			results = append(results, r)
		}
	}

	agg := Result{KeyResults: results}
	if h.rollup != nil {
		agg[KeyStatus] = h.rollup(results)
	}
	return agg, nil
}

// run invokes one entry and normalizes its output. The bool is false when
// the output was dropped.
func (h *HealthCheck) run(ctx context.Context, entry Entry, params Params, site string) (Result, bool) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	var out Result
	exec := func(ctx context.Context, _ observe.CheckMeta) (string, error) {
		raw := entry.call(ctx, params)
		r, err := Normalize(raw)
		if err != nil {
			h.reportInvalid(ctx, entry, raw, err, site)
			return "", err
		}
		out = r
		return r.Status(), nil
	}
	if h.middleware != nil {
		exec = h.middleware.Wrap(exec)
	}

	if _, err := exec(ctx, entry.meta(h.effectiveTags(entry))); err != nil {
		return nil, false
	}
	return out, true
}

func (h *HealthCheck) reportInvalid(ctx context.Context, entry Entry, raw any, err error, site string) {
	w := InvalidResultWarning{
		Invocant: describe(entry.invocant),
		Check:    entry.Name(),
		Value:    render(raw),
		Site:     site,
		Err:      err,
	}

	h.logger.Warn(ctx, "invalid check result",
		observe.Field{Key: "invocant", Value: w.Invocant},
		observe.Field{Key: "check", Value: w.Check},
		observe.Field{Key: "value", Value: w.Value},
		observe.Field{Key: "caller", Value: w.Site},
		observe.Field{Key: "error", Value: err.Error()},
	)
	if h.onInvalid != nil {
		h.onInvalid(w)
	}
}

// Tags returns a copy of the registry's default tags.
func (h *HealthCheck) Tags() []string {
	if h == nil || len(h.tags) == 0 {
		return []string{}
	}
	return slices.Clone(h.tags)
}

// DefaultTags implements HasDefaultTags, so a registry delegated as a check
// is selected by its own default tags.
func (h *HealthCheck) DefaultTags() []string {
	return h.Tags()
}

// Entries returns a snapshot of the registered entries in order.
func (h *HealthCheck) Entries() []Entry {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.entries)
}

// Resolve implements Invocant. A registry responds to "check".
func (h *HealthCheck) Resolve(name string) (Method, bool) {
	if name != "check" {
		return nil, false
	}
	return h.delegate, true
}

// delegate runs the registry as a single check of an enclosing registry. The
// nested aggregate always gets a status so it survives normalization, and
// diagnostics keep the site of the outermost Check.
func (h *HealthCheck) delegate(ctx context.Context, _ Invocant, params Params) any {
	site := runStateFrom(ctx).site
	if site == "" {
		site = callSite(1)
	}
	agg, err := h.check(ctx, site, params)
	if err != nil {
		return err
	}
	if _, ok := agg[KeyStatus]; !ok {
		agg[KeyStatus] = RollupStatus(agg.Results())
	}
	if label, ok := params[KeyLabel].(string); ok && label != "" {
		agg[KeyLabel] = label
	}
	return agg
}

func (h *HealthCheck) String() string {
	return "HealthCheck"
}

var (
	_ Invocant       = (*HealthCheck)(nil)
	_ HasDefaultTags = (*HealthCheck)(nil)
)
