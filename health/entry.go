package health

import (
	"context"
	"slices"

	"github.com/jonwraymond/healthcheck/observe"
)

// anonymousCheck names function checks in diagnostics.
const anonymousCheck = "CODE"

// Entry is one resolved, registered check. Entries are immutable once
// registered.
type Entry struct {
	invocant Invocant
	fn       Func
	method   Method
	name     string
	label    string
	tags     []string
	params   Params

	// nested is set when the entry runs another registry.
	nested *HealthCheck
}

// Invocant returns the invocant the check is called against, or nil for a
// plain function check.
func (e Entry) Invocant() Invocant {
	return e.invocant
}

// Name returns the method name, or "CODE" for function checks.
func (e Entry) Name() string {
	if e.name == "" {
		return anonymousCheck
	}
	return e.name
}

// Label returns the registered label.
func (e Entry) Label() string {
	return e.label
}

// Tags returns a copy of the registered tags.
func (e Entry) Tags() []string {
	return slices.Clone(e.tags)
}

// Params returns a copy of the static parameters, including the label.
func (e Entry) Params() Params {
	return e.params.Merge(nil)
}

// call invokes the check with the static params overlaid by params.
func (e Entry) call(ctx context.Context, params Params) any {
	merged := e.params.Merge(params)
	if e.method != nil {
		return e.method(ctx, e.invocant, merged)
	}
	return e.fn(ctx, merged)
}

// meta describes the entry for telemetry. tags are the effective tags the
// entry was selected by.
func (e Entry) meta(tags []string) observe.CheckMeta {
	id, _ := e.params[KeyID].(string)
	return observe.CheckMeta{
		ID:       id,
		Name:     e.Name(),
		Invocant: describe(e.invocant),
		Label:    e.label,
		Tags:     tags,
	}
}
