package health

import (
	"context"
	"reflect"
	"slices"
)

// Spec is the explicit registration record.
type Spec struct {
	// Invocant is the object or class the check is resolved against. When nil,
	// a method name is resolved against the registry's caller.
	Invocant Invocant

	// Check is required: a Func, a Method, a method name, or a *HealthCheck.
	// A func(context.Context, Params) Result is accepted as a Func.
	//
	// Only a Method (or a name resolved to one) receives Invocant when called.
	// A Func never sees it; Invocant then only supplies default tags and the
	// name used in diagnostics. Use a Method when the check needs the object.
	Check any

	// Label is passed to the check as the "label" param.
	Label string

	// Tags select the check on tagged runs.
	Tags []string

	// Params are passed to every invocation unless overridden per call.
	Params Params
}

// resolve turns one registration argument into an Entry.
func (h *HealthCheck) resolve(raw any) (Entry, error) {
	switch v := raw.(type) {
	case nil:
		return Entry{}, configError(ErrCheckRequired, "check parameter required")
	case Spec:
		return h.resolveSpec(v)
	case *Spec:
		if v == nil {
			return Entry{}, configError(ErrCheckRequired, "check parameter required")
		}
		return h.resolveSpec(*v)
	case map[string]any:
		return h.resolveRecord(v)
	case Params:
		return h.resolveRecord(v)
	default:
		return h.resolveSpec(Spec{Check: raw})
	}
}

// resolveRecord accepts the map form of Spec. Keys other than invocant,
// check, label and tags become static params.
func (h *HealthCheck) resolveRecord(rec map[string]any) (Entry, error) {
	spec := Spec{Check: rec["check"], Params: Params{}}

	for k, v := range rec {
		switch k {
		case "check":
		case "invocant":
			if v == nil {
				continue
			}
			inv, ok := v.(Invocant)
			if !ok {
				return Entry{}, configError(ErrCannotResolve, "cannot determine what to do with invocant '%s'", describe(v))
			}
			spec.Invocant = inv
		case KeyLabel:
			if l, ok := v.(string); ok {
				spec.Label = l
			} else if v != nil {
				spec.Params[KeyLabel] = v
			}
		case KeyTags:
			spec.Tags = requestedTags(Params{KeyTags: v})
		default:
			spec.Params[k] = v
		}
	}
	return h.resolveSpec(spec)
}

func (h *HealthCheck) resolveSpec(spec Spec) (Entry, error) {
	if isEmpty(spec.Check) {
		return Entry{}, configError(ErrCheckRequired, "check parameter required")
	}

	entry := Entry{
		invocant: spec.Invocant,
		label:    spec.Label,
		tags:     slices.Clone(spec.Tags),
		params:   spec.Params.Merge(nil),
	}
	if entry.label != "" {
		entry.params[KeyLabel] = entry.label
	} else if l, ok := entry.params[KeyLabel].(string); ok {
		entry.label = l
	}

	switch c := spec.Check.(type) {
	case Func:
		entry.fn = c
	case func(context.Context, Params) any:
		entry.fn = c
	case func(context.Context, Params) Result:
		entry.fn = func(ctx context.Context, p Params) any { return c(ctx, p) }
	case Method:
		entry.method = c
	case func(context.Context, Invocant, Params) any:
		entry.method = c
	case *HealthCheck:
		if entry.invocant == nil {
			entry.invocant = c
		}
		entry.name = "check"
		entry.method = c.delegate
		entry.nested = c
	case string:
		var err error
		if entry, err = h.bindName(entry, c); err != nil {
			return Entry{}, err
		}
	default:
		return Entry{}, configError(ErrCannotResolve, "cannot determine what to do with '%s'", render(c))
	}

	if entry.nested != nil && entry.nested.reaches(h, map[*HealthCheck]bool{}) {
		return Entry{}, configError(ErrCannotResolve, "cannot register a registry inside itself")
	}
	return entry, nil
}

// reaches reports whether target is h or is nested in h at any depth.
// Registries nested through a custom Invocant are not visible here; check
// guards against those at run time.
func (h *HealthCheck) reaches(target *HealthCheck, seen map[*HealthCheck]bool) bool {
	if h == target {
		return true
	}
	if seen[h] {
		return false
	}
	seen[h] = true
	for _, e := range h.Entries() {
		if e.nested != nil && e.nested.reaches(target, seen) {
			return true
		}
	}
	return false
}

// bindName resolves a method name against the explicit invocant, or against
// the registry's caller when there is none.
func (h *HealthCheck) bindName(entry Entry, name string) (Entry, error) {
	switch {
	case entry.invocant != nil:
		m, ok := entry.invocant.Resolve(name)
		if !ok {
			return Entry{}, configError(ErrInvocantCannot, "'%s' cannot '%s'", describe(entry.invocant), name)
		}
		entry.method = m
	case h.caller != nil:
		m, ok := h.caller.Resolve(name)
		if !ok {
			return Entry{}, configError(ErrCannotResolve, "cannot determine what to do with '%s'", name)
		}
		entry.invocant = h.caller
		entry.method = m
	default:
		return Entry{}, configError(ErrCannotResolve, "cannot determine what to do with '%s'", name)
	}

	entry.name = name
	if nested, ok := entry.invocant.(*HealthCheck); ok && name == "check" {
		entry.nested = nested
	}
	return entry, nil
}

// isEmpty reports the false-y check values: nil, zero values and empty
// collections.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	case reflect.Func, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}
