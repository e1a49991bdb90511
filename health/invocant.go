package health

import (
	"context"
	"fmt"
	"slices"
)

// Func is a plain function check.
type Func func(ctx context.Context, params Params) any

// Method is a method-style check. The invocant it was resolved against is
// passed as the implicit receiver.
type Method func(ctx context.Context, invocant Invocant, params Params) any

// Invocant is anything a check name can be resolved against.
type Invocant interface {
	// Resolve looks up a method by name.
	Resolve(name string) (Method, bool)
}

// HasDefaultTags is implemented by invocants that supply tags for checks
// registered against them without explicit tags.
type HasDefaultTags interface {
	DefaultTags() []string
}

// Methods is the smallest Invocant: a bare method table.
type Methods map[string]Method

// Resolve implements Invocant.
func (m Methods) Resolve(name string) (Method, bool) {
	fn, ok := m[name]
	return fn, ok && fn != nil
}

// Class is a named, class-style invocant.
type Class struct {
	Name    string
	Methods Methods
	Tags    []string
}

// Resolve implements Invocant.
func (c *Class) Resolve(name string) (Method, bool) {
	return c.Methods.Resolve(name)
}

// DefaultTags implements HasDefaultTags.
func (c *Class) DefaultTags() []string {
	return slices.Clone(c.Tags)
}

func (c *Class) String() string {
	return c.Name
}

// describe renders an invocant for diagnostics and telemetry.
func describe(inv any) string {
	switch v := inv.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprintf("%T", v)
	}
}
