package health

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/healthcheck/observe"
)

func newTestRegistry(t *testing.T, opts ...Option) *HealthCheck {
	t.Helper()
	opts = append([]Option{WithLogger(observe.NopLogger())}, opts...)
	hc, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return hc
}

func okCheck(id string) Func {
	return func(ctx context.Context, p Params) any {
		return Result{"status": StatusOK, "id": id}
	}
}

func okMethod(id string) Method {
	return func(ctx context.Context, inv Invocant, p Params) any {
		return Result{"status": StatusOK, "id": id}
	}
}

func TestRegister_EmptySpecsRejected(t *testing.T) {
	tests := []struct {
		name string
		spec any
	}{
		{"empty string", ""},
		{"zero", 0},
		{"false", false},
		{"nil", nil},
		{"empty record", map[string]any{}},
		{"record without check", map[string]any{"label": "x"}},
		{"empty spec", Spec{}},
		{"nil spec pointer", (*Spec)(nil)},
		{"nil func", Func(nil)},
		{"nil registry", (*HealthCheck)(nil)},
		{"spec with empty check", Spec{Check: "", Label: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := newTestRegistry(t)

			_, err := hc.Register(tt.spec)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("Register(%#v) error = %v, want ErrConfiguration", tt.spec, err)
			}
			if !errors.Is(err, ErrCheckRequired) {
				t.Errorf("Register(%#v) error = %v, want ErrCheckRequired", tt.spec, err)
			}
			if !strings.Contains(err.Error(), "check parameter required") {
				t.Errorf("error message = %q", err.Error())
			}
			if n := len(hc.Entries()); n != 0 {
				t.Errorf("expected no entries after failure, got %d", n)
			}
		})
	}
}

func TestRegister_NoSpecs(t *testing.T) {
	hc := newTestRegistry(t)
	if _, err := hc.Register(); !errors.Is(err, ErrCheckRequired) {
		t.Fatalf("Register() error = %v, want ErrCheckRequired", err)
	}
}

func TestRegister_ErrorCarriesCallSite(t *testing.T) {
	hc := newTestRegistry(t)

	_, err := hc.Register("")

	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
	if !strings.HasPrefix(ce.Site, "spec_test.go:") {
		t.Errorf("Site = %q, want spec_test.go:<line>", ce.Site)
	}
	if !strings.HasSuffix(err.Error(), " at "+ce.Site) {
		t.Errorf("Error() = %q, want call site suffix", err.Error())
	}
}

func TestRegister_Callable(t *testing.T) {
	hc := newTestRegistry(t)

	plain := func(ctx context.Context, p Params) any { return Result{"status": "OK"} }
	typed := func(ctx context.Context, p Params) Result { return Result{"status": "OK"} }

	if _, err := hc.Register(plain, typed, okCheck("named")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	entries := hc.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Invocant() != nil {
			t.Errorf("function check should have no invocant, got %v", e.Invocant())
		}
		if e.Name() != "CODE" {
			t.Errorf("Name() = %q, want CODE", e.Name())
		}
	}
}

func TestRegister_NameResolvesAgainstCaller(t *testing.T) {
	caller := Methods{"check": okMethod("caller")}
	obj := &Class{Name: "Obj", Methods: Methods{"check": okMethod("object")}}

	hc := newTestRegistry(t, WithCaller(caller))
	if _, err := hc.Register("check", Spec{Invocant: obj, Check: "check"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	agg, err := hc.Check(context.Background(), nil)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	results := agg.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID() != "caller" {
		t.Errorf("bare name resolved to %q, want caller", results[0].ID())
	}
	if results[1].ID() != "object" {
		t.Errorf("explicit invocant resolved to %q, want object", results[1].ID())
	}

	entries := hc.Entries()
	if entries[0].Name() != "check" {
		t.Errorf("Name() = %q, want check", entries[0].Name())
	}
	if _, ok := entries[0].Invocant().(Methods); !ok {
		t.Errorf("bare name invocant = %T, want the caller", entries[0].Invocant())
	}
}

func TestRegister_UnresolvableName(t *testing.T) {
	tests := []struct {
		name   string
		caller Invocant
	}{
		{"no caller", nil},
		{"caller without method", Methods{"other": okMethod("other")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := newTestRegistry(t, WithCaller(tt.caller))

			_, err := hc.Register("nonexistent")
			if !errors.Is(err, ErrCannotResolve) {
				t.Fatalf("Register() error = %v, want ErrCannotResolve", err)
			}
			if !strings.Contains(err.Error(), "cannot determine what to do with 'nonexistent'") {
				t.Errorf("error message = %q", err.Error())
			}
		})
	}
}

func TestRegister_InvocantCannot(t *testing.T) {
	obj := &Class{Name: "CheckService", Methods: Methods{"check": okMethod("x")}}
	hc := newTestRegistry(t)

	_, err := hc.Register(Spec{Invocant: obj, Check: "nope"})
	if !errors.Is(err, ErrInvocantCannot) {
		t.Fatalf("Register() error = %v, want ErrInvocantCannot", err)
	}
	if !strings.Contains(err.Error(), "'CheckService' cannot 'nope'") {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestRegister_SpecWithoutInvocantFallsBackToCaller(t *testing.T) {
	hc := newTestRegistry(t, WithCaller(Methods{"ping": okMethod("caller-ping")}))

	if _, err := hc.Register(Spec{Check: "ping", Label: "Ping"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	e := hc.Entries()[0]
	if e.Name() != "ping" || e.Label() != "Ping" {
		t.Errorf("entry = %s/%s, want ping/Ping", e.Name(), e.Label())
	}
}

func TestRegister_RecordForm(t *testing.T) {
	obj := &Class{Name: "Obj", Methods: Methods{"ping": okMethod("ping")}}
	hc := newTestRegistry(t)

	_, err := hc.Register(map[string]any{
		"invocant": obj,
		"check":    "ping",
		"label":    "Pinger",
		"tags":     []string{"fast"},
		"id":       "ping-1",
		"timeout":  3,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	e := hc.Entries()[0]
	if e.Invocant() != Invocant(obj) {
		t.Errorf("Invocant() = %v, want obj", e.Invocant())
	}
	if e.Label() != "Pinger" {
		t.Errorf("Label() = %q, want Pinger", e.Label())
	}
	if tags := e.Tags(); len(tags) != 1 || tags[0] != "fast" {
		t.Errorf("Tags() = %v, want [fast]", tags)
	}

	params := e.Params()
	if params["label"] != "Pinger" || params["id"] != "ping-1" || params["timeout"] != 3 {
		t.Errorf("Params() = %v", params)
	}
	for _, k := range []string{"invocant", "check", "tags"} {
		if _, ok := params[k]; ok {
			t.Errorf("Params() should not carry %q", k)
		}
	}
}

func TestRegister_RecordWithBadInvocant(t *testing.T) {
	hc := newTestRegistry(t)

	_, err := hc.Register(map[string]any{"invocant": "SomeClass", "check": "ping"})
	if !errors.Is(err, ErrCannotResolve) {
		t.Fatalf("Register() error = %v, want ErrCannotResolve", err)
	}
}

func TestRegister_UnsupportedType(t *testing.T) {
	hc := newTestRegistry(t)

	_, err := hc.Register(42)
	if !errors.Is(err, ErrCannotResolve) {
		t.Fatalf("Register(42) error = %v, want ErrCannotResolve", err)
	}
	if !strings.Contains(err.Error(), "cannot determine what to do with '42'") {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestRegister_AllOrNothing(t *testing.T) {
	hc := newTestRegistry(t)

	if _, err := hc.Register(okCheck("a"), "missing", okCheck("b")); err == nil {
		t.Fatal("expected error for unresolvable name")
	}
	if n := len(hc.Entries()); n != 0 {
		t.Fatalf("expected no entries from failed call, got %d", n)
	}

	if _, err := hc.Register(okCheck("a")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if n := len(hc.Entries()); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func TestRegister_Chainable(t *testing.T) {
	hc := newTestRegistry(t)

	got, err := hc.Register(okCheck("a"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if got != hc {
		t.Fatal("Register() should return the registry")
	}
	if _, err := got.Register(okCheck("b")); err != nil {
		t.Fatalf("chained Register() error = %v", err)
	}
	if n := len(hc.Entries()); n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
}

func TestRegister_SelfRejected(t *testing.T) {
	hc := newTestRegistry(t)
	if _, err := hc.Register(hc); !errors.Is(err, ErrCannotResolve) {
		t.Fatalf("Register(self) error = %v, want ErrCannotResolve", err)
	}
}

func TestNew_WithChecksResolvesAfterOptions(t *testing.T) {
	// WithChecks precedes WithCaller; names still resolve against the caller.
	hc, err := New(
		WithLogger(observe.NopLogger()),
		WithChecks("check"),
		WithCaller(Methods{"check": okMethod("caller")}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if n := len(hc.Entries()); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func TestNew_WithChecksFailure(t *testing.T) {
	hc, err := New(WithLogger(observe.NopLogger()), WithChecks(""))
	if !errors.Is(err, ErrCheckRequired) {
		t.Fatalf("New() error = %v, want ErrCheckRequired", err)
	}
	if hc != nil {
		t.Error("New() should return nil registry on failure")
	}

	var ce *ConfigurationError
	if errors.As(err, &ce) && !strings.HasPrefix(ce.Site, "spec_test.go:") {
		t.Errorf("Site = %q, want spec_test.go:<line>", ce.Site)
	}
}

func TestRegister_RecordNonStringLabelKept(t *testing.T) {
	var seen any
	hc := newTestRegistry(t)
	_, err := hc.Register(map[string]any{
		"check": Func(func(ctx context.Context, p Params) any {
			seen = p[KeyLabel]
			return Result{"status": StatusOK}
		}),
		"label": 5,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	e := hc.Entries()[0]
	if e.Label() != "" {
		t.Errorf("Label() = %q, want empty", e.Label())
	}
	if got := e.Params()[KeyLabel]; got != 5 {
		t.Errorf("Params()[label] = %v, want 5", got)
	}
	if _, err := hc.Check(context.Background(), nil); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if seen != 5 {
		t.Errorf("check saw label %v, want 5", seen)
	}
}

func TestRegister_FuncWithInvocant(t *testing.T) {
	obj := &Class{Name: "Tagged", Tags: []string{"db"}}

	var warnings []InvalidResultWarning
	hc := newTestRegistry(t, WithInvalidResultHandler(func(w InvalidResultWarning) {
		warnings = append(warnings, w)
	}))
	_, err := hc.Register(Spec{
		Invocant: obj,
		Check:    Func(func(ctx context.Context, p Params) any { return "broken" }),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// The invocant selects by its default tags and names the check in
	// diagnostics, but the Func is never handed it.
	agg, err := hc.Check(context.Background(), Params{KeyTags: []string{"db"}})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if n := len(agg.Results()); n != 0 {
		t.Errorf("expected invalid output to be dropped, got %d results", n)
	}
	if len(warnings) != 1 || warnings[0].Invocant != "Tagged" || warnings[0].Check != "CODE" {
		t.Errorf("warnings = %+v, want one for Tagged.CODE", warnings)
	}
}
