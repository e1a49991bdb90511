package health

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

var (
	// ErrUsage indicates Register or Check was called without an instance.
	ErrUsage = errors.New("health: register and check require a HealthCheck instance")

	// ErrConfiguration is the parent of every *ConfigurationError.
	ErrConfiguration = errors.New("health: configuration error")

	// ErrCheckRequired indicates an empty or missing check spec.
	ErrCheckRequired = errors.New("health: check parameter required")

	// ErrCannotResolve indicates a check name that no invocant responds to.
	ErrCannotResolve = errors.New("health: cannot resolve check")

	// ErrInvocantCannot indicates an explicit invocant lacks the named method.
	ErrInvocantCannot = errors.New("health: invocant cannot perform check")

	// ErrNoChecks indicates Check was called on an empty registry.
	ErrNoChecks = errors.New("health: no registered checks")
)

// Normalization errors. They never abort Check; the offending output is dropped.
var (
	// ErrInvalidShape indicates a return value that is not a record or a key/value list.
	ErrInvalidShape = errors.New("health: invalid result shape")

	// ErrMissingStatus indicates a record without a status field.
	ErrMissingStatus = errors.New("health: result has no status")
)

// ConfigurationError reports a registration or check call that cannot proceed.
// It matches both ErrConfiguration and its Reason under errors.Is.
type ConfigurationError struct {
	// Reason is one of ErrCheckRequired, ErrCannotResolve, ErrInvocantCannot, ErrNoChecks.
	Reason error

	// Message is the human-readable description.
	Message string

	// Site is the file:line of the call that triggered the error.
	Site string
}

func (e *ConfigurationError) Error() string {
	if e.Site == "" {
		return "health: " + e.Message
	}
	return "health: " + e.Message + " at " + e.Site
}

func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, e.Reason}
}

func configError(reason error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// InvalidResultWarning describes a check whose output was dropped because it
// could not be normalized into a Result.
type InvalidResultWarning struct {
	// Invocant is the rendered invocant, empty for plain functions.
	Invocant string

	// Check is the method name, or "CODE" for function checks.
	Check string

	// Value is a best-effort rendering of the rejected value.
	Value string

	// Site is the file:line of the Check call.
	Site string

	// Err is ErrInvalidShape or ErrMissingStatus.
	Err error
}

func (w InvalidResultWarning) Error() string {
	target := w.Check
	if w.Invocant != "" {
		target = w.Invocant + "." + w.Check
	}
	return fmt.Sprintf("health: invalid return value from %s: %s (%v) at %s", target, w.Value, w.Err, w.Site)
}

func (w InvalidResultWarning) Unwrap() error {
	return w.Err
}

// callSite returns file:line of the caller skip frames above its own caller.
func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
