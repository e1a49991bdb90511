package health

import (
	"fmt"
	"maps"
)

// Well-known statuses. The vocabulary is open: only StatusOK is treated as
// non-degrading, every other value degrades.
const (
	StatusOK       = "OK"
	StatusWarning  = "WARNING"
	StatusCritical = "CRITICAL"
	StatusUnknown  = "UNKNOWN"
)

// Well-known record keys.
const (
	KeyStatus  = "status"
	KeyID      = "id"
	KeyLabel   = "label"
	KeyResults = "results"
	KeyTags    = "tags"
)

// Result is the canonical outcome of one check, or the aggregate of many.
// Keys other than the well-known ones are preserved as-is.
type Result map[string]any

// Status returns the status field, or "" if absent.
func (r Result) Status() string {
	return stringField(r, KeyStatus)
}

// ID returns the id field, or "" if absent.
func (r Result) ID() string {
	return stringField(r, KeyID)
}

// Label returns the label field, or "" if absent.
func (r Result) Label() string {
	return stringField(r, KeyLabel)
}

// IsOK reports whether the status is exactly StatusOK.
func (r Result) IsOK() bool {
	return r.Status() == StatusOK
}

// Results returns the child records of an aggregate.
func (r Result) Results() []Result {
	results, _ := r[KeyResults].([]Result)
	return results
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Params carries the key/value pairs handed to a check.
type Params map[string]any

// Merge returns a fresh Params holding p overlaid by overlay. Keys present in
// both take the overlay value. Neither input is modified.
func (p Params) Merge(overlay Params) Params {
	out := make(Params, len(p)+len(overlay))
	maps.Copy(out, p)
	maps.Copy(out, overlay)
	return out
}
