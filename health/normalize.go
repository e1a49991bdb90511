package health

import (
	"encoding/json"
	"fmt"
)

// shape classifies a raw check return value.
type shape int

const (
	shapeOther   shape = iota // anything unrecognized
	shapeRecord               // a single key/value record
	shapePairs                // a flattened key/value list
	shapeWrapped              // a list whose only element is a record
)

func (s shape) String() string {
	switch s {
	case shapeRecord:
		return "record"
	case shapePairs:
		return "pairs"
	case shapeWrapped:
		return "wrapped record"
	default:
		return "other"
	}
}

func classify(raw any) shape {
	switch v := raw.(type) {
	case Result:
		if v != nil {
			return shapeRecord
		}
	case map[string]any:
		if v != nil {
			return shapeRecord
		}
	case map[string]string:
		if v != nil {
			return shapeRecord
		}
	case []Result:
		if len(v) == 1 {
			return shapeWrapped
		}
	case []map[string]any:
		if len(v) == 1 {
			return shapeWrapped
		}
	case []string:
		if len(v)%2 == 0 {
			return shapePairs
		}
	case []any:
		if len(v) == 1 && classify(v[0]) == shapeRecord {
			return shapeWrapped
		}
		if len(v)%2 == 0 && keysAreStrings(v) {
			return shapePairs
		}
	}
	return shapeOther
}

func keysAreStrings(list []any) bool {
	for i := 0; i < len(list); i += 2 {
		if _, ok := list[i].(string); !ok {
			return false
		}
	}
	return true
}

// Normalize coerces a raw check return value into a Result. Records are used
// as-is; flattened key/value lists become records with later keys winning. A
// list wrapping a single record, any other shape, and any record without a
// status are rejected.
func Normalize(raw any) (Result, error) {
	var r Result

	switch s := classify(raw); s {
	case shapeRecord:
		r = toRecord(raw)
	case shapePairs:
		r = fromPairs(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidShape, s)
	}

	if v, ok := r[KeyStatus]; !ok || v == nil {
		return nil, ErrMissingStatus
	}
	return r, nil
}

func toRecord(raw any) Result {
	switch v := raw.(type) {
	case Result:
		return v
	case map[string]any:
		return Result(v)
	case map[string]string:
		r := make(Result, len(v))
		for k, val := range v {
			r[k] = val
		}
		return r
	}
	return nil
}

func fromPairs(raw any) Result {
	switch v := raw.(type) {
	case []string:
		r := make(Result, len(v)/2)
		for i := 0; i < len(v); i += 2 {
			r[v[i]] = v[i+1]
		}
		return r
	case []any:
		r := make(Result, len(v)/2)
		for i := 0; i < len(v); i += 2 {
			r[v[i].(string)] = v[i+1]
		}
		return r
	}
	return nil
}

// render produces a best-effort rendering of a rejected value.
func render(v any) string {
	if err, ok := v.(error); ok {
		return fmt.Sprintf("error(%q)", err.Error())
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%#v", v)
}
