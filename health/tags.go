package health

import (
	"slices"
	"strings"
)

// ShouldRun reports whether entry is selected by the requested tags. No
// requested tags selects everything. Otherwise the entry's effective tags must
// share at least one tag with the request. Effective tags are the entry's own
// tags, else its invocant's DefaultTags, else the registry's default tags.
func (h *HealthCheck) ShouldRun(entry Entry, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range h.effectiveTags(entry) {
		if slices.Contains(tags, t) {
			return true
		}
	}
	return false
}

func (h *HealthCheck) effectiveTags(entry Entry) []string {
	if len(entry.tags) > 0 {
		return entry.tags
	}
	if d, ok := entry.invocant.(HasDefaultTags); ok {
		if t := d.DefaultTags(); len(t) > 0 {
			return t
		}
	}
	if h == nil {
		return nil
	}
	return h.tags
}

// requestedTags extracts the tag selection from call params. It accepts a
// []string, a []any of strings, or a comma separated string.
func requestedTags(params Params) []string {
	switch v := params[KeyTags].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitTags(v)
	}
	return nil
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
