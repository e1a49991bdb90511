package health

import (
	"context"
	"encoding/json"
	"maps"

	"golang.org/x/sync/singleflight"
)

// Coalescer lets concurrent callers with identical params share one run of
// the registry. Checks within that run still execute sequentially.
//
// The shared run uses the context of the caller that started it.
type Coalescer struct {
	hc    *HealthCheck
	group singleflight.Group
}

// NewCoalescer wraps hc.
func NewCoalescer(hc *HealthCheck) *Coalescer {
	return &Coalescer{hc: hc}
}

// Check behaves like HealthCheck.Check. Params that cannot be encoded as a
// key bypass coalescing.
func (c *Coalescer) Check(ctx context.Context, params Params) (Result, error) {
	if c == nil || c.hc == nil {
		return nil, ErrUsage
	}
	site := callSite(1)

	key, ok := coalesceKey(params)
	if !ok {
		return c.hc.check(ctx, site, params)
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.hc.check(ctx, site, params)
	})
	if err != nil {
		return nil, err
	}

	agg := v.(Result)
	if shared {
		agg = cloneResult(agg)
	}
	return agg, nil
}

// cloneResult copies r and every nested result record, so callers sharing a
// run can each modify what they got back.
func cloneResult(r Result) Result {
	c := maps.Clone(r)
	if children, ok := r[KeyResults].([]Result); ok {
		cp := make([]Result, len(children))
		for i, child := range children {
			cp[i] = cloneResult(child)
		}
		c[KeyResults] = cp
	}
	return c
}

// coalesceKey encodes params deterministically; encoding/json sorts map keys.
func coalesceKey(params Params) (string, bool) {
	if len(params) == 0 {
		return "{}", true
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", false
	}
	return string(data), true
}
