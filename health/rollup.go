package health

// RollupFunc computes an aggregate status from the collected child results.
type RollupFunc func(results []Result) string

// RollupStatus returns StatusOK when every child is OK, the status of the
// first non-OK child otherwise, and StatusUnknown when no child ran.
func RollupStatus(results []Result) string {
	if len(results) == 0 {
		return StatusUnknown
	}
	for _, r := range results {
		if !r.IsOK() {
			return r.Status()
		}
	}
	return StatusOK
}

// RollupSeverity ranks the well-known statuses CRITICAL > UNKNOWN > WARNING > OK
// and returns the most severe one present. Statuses outside the well-known
// set rank as CRITICAL.
func RollupSeverity(results []Result) string {
	if len(results) == 0 {
		return StatusUnknown
	}
	worst, rank := StatusOK, 0
	for _, r := range results {
		if n := severity(r.Status()); n > rank {
			worst, rank = r.Status(), n
		}
	}
	return worst
}

func severity(status string) int {
	switch status {
	case StatusOK:
		return 0
	case StatusWarning:
		return 1
	case StatusUnknown:
		return 2
	default:
		return 3
	}
}
