package fleet

import (
	"fmt"
	"sort"
	"strings"
)

// Result is the outcome of one operation on one target. Either Message or
// Err is set; a target's error is its outcome, never a run-level failure.
type Result struct {
	Target  string
	Message string
	Err     error
}

// Report aggregates per-target outcomes of one fleet operation.
type Report []Result

// Failed reports whether any target ended in an error.
func (r Report) Failed() bool {
	for _, res := range r {
		if res.Err != nil {
			return true
		}
	}

	return false
}

// String renders one line per target, sorted by target name. Execution
// order across targets carries no meaning, so the report doesn't either.
func (r Report) String() string {
	sorted := make(Report, len(r))
	copy(sorted, r)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Target < sorted[j].Target })

	lines := make([]string, 0, len(sorted))

	for _, res := range sorted {
		if res.Err != nil {
			lines = append(lines, fmt.Sprintf("%s: FAILED: %v", res.Target, res.Err))
			continue
		}

		lines = append(lines, fmt.Sprintf("%s: %s", res.Target, res.Message))
	}

	return strings.Join(lines, "\n")
}
