package report

import (
	"sort"

	"github.com/evalview/evalview/internal/diff"
)

// CheckSummary is one compared test plus anything the drift tracker had to
// say about it.
type CheckSummary struct {
	TestName      string
	Diff          diff.TraceDiff
	DriftWarning  string
	GateTriggered bool
}

type RunSummary struct {
	Total   int
	Passed  int
	Changed int
	Failed  int
	Checks  []CheckSummary
}

// BuildSummary buckets checks: gate-triggering statuses count as failed,
// non-passed non-gating statuses as changed.
func BuildSummary(checks []CheckSummary) RunSummary {
	summary := RunSummary{Total: len(checks)}
	for _, c := range checks {
		switch {
		case c.GateTriggered:
			summary.Failed++
		case c.Diff.Status != diff.StatusPassed:
			summary.Changed++
		default:
			summary.Passed++
		}
		summary.Checks = append(summary.Checks, c)
	}
	return summary
}

func SortChecks(summary *RunSummary) {
	sort.Slice(summary.Checks, func(i, j int) bool {
		return summary.Checks[i].TestName < summary.Checks[j].TestName
	})
}
