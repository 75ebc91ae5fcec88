package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func WriteMarkdown(summary RunSummary, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# EvalView Report\n\n")
	fmt.Fprintf(&b, "Total: %d | Passed: %d | Changed: %d | Failed: %d\n\n", summary.Total, summary.Passed, summary.Changed, summary.Failed)

	b.WriteString("## Checks\n")
	for _, c := range summary.Checks {
		fmt.Fprintf(&b, "- **%s**: %s (score %+.1f, output similarity %.2f", c.TestName, c.Diff.Status, c.Diff.ScoreDiff, c.Diff.OutputSimilarity())
		if len(c.Diff.ToolDiffs) > 0 {
			fmt.Fprintf(&b, ", %d tool change(s)", len(c.Diff.ToolDiffs))
		}
		if c.Diff.MatchedVariant != "" {
			fmt.Fprintf(&b, ", matched %s", c.Diff.MatchedVariant)
		}
		b.WriteString(")\n")
	}
	b.WriteString("\n")

	b.WriteString("## Drift Warnings\n")
	warnings := collectWarnings(summary)
	if len(warnings) == 0 {
		b.WriteString("- None\n")
	} else {
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

func collectWarnings(summary RunSummary) []string {
	var out []string
	for _, c := range summary.Checks {
		if c.DriftWarning != "" {
			out = append(out, c.DriftWarning)
		}
	}
	sort.Strings(out)
	return out
}
