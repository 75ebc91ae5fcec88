package config

import (
	"fmt"
	"strings"
)

var validStatuses = map[string]bool{
	"passed":         true,
	"output_changed": true,
	"tools_changed":  true,
	"regression":     true,
	"contract_drift": true,
}

var validFormats = map[string]bool{
	"console":  true,
	"markdown": true,
	"junit":    true,
}

func validateConfig(cfg *ProjectConfig) error {
	var problems []string

	if cfg.Version != 1 {
		problems = append(problems, fmt.Sprintf("unsupported config version %d", cfg.Version))
	}

	if t := cfg.Diff.OutputSimilarityThreshold; t != nil && (*t < 0 || *t > 1) {
		problems = append(problems, "diff.output_similarity_threshold must be within [0, 1]")
	}
	if t := cfg.Diff.ToolSimilarityThreshold; t != nil && (*t < 0 || *t > 1) {
		problems = append(problems, "diff.tool_similarity_threshold must be within [0, 1]")
	}
	if t := cfg.Diff.ScoreRegressionThreshold; t != nil && *t < 0 {
		problems = append(problems, "diff.score_regression_threshold must not be negative")
	}

	if cfg.Drift.Window < 0 {
		problems = append(problems, "drift.window must not be negative")
	}
	if t := cfg.Drift.SlopeThreshold; t != nil && *t > 0 {
		problems = append(problems, "drift.slope_threshold must be zero or negative (declining slopes)")
	}
	if cfg.Drift.MaxHistoryEntries < 0 {
		problems = append(problems, "drift.max_history_entries must not be negative")
	}

	for _, status := range cfg.CI.FailOn {
		if !validStatuses[status] {
			problems = append(problems, fmt.Sprintf("ci.fail_on: unknown status %q", status))
		}
	}
	for _, format := range cfg.Report.Format {
		if !validFormats[format] {
			problems = append(problems, fmt.Sprintf("report.format: unknown format %q", format))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
