package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evalview/evalview/internal/config"
	"github.com/evalview/evalview/internal/diff"
	"github.com/evalview/evalview/internal/drift"
	"github.com/evalview/evalview/internal/golden"
	"github.com/evalview/evalview/internal/report"
	"github.com/evalview/evalview/internal/trace"
)

var (
	checkConfigPath string
	checkAll        bool
)

var checkCmd = &cobra.Command{
	Use:   "check [test-name]",
	Short: "Compare latest runs against goldens and track drift",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkConfigPath, "config", "c", "", "Path to config file (default: evalview.yml/evalview.yaml)")
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "Check every test with a recorded run")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProjectConfig(checkConfigPath)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}

	ctx := cmd.Context()
	runs := trace.NewRunStore(cfg.Storage.RunsDir)
	store := golden.NewStore(cfg.Storage.GoldenDir)
	tracker := drift.NewTracker(cfg.Storage.HistoryDir, cfg.Drift.MaxHistoryEntries)
	engine := diff.NewEngine(diffOptions(cfg))

	var tests []string
	switch {
	case len(args) == 1:
		tests = args
	case checkAll:
		tests, err = runs.TestNames()
		if err != nil {
			return ExitError{Code: 1, Err: err}
		}
		if len(tests) == 0 {
			return ExitError{Code: 1, Err: fmt.Errorf("no recorded runs to check")}
		}
	default:
		return ExitError{Code: 3, Err: fmt.Errorf("pass a test name or --all")}
	}

	failOn := make(map[diff.Status]bool, len(cfg.CI.FailOn))
	for _, status := range cfg.CI.FailOn {
		failOn[diff.Status(status)] = true
	}

	console := report.NewConsole(os.Stdout)
	console.Title("EvalView Check")

	var checks []report.CheckSummary
	for _, testName := range tests {
		run, ok, err := runs.Latest(testName)
		if err != nil {
			return ExitError{Code: 1, Err: err}
		}
		if !ok {
			return ExitError{Code: 1, Err: fmt.Errorf("no recorded run for %q; run `evalview run %s` first", testName, testName)}
		}

		variants, err := store.LoadAllVariants(ctx, testName)
		if err != nil {
			return ExitError{Code: 1, Err: err}
		}
		if len(variants) == 0 {
			return ExitError{Code: 4, Err: fmt.Errorf("no golden for %q; run `evalview bless %s` first", testName, testName)}
		}

		d, err := engine.CompareMultiReference(variants, &run.Trace, run.Score)
		if err != nil {
			return ExitError{Code: 1, Err: err}
		}

		tracker.RecordCheck(ctx, d, modelChanged(variants, d.MatchedVariant, &run.Trace))
		warning, _ := tracker.DetectGradualDrift(ctx, testName, cfg.Drift.Window, *cfg.Drift.SlopeThreshold)

		check := report.CheckSummary{
			TestName:      testName,
			Diff:          d,
			DriftWarning:  warning,
			GateTriggered: failOn[d.Status],
		}
		checks = append(checks, check)
		console.RenderCheck(check)
	}

	summary := report.BuildSummary(checks)
	report.SortChecks(&summary)
	console.RenderSummary(summary)

	for _, format := range cfg.Report.Format {
		switch format {
		case "markdown":
			if err := report.WriteMarkdown(summary, cfg.Report.Markdown.Path); err != nil {
				return ExitError{Code: 1, Err: err}
			}
		case "junit":
			if err := report.WriteJUnit(summary, cfg.Report.JUnit.Path); err != nil {
				return ExitError{Code: 1, Err: err}
			}
		}
	}

	if summary.Failed > 0 {
		return ExitError{Code: 2, Err: fmt.Errorf("%d check(s) failed the gate", summary.Failed)}
	}
	return nil
}

func diffOptions(cfg *config.ProjectConfig) diff.Options {
	return diff.Options{
		ToolSimilarityThreshold:   *cfg.Diff.ToolSimilarityThreshold,
		OutputSimilarityThreshold: *cfg.Diff.OutputSimilarityThreshold,
		ScoreRegressionThreshold:  *cfg.Diff.ScoreRegressionThreshold,
		IgnoreWhitespace:          *cfg.Diff.IgnoreWhitespace,
		IgnoreCaseInOutput:        *cfg.Diff.IgnoreCaseInOutput,
	}
}

// modelChanged compares the fingerprint of the matched golden against the
// actual run's; unknown fingerprints on either side never count as a
// change.
func modelChanged(variants []golden.GoldenTrace, matchedVariant string, actual *trace.ExecutionTrace) bool {
	idx := 0
	if strings.HasPrefix(matchedVariant, "variant_") {
		if n, err := strconv.Atoi(strings.TrimPrefix(matchedVariant, "variant_")); err == nil {
			idx = n
		}
	}
	if idx >= len(variants) {
		return false
	}
	goldenFP := variants[idx].Metadata.ModelFingerprint
	actualFP := actual.Fingerprint()
	return goldenFP != "" && actualFP != "" && goldenFP != actualFP
}
