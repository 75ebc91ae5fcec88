package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evalview/evalview/internal/config"
	"github.com/evalview/evalview/internal/record"
	"github.com/evalview/evalview/internal/trace"
	"github.com/evalview/evalview/internal/util"
)

var (
	recordConfigPath string
	recordListen     string
	recordScore      float64
)

var recordCmd = &cobra.Command{
	Use:   "record <test-name>",
	Short: "Run the capture proxy and save the agent's tool calls as a run",
	Long: `Start a forward HTTP proxy, point your agent's HTTP_PROXY at it, and run
the test query. Press Ctrl+C when the agent is done; the captured tool
calls are assembled into a trace and appended to the run store.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().StringVarP(&recordConfigPath, "config", "c", "", "Path to config file (default: evalview.yml/evalview.yaml)")
	recordCmd.Flags().StringVar(&recordListen, "listen", "", "Proxy listen address (overrides config)")
	recordCmd.Flags().Float64Var(&recordScore, "score", 0, "Score to record for this run")
}

func runRecord(cmd *cobra.Command, args []string) error {
	testName := args[0]

	cfg, err := config.LoadProjectConfig(recordConfigPath)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}
	if recordListen != "" {
		cfg.Record.Listen = recordListen
	}

	redactor, err := buildRedactor(cfg)
	if err != nil {
		return ExitError{Code: 3, Err: fmt.Errorf("redact config: %w", err)}
	}

	ctx := cmd.Context()
	recorder := record.NewRecorder(ctx, cfg, redactor)
	if err := recorder.Start(); err != nil {
		return ExitError{Code: 1, Err: err}
	}

	fmt.Printf("Recording %s on http://%s\n", testName, cfg.Record.Listen)
	fmt.Printf("Set HTTP_PROXY=http://%s for your agent, then press Ctrl+C to finish.\n", cfg.Record.Listen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	signal.Stop(sigCh)

	if err := recorder.Stop(); err != nil {
		return ExitError{Code: 1, Err: err}
	}

	tr := recorder.Finish()
	if len(tr.Steps) == 0 {
		fmt.Println("\nNo tool calls captured; nothing recorded.")
		return nil
	}

	store := trace.NewRunStore(cfg.Storage.RunsDir)
	rec := trace.RunRecord{
		RunID:    util.NewID(),
		TestName: testName,
		Score:    recordScore,
		Trace:    tr,
	}
	if err := store.Append(rec); err != nil {
		return ExitError{Code: 1, Err: err}
	}

	fmt.Printf("\nRecorded run %s for %s: %d step(s), %dms\n",
		rec.RunID, testName, len(tr.Steps), tr.Metrics.TotalLatencyMS)
	return nil
}

// buildRedactor compiles the configured presets and custom patterns; a nil
// redactor means redaction is off.
func buildRedactor(cfg *config.ProjectConfig) (trace.Redactor, error) {
	rc := cfg.Record.Redact
	if rc.Enabled != nil && !*rc.Enabled {
		return nil, nil
	}

	patterns := trace.PresetPatterns(rc.Presets)
	for _, p := range rc.Patterns {
		patterns = append(patterns, trace.RedactPattern{
			Name:        p.Name,
			Regex:       p.Regex,
			ReplaceWith: p.ReplaceWith,
		})
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return trace.NewRedactor(patterns)
}
