package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evalview/evalview/internal/agent"
	"github.com/evalview/evalview/internal/config"
	"github.com/evalview/evalview/internal/trace"
	"github.com/evalview/evalview/internal/util"
)

var (
	runConfigPath string
	runInput      string
	runScore      float64
	runScoreSet   bool
)

var runCmd = &cobra.Command{
	Use:   "run <test-name>",
	Short: "Execute a test query against the agent endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to config file (default: evalview.yml/evalview.yaml)")
	runCmd.Flags().StringVar(&runInput, "input", "", "Query input to send to the agent")
	runCmd.Flags().Float64Var(&runScore, "score", 0, "Score to record for this run (overrides the agent-reported score)")
}

func runRun(cmd *cobra.Command, args []string) error {
	runScoreSet = cmd.Flags().Changed("score")
	testName := args[0]

	cfg, err := config.LoadProjectConfig(runConfigPath)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}

	adapter, err := agent.NewHTTPAdapter(cfg)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}

	tr, score, err := adapter.Execute(cmd.Context(), agent.Request{TestName: testName, Input: runInput})
	if err != nil {
		return ExitError{Code: 1, Err: err}
	}
	if runScoreSet {
		score = runScore
	}

	store := trace.NewRunStore(cfg.Storage.RunsDir)
	record := trace.RunRecord{
		RunID:    util.NewID(),
		TestName: testName,
		Score:    score,
		Trace:    *tr,
	}
	if err := store.Append(record); err != nil {
		return ExitError{Code: 1, Err: err}
	}

	fmt.Printf("Recorded run %s for %s: %d step(s), score %.1f, %dms\n",
		record.RunID, testName, len(tr.Steps), score, tr.Metrics.TotalLatencyMS)
	return nil
}
