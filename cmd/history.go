package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evalview/evalview/internal/config"
	"github.com/evalview/evalview/internal/drift"
	"github.com/evalview/evalview/internal/report"
)

var (
	historyConfigPath string
	historyLimit      int
)

var historyCmd = &cobra.Command{
	Use:   "history <test-name>",
	Short: "Show recent check history and the similarity trend for a test",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyConfigPath, "config", "c", "", "Path to config file (default: evalview.yml/evalview.yaml)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	testName := args[0]

	cfg, err := config.LoadProjectConfig(historyConfigPath)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}

	ctx := cmd.Context()
	tracker := drift.NewTracker(cfg.Storage.HistoryDir, cfg.Drift.MaxHistoryEntries)

	entries := tracker.TestHistory(ctx, testName, historyLimit)
	if len(entries) == 0 {
		fmt.Printf("No check history for %q yet.\n", testName)
		return nil
	}

	console := report.NewConsole(os.Stdout)
	console.Title(fmt.Sprintf("History for %s", testName))

	for _, entry := range entries {
		line := fmt.Sprintf("%s  %-15s score %+6.1f  similarity %.2f",
			entry.Timestamp.Format("2006-01-02 15:04"), entry.Status, entry.ScoreDiff, entry.OutputSimilarity)
		if entry.ToolChanges > 0 {
			line += fmt.Sprintf("  %d tool change(s)", entry.ToolChanges)
		}
		if entry.ModelChanged {
			line += "  [model changed]"
		}
		fmt.Println(line)
	}

	if warning, ok := tracker.DetectGradualDrift(ctx, testName, cfg.Drift.Window, *cfg.Drift.SlopeThreshold); ok {
		fmt.Println()
		fmt.Println("⚠ " + warning)
	}
	return nil
}
