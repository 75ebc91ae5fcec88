package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/evalview/evalview/internal/config"
	"github.com/evalview/evalview/internal/golden"
	"github.com/evalview/evalview/internal/trace"
)

var (
	blessConfigPath string
	blessVariant    string
	blessNotes      string
	blessYes        bool
)

var blessCmd = &cobra.Command{
	Use:   "bless <test-name>",
	Short: "Promote the latest run of a test to a golden baseline",
	Args:  cobra.ExactArgs(1),
	RunE:  runBless,
}

func init() {
	rootCmd.AddCommand(blessCmd)

	blessCmd.Flags().StringVarP(&blessConfigPath, "config", "c", "", "Path to config file (default: evalview.yml/evalview.yaml)")
	blessCmd.Flags().StringVar(&blessVariant, "variant", "", "Save as a named variant instead of the default golden")
	blessCmd.Flags().StringVar(&blessNotes, "notes", "", "Notes to store with the golden")
	blessCmd.Flags().BoolVarP(&blessYes, "yes", "y", false, "Overwrite an existing golden without confirmation")
}

func runBless(cmd *cobra.Command, args []string) error {
	testName := args[0]

	cfg, err := config.LoadProjectConfig(blessConfigPath)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}

	runs := trace.NewRunStore(cfg.Storage.RunsDir)
	run, ok, err := runs.Latest(testName)
	if err != nil {
		return ExitError{Code: 1, Err: err}
	}
	if !ok {
		return ExitError{Code: 1, Err: fmt.Errorf("no recorded run for %q; run `evalview run %s` first", testName, testName)}
	}

	store := golden.NewStore(cfg.Storage.GoldenDir)

	if _, exists, _ := store.Load(testName, blessVariant); exists && !blessYes {
		confirmed := false
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("A golden for %q already exists. Overwrite it?", goldenKey(testName, blessVariant))).
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return ExitError{Code: 1, Err: err}
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	g := golden.FromRun(run, blessedBy(cfg), blessNotes)
	path, err := store.Save(g, blessVariant)
	if err != nil {
		var limitErr *golden.VariantLimitError
		if errors.As(err, &limitErr) {
			return ExitError{Code: 1, Err: limitErr}
		}
		return ExitError{Code: 1, Err: err}
	}

	fmt.Printf("Blessed %s (score %.1f, %d step(s)) → %s\n", goldenKey(testName, blessVariant), run.Score, len(run.Trace.Steps), path)
	return nil
}

func goldenKey(testName, variant string) string {
	if variant == "" {
		return testName
	}
	return testName + "/" + variant
}

func blessedBy(cfg *config.ProjectConfig) string {
	if cfg.Agent.BlessedByEnv != "" {
		if who := os.Getenv(cfg.Agent.BlessedByEnv); who != "" {
			return who
		}
	}
	return os.Getenv("USER")
}
