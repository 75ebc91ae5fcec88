package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "evalview",
	Short: "EvalView - regression testing for multi-step AI agents",
	Long: `EvalView runs named test queries against an agent endpoint, captures the
execution trace, and detects behavioral drift against blessed baselines.

Key commands:
  evalview init      Initialize a project (evalview.yml + .evalview dirs)
  evalview run       Execute a test query against the agent endpoint
  evalview record    Capture the agent's tool calls through a proxy
  evalview bless     Promote the latest run of a test to a golden baseline
  evalview check     Compare latest runs against goldens and track drift`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := 1
		if exitErr, ok := err.(ExitError); ok {
			code = exitErr.Code
			err = exitErr.Err
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
}

// ExitError carries an exit code through cobra's error return. Codes:
// 1 runtime failure, 2 gate failure, 3 config/usage, 4 missing golden.
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return "exit"
	}
	return e.Err.Error()
}
