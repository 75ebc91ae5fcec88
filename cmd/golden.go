package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evalview/evalview/internal/config"
	"github.com/evalview/evalview/internal/golden"
)

var (
	goldenConfigPath string
	goldenVariant    string
)

var goldenCmd = &cobra.Command{
	Use:   "golden",
	Short: "Manage golden baselines",
}

var goldenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all blessed goldens",
	RunE:  runGoldenList,
}

var goldenShowCmd = &cobra.Command{
	Use:   "show <test-name>",
	Short: "Show one golden's metadata and tool sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoldenShow,
}

var goldenDeleteCmd = &cobra.Command{
	Use:   "delete <test-name>",
	Short: "Delete a golden (optionally one variant)",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoldenDelete,
}

func init() {
	rootCmd.AddCommand(goldenCmd)
	goldenCmd.AddCommand(goldenListCmd, goldenShowCmd, goldenDeleteCmd)

	goldenCmd.PersistentFlags().StringVarP(&goldenConfigPath, "config", "c", "", "Path to config file (default: evalview.yml/evalview.yaml)")
	goldenShowCmd.Flags().StringVar(&goldenVariant, "variant", "", "Variant name")
	goldenDeleteCmd.Flags().StringVar(&goldenVariant, "variant", "", "Variant name")
}

func runGoldenList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProjectConfig(goldenConfigPath)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}

	store := golden.NewStore(cfg.Storage.GoldenDir)
	metas, err := store.List(cmd.Context())
	if err != nil {
		return ExitError{Code: 1, Err: err}
	}
	if len(metas) == 0 {
		fmt.Println("No goldens blessed yet.")
		return nil
	}

	for _, meta := range metas {
		line := fmt.Sprintf("%-30s score %.1f  blessed %s", meta.TestName, meta.Score, meta.BlessedAt.Format("2006-01-02 15:04"))
		if count := store.CountVariants(meta.TestName); count > 1 {
			line += fmt.Sprintf("  (%d variants)", count)
		}
		fmt.Println(line)
	}
	return nil
}

func runGoldenShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProjectConfig(goldenConfigPath)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}

	store := golden.NewStore(cfg.Storage.GoldenDir)
	g, ok, err := store.Load(args[0], goldenVariant)
	if err != nil {
		return ExitError{Code: 1, Err: err}
	}
	if !ok {
		return ExitError{Code: 4, Err: fmt.Errorf("no golden for %q", goldenKey(args[0], goldenVariant))}
	}

	fmt.Printf("Test:        %s\n", g.Metadata.TestName)
	fmt.Printf("Blessed:     %s", g.Metadata.BlessedAt.Format("2006-01-02 15:04:05"))
	if g.Metadata.BlessedBy != "" {
		fmt.Printf(" by %s", g.Metadata.BlessedBy)
	}
	fmt.Println()
	fmt.Printf("Score:       %.1f\n", g.Metadata.Score)
	if g.Metadata.ModelFingerprint != "" {
		fmt.Printf("Model:       %s\n", g.Metadata.ModelFingerprint)
	}
	if g.Metadata.Notes != "" {
		fmt.Printf("Notes:       %s\n", g.Metadata.Notes)
	}
	fmt.Printf("Tools:       %s\n", strings.Join(g.ToolSequence, " → "))
	hash := g.OutputHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	fmt.Printf("Output hash: %s\n", hash)
	return nil
}

func runGoldenDelete(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProjectConfig(goldenConfigPath)
	if err != nil {
		return ExitError{Code: 3, Err: err}
	}

	store := golden.NewStore(cfg.Storage.GoldenDir)
	removed, err := store.Delete(args[0], goldenVariant)
	if err != nil {
		return ExitError{Code: 1, Err: err}
	}
	if !removed {
		fmt.Printf("Nothing to delete for %s\n", goldenKey(args[0], goldenVariant))
		return nil
	}
	fmt.Printf("Deleted golden %s\n", goldenKey(args[0], goldenVariant))
	return nil
}
