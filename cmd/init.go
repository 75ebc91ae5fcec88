package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/evalview/evalview/internal/config"
)

var (
	initForce       bool
	initUseDefaults bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project with interactive setup",
	Long:  `Initialize a new EvalView project with interactive configuration or use defaults.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force initialization even if project exists")
	initCmd.Flags().BoolVarP(&initUseDefaults, "yes", "y", false, "Use default values without interactive prompts")
}

func runInit(cmd *cobra.Command, args []string) error {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	fmt.Println()
	fmt.Println(titleStyle.Render("EvalView Initialize"))
	fmt.Println(dimStyle.Render("Setting up agent regression testing..."))
	fmt.Println()

	if _, err := os.Stat("evalview.yml"); err == nil && !initForce {
		fmt.Printf("%s Project already initialized. Use --force to reinitialize.\n", warnStyle.Render("Warning:"))
		return ExitError{Code: 3, Err: fmt.Errorf("evalview.yml already exists")}
	}

	cwd, _ := os.Getwd()
	defaultProject := filepath.Base(cwd)

	var cfg *config.ProjectConfig
	if initUseDefaults {
		cfg = config.DefaultConfig(defaultProject)
	} else {
		var err error
		cfg, err = runInteractiveSetup(defaultProject)
		if err != nil {
			return ExitError{Code: 1, Err: err}
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return ExitError{Code: 1, Err: fmt.Errorf("serialize config: %w", err)}
	}
	if err := os.WriteFile("evalview.yml", data, 0o644); err != nil {
		return ExitError{Code: 1, Err: fmt.Errorf("write config: %w", err)}
	}

	for _, dir := range []string{cfg.Storage.GoldenDir, cfg.Storage.RunsDir, cfg.Storage.HistoryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ExitError{Code: 1, Err: err}
		}
	}

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Project initialized successfully!"))
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Run a test query:", dimStyle.Render("evalview run <test-name> --input \"...\""))
	fmt.Println("  2. Bless the result:", dimStyle.Render("evalview bless <test-name>"))
	fmt.Println("  3. Gate changes:    ", dimStyle.Render("evalview check --all"))
	fmt.Println()
	return nil
}

func runInteractiveSetup(defaultProject string) (*config.ProjectConfig, error) {
	cfg := config.DefaultConfig(defaultProject)

	var projectName string
	var endpoint string
	var apiKeyEnv string
	var allowHosts string
	var failOn []string
	var redactPresets []string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project Name").
				Value(&projectName).
				Placeholder(defaultProject),

			huh.NewInput().
				Title("Agent Endpoint").
				Description("HTTP endpoint that runs a test query and returns a trace").
				Value(&endpoint).
				Placeholder("http://localhost:8080/run"),

			huh.NewInput().
				Title("API Key Env Var").
				Description("Environment variable holding the agent's API key (optional)").
				Value(&apiKeyEnv).
				Placeholder("AGENT_API_KEY"),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Recorder Allow Hosts").
				Description("Comma-separated hosts the capture proxy records (empty = all)").
				Value(&allowHosts),

			huh.NewMultiSelect[string]().
				Title("Redaction Presets").
				Description("Scrub captured traces before they are stored").
				Options(
					huh.NewOption("Basic PII (emails, phones)", "pii_basic"),
					huh.NewOption("Secrets (api keys, tokens)", "secrets"),
				).
				Value(&redactPresets).
				Limit(2),
		),

		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Fail CI On").
				Description("Diff statuses that make `evalview check` exit non-zero").
				Options(
					huh.NewOption("Regression", "regression"),
					huh.NewOption("Tools Changed", "tools_changed"),
					huh.NewOption("Output Changed", "output_changed"),
					huh.NewOption("Contract Drift", "contract_drift"),
				).
				Value(&failOn).
				Limit(4),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return nil, err
	}

	if projectName != "" {
		cfg.Project.Name = projectName
	}
	cfg.Agent.Endpoint = endpoint
	cfg.Agent.APIKeyEnv = apiKeyEnv

	if allowHosts != "" {
		for _, host := range strings.Split(allowHosts, ",") {
			if host = strings.TrimSpace(host); host != "" {
				cfg.Record.AllowHosts = append(cfg.Record.AllowHosts, host)
			}
		}
	}
	if len(redactPresets) > 0 {
		cfg.Record.Redact.Presets = redactPresets
	}
	if len(failOn) > 0 {
		cfg.CI.FailOn = failOn
	}

	return cfg, nil
}
