package config

import "path/filepath"

const (
	defaultRootDir = ".evalview"

	defaultAgentTimeoutMS = 60000

	DefaultToolSimilarityThreshold   = 0.8
	DefaultOutputSimilarityThreshold = 0.95
	DefaultScoreRegressionThreshold  = 5.0

	defaultDriftWindow         = 10
	defaultDriftSlopeThreshold = -0.02
	defaultMaxHistoryEntries   = 10000

	defaultRecordListen = "127.0.0.1:4141"
)

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if cfg.Agent.TimeoutMS == 0 {
		cfg.Agent.TimeoutMS = defaultAgentTimeoutMS
	}

	if cfg.Storage.GoldenDir == "" {
		cfg.Storage.GoldenDir = filepath.Join(defaultRootDir, "golden")
	}
	if cfg.Storage.RunsDir == "" {
		cfg.Storage.RunsDir = filepath.Join(defaultRootDir, "runs")
	}
	if cfg.Storage.HistoryDir == "" {
		cfg.Storage.HistoryDir = filepath.Join(defaultRootDir, "history")
	}

	if cfg.Diff.ToolSimilarityThreshold == nil {
		cfg.Diff.ToolSimilarityThreshold = float64Ptr(DefaultToolSimilarityThreshold)
	}
	if cfg.Diff.OutputSimilarityThreshold == nil {
		cfg.Diff.OutputSimilarityThreshold = float64Ptr(DefaultOutputSimilarityThreshold)
	}
	if cfg.Diff.ScoreRegressionThreshold == nil {
		cfg.Diff.ScoreRegressionThreshold = float64Ptr(DefaultScoreRegressionThreshold)
	}
	if cfg.Diff.IgnoreWhitespace == nil {
		cfg.Diff.IgnoreWhitespace = boolPtr(true)
	}
	if cfg.Diff.IgnoreCaseInOutput == nil {
		cfg.Diff.IgnoreCaseInOutput = boolPtr(false)
	}

	if cfg.Drift.Window == 0 {
		cfg.Drift.Window = defaultDriftWindow
	}
	if cfg.Drift.SlopeThreshold == nil {
		cfg.Drift.SlopeThreshold = float64Ptr(defaultDriftSlopeThreshold)
	}
	if cfg.Drift.MaxHistoryEntries == 0 {
		cfg.Drift.MaxHistoryEntries = defaultMaxHistoryEntries
	}

	if cfg.Record.Listen == "" {
		cfg.Record.Listen = defaultRecordListen
	}

	if len(cfg.Report.Format) == 0 {
		cfg.Report.Format = []string{"console"}
	}
	if cfg.Report.Markdown.Path == "" {
		cfg.Report.Markdown.Path = filepath.Join(defaultRootDir, "report.md")
	}
	if cfg.Report.JUnit.Path == "" {
		cfg.Report.JUnit.Path = filepath.Join(defaultRootDir, "report.xml")
	}

	if len(cfg.CI.FailOn) == 0 {
		cfg.CI.FailOn = []string{"regression", "tools_changed"}
	}
}

func float64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool          { return &b }
