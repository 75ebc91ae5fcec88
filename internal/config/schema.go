package config

type ProjectConfig struct {
	Version int           `yaml:"version"`
	Project ProjectMeta   `yaml:"project,omitempty"`
	Agent   AgentConfig   `yaml:"agent,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Diff    DiffConfig    `yaml:"diff,omitempty"`
	Drift   DriftConfig   `yaml:"drift,omitempty"`
	Record  RecordConfig  `yaml:"record,omitempty"`
	Report  ReportConfig  `yaml:"report,omitempty"`
	CI      CIConfig      `yaml:"ci,omitempty"`
}

type ProjectMeta struct {
	Name string   `yaml:"name,omitempty"`
	Tags []string `yaml:"tags,omitempty"`
}

type AgentConfig struct {
	Endpoint     string `yaml:"endpoint,omitempty"`
	APIKeyEnv    string `yaml:"api_key_env,omitempty"`
	TimeoutMS    int    `yaml:"timeout_ms,omitempty"`
	BlessedByEnv string `yaml:"blessed_by_env,omitempty"`
}

type StorageConfig struct {
	GoldenDir  string `yaml:"golden_dir,omitempty"`
	RunsDir    string `yaml:"runs_dir,omitempty"`
	HistoryDir string `yaml:"history_dir,omitempty"`
}

type DiffConfig struct {
	ToolSimilarityThreshold   *float64 `yaml:"tool_similarity_threshold,omitempty"`
	OutputSimilarityThreshold *float64 `yaml:"output_similarity_threshold,omitempty"`
	ScoreRegressionThreshold  *float64 `yaml:"score_regression_threshold,omitempty"`
	IgnoreWhitespace          *bool    `yaml:"ignore_whitespace,omitempty"`
	IgnoreCaseInOutput        *bool    `yaml:"ignore_case_in_output,omitempty"`
}

type DriftConfig struct {
	Window            int      `yaml:"window,omitempty"`
	SlopeThreshold    *float64 `yaml:"slope_threshold,omitempty"`
	MaxHistoryEntries int      `yaml:"max_history_entries,omitempty"`
}

type RecordConfig struct {
	Listen     string       `yaml:"listen,omitempty"`
	AllowHosts []string     `yaml:"allow_hosts,omitempty"`
	Debug      bool         `yaml:"debug,omitempty"`
	Redact     RedactConfig `yaml:"redact,omitempty"`
}

type RedactConfig struct {
	Enabled  *bool           `yaml:"enabled,omitempty"`
	Presets  []string        `yaml:"presets,omitempty"`
	Patterns []RedactPattern `yaml:"patterns,omitempty"`
}

type RedactPattern struct {
	Name        string `yaml:"name"`
	Regex       string `yaml:"regex"`
	ReplaceWith string `yaml:"replace_with"`
}

type ReportConfig struct {
	Format   []string       `yaml:"format,omitempty"`
	Markdown MarkdownConfig `yaml:"markdown,omitempty"`
	JUnit    JUnitConfig    `yaml:"junit,omitempty"`
}

type MarkdownConfig struct {
	Path string `yaml:"path,omitempty"`
}

type JUnitConfig struct {
	Path string `yaml:"path,omitempty"`
}

type CIConfig struct {
	// FailOn lists the diff statuses that make `evalview check` exit
	// non-zero.
	FailOn []string `yaml:"fail_on,omitempty"`
}
