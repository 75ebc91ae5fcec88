package trace

import "time"

// ExecutionTrace is one finished agent run. Adapters construct it once per
// run; everything downstream treats it as read-only.
type ExecutionTrace struct {
	SessionID   string       `json:"session_id"`
	StartedAt   time.Time    `json:"started_at"`
	EndedAt     time.Time    `json:"ended_at,omitempty"`
	Steps       []StepTrace  `json:"steps,omitempty"`
	FinalOutput string       `json:"final_output,omitempty"`
	Metrics     TraceMetrics `json:"metrics"`
	Model       *ModelInfo   `json:"model,omitempty"`
}

// StepTrace is one tool call within a run. Its position in the parent
// trace's Steps slice is the execution order and is significant: the diff
// engine aligns tool sequences positionally.
type StepTrace struct {
	StepID  string           `json:"step_id"`
	Tool    string           `json:"tool"`
	Params  map[string]Value `json:"params,omitempty"`
	Output  Value            `json:"output,omitempty"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
	Metrics StepMetrics      `json:"metrics"`
}

type TraceMetrics struct {
	TotalCostUSD   float64     `json:"total_cost_usd"`
	TotalLatencyMS int         `json:"total_latency_ms"`
	Tokens         *TokenUsage `json:"tokens,omitempty"`
}

type StepMetrics struct {
	LatencyMS int         `json:"latency_ms,omitempty"`
	CostUSD   float64     `json:"cost_usd,omitempty"`
	Tokens    *TokenUsage `json:"tokens,omitempty"`
}

type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Cached int `json:"cached,omitempty"`
}

type ModelInfo struct {
	ID       string `json:"id,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// ToolSequence returns the ordered tool names of the trace's steps.
func (t *ExecutionTrace) ToolSequence() []string {
	seq := make([]string, 0, len(t.Steps))
	for _, step := range t.Steps {
		seq = append(seq, step.Tool)
	}
	return seq
}

// Fingerprint identifies the model that produced a trace, e.g.
// "openai/gpt-4o". Empty when the adapter did not report model identity.
func (t *ExecutionTrace) Fingerprint() string {
	if t.Model == nil {
		return ""
	}
	if t.Model.Provider == "" {
		return t.Model.ID
	}
	return t.Model.Provider + "/" + t.Model.ID
}
