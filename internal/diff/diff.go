// Package diff compares actual execution traces against golden baselines.
// Everything in it is pure: comparisons read their inputs, allocate fresh
// outputs, and perform no I/O.
package diff

import "github.com/evalview/evalview/internal/trace"

// Status is the five-way classification of one comparison. StatusContractDrift
// is reserved for externally detected interface drift; the engine never
// assigns it.
type Status string

const (
	StatusPassed        Status = "passed"
	StatusOutputChanged Status = "output_changed"
	StatusToolsChanged  Status = "tools_changed"
	StatusRegression    Status = "regression"
	StatusContractDrift Status = "contract_drift"
)

// Rank orders statuses best to worst for multi-reference selection.
func (s Status) Rank() int {
	switch s {
	case StatusPassed:
		return 0
	case StatusOutputChanged:
		return 1
	case StatusToolsChanged:
		return 2
	case StatusRegression:
		return 3
	case StatusContractDrift:
		return 4
	default:
		return 5
	}
}

// ToolChange names the alignment outcome a ToolDiff records.
type ToolChange string

const (
	// ToolAdded: the actual run called a tool the golden never did.
	ToolAdded ToolChange = "added"
	// ToolRemoved: the golden called a tool the actual run skipped.
	ToolRemoved ToolChange = "removed"
	// ToolChanged: a different tool at an aligned position.
	ToolChanged ToolChange = "changed"
	// ToolParamsChanged: same tool at an aligned position, parameters differ.
	ToolParamsChanged ToolChange = "params_changed"
)

// ToolDiff is one divergence in the aligned tool sequences.
type ToolDiff struct {
	Position   int             `json:"position"`
	Change     ToolChange      `json:"change"`
	GoldenTool string          `json:"golden_tool,omitempty"`
	ActualTool string          `json:"actual_tool,omitempty"`
	ParamDiffs []ParameterDiff `json:"param_diffs,omitempty"`
}

// ParamChange names how one parameter key diverged.
type ParamChange string

const (
	ParamMissing      ParamChange = "missing"
	ParamAdded        ParamChange = "added"
	ParamTypeChanged  ParamChange = "type_changed"
	ParamValueChanged ParamChange = "value_changed"
)

// ParameterDiff records one diverging parameter key on a matched tool pair.
// Similarity is set only for value changes where both sides are strings.
type ParameterDiff struct {
	Key         string      `json:"key"`
	Change      ParamChange `json:"change"`
	GoldenValue trace.Value `json:"golden_value,omitempty"`
	ActualValue trace.Value `json:"actual_value,omitempty"`
	GoldenType  string      `json:"golden_type,omitempty"`
	ActualType  string      `json:"actual_type,omitempty"`
	Similarity  *float64    `json:"similarity,omitempty"`
}

// OutputDiff is present on a TraceDiff only when the final outputs are not
// byte-identical.
type OutputDiff struct {
	Similarity   float64 `json:"similarity"`
	GoldenOutput string  `json:"golden_output,omitempty"`
	ActualOutput string  `json:"actual_output,omitempty"`
}

// TraceDiff is the result of comparing one actual trace to one golden.
// Status is always derived from the tool diffs, output similarity, and
// score delta; it is never set independently of them.
type TraceDiff struct {
	TestName       string      `json:"test_name"`
	HasDifferences bool        `json:"has_differences"`
	ToolDiffs      []ToolDiff  `json:"tool_diffs,omitempty"`
	Output         *OutputDiff `json:"output,omitempty"`
	ScoreDiff      float64     `json:"score_diff"`
	LatencyDiff    int         `json:"latency_diff_ms"`
	Status         Status      `json:"status"`
	MatchedVariant string      `json:"matched_variant,omitempty"`
}

// OutputSimilarity returns the output similarity of the comparison, 1.0
// when the outputs were identical.
func (d TraceDiff) OutputSimilarity() float64 {
	if d.Output == nil {
		return 1.0
	}
	return d.Output.Similarity
}
