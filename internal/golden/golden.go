package golden

import (
	"time"

	"github.com/evalview/evalview/internal/trace"
	"github.com/evalview/evalview/internal/util"
)

// FormatVersion is bumped when the golden file shape changes.
const FormatVersion = 1

// Metadata describes how and when a golden trace was blessed.
type Metadata struct {
	TestName         string    `json:"test_name"`
	BlessedAt        time.Time `json:"blessed_at"`
	BlessedBy        string    `json:"blessed_by,omitempty"`
	Score            float64   `json:"score"`
	Notes            string    `json:"notes,omitempty"`
	ModelFingerprint string    `json:"model_fingerprint,omitempty"`
	FormatVersion    int       `json:"format_version"`
}

// GoldenTrace is a blessed baseline execution. ToolSequence and OutputHash
// are derived from the trace at bless time and cached in the file so that
// comparisons and equality pre-checks do not re-walk the steps.
type GoldenTrace struct {
	Metadata     Metadata             `json:"metadata"`
	Trace        trace.ExecutionTrace `json:"trace"`
	ToolSequence []string             `json:"tool_sequence"`
	OutputHash   string               `json:"output_hash"`
}

// FromRun builds a golden trace from a scored run.
func FromRun(run trace.RunRecord, blessedBy, notes string) GoldenTrace {
	return GoldenTrace{
		Metadata: Metadata{
			TestName:         run.TestName,
			BlessedAt:        time.Now().UTC(),
			BlessedBy:        blessedBy,
			Score:            run.Score,
			Notes:            notes,
			ModelFingerprint: run.Trace.Fingerprint(),
			FormatVersion:    FormatVersion,
		},
		Trace:        run.Trace,
		ToolSequence: run.Trace.ToolSequence(),
		OutputHash:   util.HashString(run.Trace.FinalOutput),
	}
}
