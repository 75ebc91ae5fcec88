// Package agent talks to the agent under test. Adapters are I/O glue:
// they run one named query and hand back an already-parsed execution
// trace; everything interesting happens downstream of them.
package agent

import (
	"context"

	"github.com/evalview/evalview/internal/trace"
)

type Adapter interface {
	Name() string
	// Execute runs one test query against the agent and returns the
	// resulting trace plus the score the agent-side evaluator reported
	// (0 when the endpoint does not score).
	Execute(ctx context.Context, req Request) (*trace.ExecutionTrace, float64, error)
}

type Request struct {
	TestName string `json:"test_name"`
	Input    string `json:"input,omitempty"`
}
