package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/evalview/evalview/internal/config"
	"github.com/evalview/evalview/internal/trace"
	"github.com/evalview/evalview/internal/util"
)

// HTTPAdapter POSTs queries to an agent endpoint that replies with a JSON
// execution trace. The expected response body is
// {"trace": {...}, "score": 93.5}; score is optional.
type HTTPAdapter struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPAdapter(cfg *config.ProjectConfig) (*HTTPAdapter, error) {
	endpoint := strings.TrimSpace(cfg.Agent.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("agent endpoint is required (set agent.endpoint)")
	}

	apiKey := ""
	if cfg.Agent.APIKeyEnv != "" {
		apiKey = strings.TrimSpace(os.Getenv(cfg.Agent.APIKeyEnv))
	}

	return &HTTPAdapter{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: time.Duration(cfg.Agent.TimeoutMS) * time.Millisecond},
	}, nil
}

func (a *HTTPAdapter) Name() string {
	return "http"
}

type httpResponse struct {
	Trace trace.ExecutionTrace `json:"trace"`
	Score float64              `json:"score"`
}

func (a *HTTPAdapter) Execute(ctx context.Context, req Request) (*trace.ExecutionTrace, float64, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("agent request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read agent response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("agent returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed httpResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, 0, fmt.Errorf("parse agent response: %w", err)
	}

	t := parsed.Trace
	if t.SessionID == "" {
		t.SessionID = util.NewID()
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = start.UTC()
	}
	if t.EndedAt.IsZero() {
		t.EndedAt = time.Now().UTC()
	}
	if t.Metrics.TotalLatencyMS == 0 {
		t.Metrics.TotalLatencyMS = int(time.Since(start).Milliseconds())
	}
	return &t, parsed.Score, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
