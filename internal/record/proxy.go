// Package record captures an agent's tool-call HTTP traffic through a
// forward proxy and assembles it into an execution trace. Point the agent's
// HTTP_PROXY at the recorder, run the test query, stop, and the captured
// calls become the trace's steps in arrival order.
package record

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/elazarl/goproxy"

	"github.com/evalview/evalview/internal/config"
	"github.com/evalview/evalview/internal/trace"
	"github.com/evalview/evalview/internal/util"
)

// Recorder is a forward HTTP proxy that records each proxied request as a
// StepTrace. HTTPS CONNECT traffic is tunneled untouched: only plain-HTTP
// tool endpoints are captured, which keeps the recorder free of MITM
// certificate machinery.
type Recorder struct {
	cfg     *config.ProjectConfig
	redact  trace.Redactor
	proxy   *goproxy.ProxyHttpServer
	server  *http.Server
	matcher *hostMatcher

	mu        sync.Mutex
	steps     []trace.StepTrace
	startedAt time.Time
}

func NewRecorder(ctx context.Context, cfg *config.ProjectConfig, redact trace.Redactor) *Recorder {
	r := &Recorder{
		cfg:     cfg,
		redact:  redact,
		matcher: newHostMatcher(cfg.Record.AllowHosts),
	}
	r.setupProxy(ctx)
	return r
}

func (r *Recorder) setupProxy(ctx context.Context) {
	log := clog.FromContext(ctx)

	proxy := goproxy.NewProxyHttpServer()
	proxy.Verbose = false

	// HTTPS is passed through as an opaque tunnel.
	proxy.OnRequest().HandleConnect(goproxy.FuncHttpsHandler(func(host string, pctx *goproxy.ProxyCtx) (*goproxy.ConnectAction, string) {
		return goproxy.OkConnect, host
	}))

	proxy.OnRequest().DoFunc(func(req *http.Request, pctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		host := req.URL.Hostname()
		if host == "" {
			host = req.Host
		}
		if !r.matcher.isAllowed(host) {
			if r.cfg.Record.Debug {
				log.Debugf("skipping %s (not in allow_hosts)", host)
			}
			return req, nil
		}

		capture := &captureContext{
			stepID:    util.NewID(),
			startTime: time.Now(),
			tool:      deriveTool(host, req.URL.Path),
		}
		if req.Body != nil {
			body, _ := io.ReadAll(req.Body)
			capture.requestBody = body
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		pctx.UserData = capture
		return req, nil
	})

	proxy.OnResponse().DoFunc(func(resp *http.Response, pctx *goproxy.ProxyCtx) *http.Response {
		capture, ok := pctx.UserData.(*captureContext)
		if !ok || capture == nil || resp == nil {
			return resp
		}

		if resp.Body != nil {
			body, _ := io.ReadAll(resp.Body)
			capture.responseBody = body
			resp.Body = io.NopCloser(bytes.NewReader(body))
		}

		step := capture.toStep(resp.StatusCode)
		r.mu.Lock()
		r.steps = append(r.steps, step)
		r.mu.Unlock()

		if r.cfg.Record.Debug {
			log.Debugf("captured step %s tool=%s status=%d latency=%dms",
				step.StepID, step.Tool, resp.StatusCode, step.Metrics.LatencyMS)
		}
		return resp
	})

	r.proxy = proxy
}

func (r *Recorder) Start() error {
	r.startedAt = time.Now().UTC()
	r.server = &http.Server{
		Addr:    r.cfg.Record.Listen,
		Handler: r.proxy,
	}
	go func() {
		_ = r.server.ListenAndServe()
	}()
	return nil
}

func (r *Recorder) Stop() error {
	if r.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}

func (r *Recorder) StepCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// Finish assembles the captured steps into a trace. The final output is
// taken from the last captured step when its response body was text; the
// proxy never sees the agent's own answer, only its tool traffic.
func (r *Recorder) Finish() trace.ExecutionTrace {
	r.mu.Lock()
	steps := r.steps
	r.steps = nil
	r.mu.Unlock()

	t := trace.ExecutionTrace{
		SessionID: util.NewID(),
		StartedAt: r.startedAt,
		EndedAt:   time.Now().UTC(),
		Steps:     steps,
	}
	for _, step := range steps {
		t.Metrics.TotalLatencyMS += step.Metrics.LatencyMS
	}
	if len(steps) > 0 {
		if s, ok := steps[len(steps)-1].Output.Str(); ok {
			t.FinalOutput = s
		}
	}
	if r.redact != nil {
		r.redact.Apply(&t)
	}
	return t
}

type captureContext struct {
	stepID       string
	startTime    time.Time
	tool         string
	requestBody  []byte
	responseBody []byte
}

func (c *captureContext) toStep(statusCode int) trace.StepTrace {
	step := trace.StepTrace{
		StepID:  c.stepID,
		Tool:    c.tool,
		Params:  parseParams(c.requestBody),
		Output:  parseBody(c.responseBody),
		Success: statusCode >= 200 && statusCode < 300,
		Metrics: trace.StepMetrics{
			LatencyMS: int(time.Since(c.startTime).Milliseconds()),
		},
	}
	if !step.Success {
		step.Error = http.StatusText(statusCode)
	}
	return step
}

// parseParams decodes a JSON request body into the step's parameter map.
// Non-object bodies land under a single "input" key.
func parseParams(body []byte) map[string]trace.Value {
	if len(body) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return map[string]trace.Value{"input": trace.String(string(body))}
	}
	if obj, ok := decoded.(map[string]any); ok {
		params := make(map[string]trace.Value, len(obj))
		for key, val := range obj {
			params[key] = trace.FromAny(val)
		}
		return params
	}
	return map[string]trace.Value{"input": trace.FromAny(decoded)}
}

func parseBody(body []byte) trace.Value {
	if len(body) == 0 {
		return trace.Null()
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return trace.String(string(body))
	}
	return trace.FromAny(decoded)
}

type hostMatcher struct {
	allowAll bool
	hosts    map[string]bool
}

func newHostMatcher(hosts []string) *hostMatcher {
	m := &hostMatcher{hosts: make(map[string]bool)}
	if len(hosts) == 0 {
		m.allowAll = true
	}
	for _, host := range hosts {
		m.hosts[strings.ToLower(host)] = true
	}
	return m
}

func (m *hostMatcher) isAllowed(host string) bool {
	return m.allowAll || m.hosts[strings.ToLower(host)]
}

// deriveTool names a step after the last path segment of the tool
// endpoint, falling back to the host's first label.
func deriveTool(host, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 0 && segments[len(segments)-1] != "" {
		return segments[len(segments)-1]
	}
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}
