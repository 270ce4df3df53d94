package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/fetch"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/llm/llmtest"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/optimize"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/server/ratelimit"
	"github.com/jonathan/resume-optimizer/internal/storage"
	"github.com/jonathan/resume-optimizer/internal/types"
)

const (
	nameJSON = `{"first_name": "Ada", "last_name": "Lovelace"}`
	jobJSON  = `{"title": "Backend Engineer", "company": "Acme", "requirements": ["Go services"], "keywords": ["golang"], "description": "Build services"}`
)

func scriptedClient() *llmtest.Fake {
	namePrompt := prompts.MustGet(prompts.ExtractName)
	return &llmtest.Fake{GenerateFunc: func(_ context.Context, req llm.Request) (string, error) {
		if req.System == namePrompt {
			return nameJSON, nil
		}
		return jobJSON, nil
	}}
}

type fakeRewriter struct{ err error }

func (f *fakeRewriter) Rewrite(context.Context, *types.SourceDocument, *types.JobPosting, optimize.IterationContext) (*types.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Candidate{Content: types.Markup{HTML: "<h1>Ada</h1>"}}, nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderAndExtract(_ context.Context, c *types.Candidate) (*types.Candidate, error) {
	return c.WithRender("Ada Lovelace", []byte("%PDF-1.4"), 1, nil), nil
}

// passAfter fails its first n evaluations.
type passAfter struct{ n, seen int }

func (p *passAfter) Name() string       { return "KeywordMatcher" }
func (p *passAfter) Priority() int      { return 10 }
func (p *passAfter) Threshold() float64 { return 0.25 }
func (p *passAfter) Evaluate(context.Context, *types.Candidate, *types.JobPosting, *types.SourceDocument) (evaluation.Result, error) {
	p.seen++
	if p.seen > p.n {
		return evaluation.Result{Passed: true, Score: 0.5, Threshold: 0.25}, nil
	}
	return evaluation.Result{Passed: false, Score: 0.1, Threshold: 0.25}, nil
}

type stubFetcher struct {
	text string
	err  error
}

func (f stubFetcher) JobText(context.Context, string) (string, error) { return f.text, f.err }

type testOptions struct {
	rewriteErr error
	failFirst  int
	fetcher    *stubFetcher
	records    RecordLister
	metrics    *metrics.Manager
	rateLimit  *ratelimit.Config
	logger     *zap.Logger
}

func newTestServer(t *testing.T, o testOptions) *Server {
	t.Helper()
	factory := func(bool) (*pipeline.Components, error) {
		return &pipeline.Components{
			Rewriter: &fakeRewriter{err: o.rewriteErr},
			Renderer: fakeRenderer{},
			Registry: evaluation.MustNewRegistry(&passAfter{n: o.failFirst}),
		}, nil
	}
	cfg := Config{
		App:        config.Default(),
		Client:     scriptedClient(),
		Components: factory,
		Records:    o.records,
		Metrics:    o.metrics,
		RateLimit:  o.rateLimit,
		Logger:     o.logger,
	}
	if o.fetcher != nil {
		cfg.Fetcher = *o.fetcher
	}
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

type sseEvent struct {
	Name string
	Data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		if block == "" {
			continue
		}
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.Name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.Data = strings.TrimPrefix(line, "data: ")
			}
		}
		events = append(events, ev)
	}
	return events
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{App: config.Default()})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodOptions, "/optimize/stream", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOptimizeStream_RequestErrors(t *testing.T) {
	blocked := &stubFetcher{err: &fetch.BlockedError{URL: "https://jobs.example.com/1", StatusCode: 403, Reason: "cloudflare"}}

	tests := []struct {
		name       string
		body       string
		fetcher    *stubFetcher
		wantStatus int
		wantError  string
	}{
		{name: "invalid json", body: `{invalid`, wantStatus: http.StatusBadRequest, wantError: "Invalid request body"},
		{name: "missing resume", body: `{"job_text": "Go role"}`, wantStatus: http.StatusBadRequest, wantError: "resume_text"},
		{name: "missing job", body: `{"resume_text": "Ada"}`, wantStatus: http.StatusBadRequest, wantError: "job_text or job_url"},
		{name: "non http url", body: `{"resume_text": "Ada", "job_url": "file:///etc/passwd"}`, wantStatus: http.StatusBadRequest, wantError: "http(s) URL"},
		{name: "too many iterations", body: `{"resume_text": "Ada", "job_text": "Go", "max_iterations": 99}`, wantStatus: http.StatusBadRequest, wantError: "max_iterations"},
		{name: "url without fetcher", body: `{"resume_text": "Ada", "job_url": "https://jobs.example.com/1"}`, wantStatus: http.StatusBadRequest, wantError: "URL fetching is disabled"},
		{name: "blocked url", body: `{"resume_text": "Ada", "job_url": "https://jobs.example.com/1"}`, fetcher: blocked, wantStatus: http.StatusUnprocessableEntity, wantError: "bot protection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testOptions{fetcher: tt.fetcher})

			w := do(t, s, http.MethodPost, "/optimize/stream", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantError)
		})
	}
}

func TestOptimizeStream_Success(t *testing.T) {
	m := metrics.NewManager()
	s := newTestServer(t, testOptions{failFirst: 1, metrics: m})

	w := do(t, s, http.MethodPost, "/optimize/stream",
		`{"resume_text": "Ada Lovelace\nEngineer", "job_text": "Backend Engineer at Acme", "max_iterations": 3}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := parseSSE(t, w.Body.String())
	require.Len(t, events, 4)
	assert.Equal(t, EventJob, events[0].Name)
	assert.Contains(t, events[0].Data, `"company":"Acme"`)

	var first, second IterationPayload
	require.Equal(t, EventIteration, events[1].Name)
	require.NoError(t, json.Unmarshal([]byte(events[1].Data), &first))
	assert.Equal(t, 0, first.Iteration)
	assert.False(t, first.Passed)
	require.NoError(t, json.Unmarshal([]byte(events[2].Data), &second))
	assert.Equal(t, 1, second.Iteration)
	assert.True(t, second.Passed)
	assert.Contains(t, second.Scores, "KeywordMatcher")

	require.Equal(t, EventComplete, events[3].Name)
	var done CompletePayload
	require.NoError(t, json.Unmarshal([]byte(events[3].Data), &done))
	assert.True(t, done.Passed)
	assert.Equal(t, 2, done.Iterations)
	assert.Empty(t, done.RunID)
	pdf, err := base64.StdEncoding.DecodeString(done.PDFBase64)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
}

func TestOptimizeStream_FetchesJobURL(t *testing.T) {
	s := newTestServer(t, testOptions{fetcher: &stubFetcher{text: "Backend Engineer at Acme"}})

	w := do(t, s, http.MethodPost, "/optimize/stream",
		`{"resume_text": "Ada Lovelace", "job_url": "https://jobs.example.com/1", "sequential": true}`)

	require.Equal(t, http.StatusOK, w.Code)
	events := parseSSE(t, w.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, EventComplete, events[len(events)-1].Name)
}

func TestOptimizeStream_LoopErrorBecomesErrorEvent(t *testing.T) {
	s := newTestServer(t, testOptions{rewriteErr: errors.New("model unavailable")})

	w := do(t, s, http.MethodPost, "/optimize/stream", `{"resume_text": "Ada", "job_text": "Go role"}`)

	require.Equal(t, http.StatusOK, w.Code)
	events := parseSSE(t, w.Body.String())
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Name)
	assert.Contains(t, last.Data, "model unavailable")
}

func TestRecordsEndpoint(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, company := range []string{"Acme", "Globex", "Initech"} {
		require.NoError(t, store.Save(types.GeneratedRecord{
			Path:      company + ".pdf",
			Company:   company,
			JobTitle:  "Engineer",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	s := newTestServer(t, testOptions{records: FileRecords{Store: store}})

	t.Run("lists newest first", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/records", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Records []types.GeneratedRecord `json:"records"`
			Count   int                     `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Count)
		assert.Equal(t, "Initech", resp.Records[0].Company)
	})

	t.Run("limit", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/records?limit=1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/records?limit=zero", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecordsEndpoint_NoStore(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodGet, "/records", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewManager()
	m.OnRetry(1, time.Second, errors.New("429"))
	s := newTestServer(t, testOptions{metrics: m})

	w := do(t, s, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "resume_optimizer_loop_retries_total 1")
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := newTestServer(t, testOptions{
		logger: zap.New(core),
		rateLimit: &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  100,
			DefaultWindow: time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{
				{Path: "/optimize/stream", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
			},
		},
	})

	first := do(t, s, http.MethodPost, "/optimize/stream", `{}`)
	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := do(t, s, http.MethodPost, "/optimize/stream", `{}`)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.Equal(t, 1, logs.FilterMessage("rate limit exceeded").Len())

	health := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{in: 0, want: 1},
		{in: 200 * time.Millisecond, want: 1},
		{in: time.Second, want: 1},
		{in: 1500 * time.Millisecond, want: 2},
		{in: time.Hour, want: 3600},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, retryAfterSeconds(tt.in), tt.in.String())
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &ErrValidation{Field: "resume_text", Message: "is required"}, want: http.StatusBadRequest},
		{name: "blocked", err: &fetch.BlockedError{URL: "u"}, want: http.StatusUnprocessableEntity},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
