package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/ingestion"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
)

// MaxRequestIterations caps max_iterations on a request.
const MaxRequestIterations = 20

const maxBodyBytes = 1 << 20

// OptimizeRequest is the body of POST /optimize/stream.
type OptimizeRequest struct {
	ResumeText    string `json:"resume_text" validate:"required"`
	JobText       string `json:"job_text,omitempty" validate:"required_without=JobURL"`
	JobURL        string `json:"job_url,omitempty" validate:"omitempty,http_url"`
	MaxIterations int    `json:"max_iterations,omitempty" validate:"gte=0,lte=20"`
	Sequential    bool   `json:"sequential,omitempty"`
	NoShame       bool   `json:"no_shame,omitempty"`
}

// IterationPayload is the data of one iteration event.
type IterationPayload struct {
	Iteration int                 `json:"iteration"`
	Passed    bool                `json:"passed"`
	Scores    string              `json:"scores"`
	Results   []evaluation.Result `json:"results,omitempty"`
}

var requestValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// validateRequest returns the first failing field as an *ErrValidation.
func validateRequest(req *OptimizeRequest) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	msg := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "required_without":
		return &ErrValidation{Field: "job_text", Message: "job_text or job_url is required"}
	case "http_url":
		msg = "must be an http(s) URL"
	case "gte", "lte":
		msg = "must be between 0 and " + strconv.Itoa(MaxRequestIterations)
	}
	return &ErrValidation{Field: fe.Field(), Message: msg}
}

// handleOptimizeStream runs the optimization loop and streams progress as SSE.
// Request and job errors are plain JSON responses; once the stream starts,
// failures arrive as an error event.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validateRequest(&req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	ctx := r.Context()
	var job *ingestion.JobInput
	var err error
	switch {
	case strings.TrimSpace(req.JobText) != "":
		job, err = ingestion.ManualJobInput(req.JobText, req.JobURL)
	case s.fetcher == nil:
		err = &ErrValidation{Field: "job_url", Message: "URL fetching is disabled; send job_text"}
	default:
		job, err = ingestion.ResolveJobText(ctx, req.JobURL, s.fetcher)
	}
	if err != nil {
		s.log.Warn("job input rejected", zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	components, err := s.components(req.NoShame)
	if err != nil {
		s.log.Error("failed to build components", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to initialize optimizer")
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	maxIterations := req.MaxIterations
	if maxIterations == 0 {
		maxIterations = s.app.MaxIterations
	}
	mode := evaluation.ModeParallel
	if req.Sequential {
		mode = evaluation.ModeSequential
	}

	progress := func(ev pipeline.ProgressEvent) {
		var werr error
		switch ev.Step {
		case pipeline.StepJob:
			werr = sse.WriteEvent(EventJob, ev.Content)
		case pipeline.StepIteration:
			payload := IterationPayload{Iteration: ev.Iteration, Passed: ev.Passed, Scores: ev.Scores}
			if v, ok := ev.Content.(evaluation.Verdict); ok {
				payload.Results = v.Results
			}
			werr = sse.WriteEvent(EventIteration, payload)
		}
		if werr != nil {
			s.log.Debug("failed to write event", zap.String("step", ev.Step), zap.Error(werr))
		}
	}

	out, err := pipeline.Run(ctx, pipeline.Options{
		ResumeText:         req.ResumeText,
		JobText:            job.Text,
		JobURL:             job.URL(),
		MaxIterations:      maxIterations,
		Mode:               mode,
		NoShame:            req.NoShame,
		NameExtractorChars: s.app.NameExtractorChars,
		Client:             s.client,
		Components:         components,
		Metrics:            s.metrics,
		Store:              s.store,
		Logger:             s.log,
	}, progress)
	if err != nil {
		s.log.Error("optimization failed", zap.Error(err))
		_ = sse.WriteError(err.Error())
		return
	}

	payload := CompletePayload{
		Passed:     out.Passed(),
		Iterations: out.Result.Iterations,
		Scores:     out.Result.Verdict.Scores(),
	}
	if s.store != nil {
		payload.RunID = out.RunID.String()
	}
	if pdf := out.PDF(); len(pdf) > 0 {
		payload.PDFBase64 = base64.StdEncoding.EncodeToString(pdf)
	}
	if err := sse.WriteComplete(payload); err != nil {
		s.log.Debug("failed to write complete event", zap.Error(err))
	}
}

// handleRecords lists generated resumes. Optional query: limit (default 100).
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		s.errorResponse(w, http.StatusNotFound, "no record store configured")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.records.ListRecords(r.Context(), limit)
	if err != nil {
		s.log.Error("failed to list records", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}
