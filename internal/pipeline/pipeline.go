// Package pipeline runs one end-to-end optimization: name extraction, job
// parsing, the rewrite loop and run persistence. The CLI and the HTTP server
// share it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/db"
	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/optimize"
	"github.com/jonathan/resume-optimizer/internal/parsing"
	"github.com/jonathan/resume-optimizer/internal/storage"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Progress steps.
const (
	StepName      = "name"
	StepJob       = "job"
	StepIteration = "iteration"
	StepDebug     = "debug"
	StepComplete  = "complete"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step      string `json:"step"`
	Message   string `json:"message"`
	RunID     string `json:"run_id,omitempty"`
	Iteration int    `json:"iteration,omitempty"`
	Passed    bool   `json:"passed,omitempty"`
	Scores    string `json:"scores,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunStore persists runs and their iterations. db.DB implements it.
type RunStore interface {
	CreateRun(ctx context.Context, in db.RunInput) (uuid.UUID, error)
	SaveIteration(ctx context.Context, runID uuid.UUID, index int, passed bool, verdict any, content string, pageCount int) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, iterations int, passed bool, errMsg string) error
}

// Options holds the inputs and collaborators of one run.
type Options struct {
	ResumeText string
	JobText    string
	JobURL     string
	// Job skips parsing when set.
	Job *types.JobPosting

	MaxIterations      int
	Mode               evaluation.Mode
	NoShame            bool
	NameExtractorChars int

	// Client serves name extraction and job parsing.
	Client     llm.Client
	Components *Components

	Metrics *metrics.Manager
	Store   RunStore
	// Debug, when set, receives every iteration's content and PDF under its
	// debug directory.
	Debug    *storage.FileStore
	Observer optimize.Observer
	Logger   *zap.Logger
}

// Outcome is the result of a pipeline run.
type Outcome struct {
	RunID    uuid.UUID
	Source   *types.SourceDocument
	Job      *types.JobPosting
	Result   *optimize.Result
	DebugDir string
}

// Passed reports whether the final verdict passed.
func (o *Outcome) Passed() bool {
	return o != nil && o.Result.Passed()
}

// PDF returns the final candidate's PDF, or nil when the last render failed.
func (o *Outcome) PDF() []byte {
	if o == nil || o.Result == nil || o.Result.Candidate == nil {
		return nil
	}
	return o.Result.Candidate.PDF
}

// Record describes the final document written to path.
func (o *Outcome) Record(path string) types.GeneratedRecord {
	return types.GeneratedRecord{
		Path:           path,
		SourceChecksum: o.Source.Checksum,
		Company:        o.Job.Company,
		JobTitle:       o.Job.Title,
		FirstName:      o.Source.FirstName,
		LastName:       o.Source.LastName,
	}
}

// ErrNoPDF is returned by callers that need a document when the final render failed.
var ErrNoPDF = errors.New("no PDF generated (render failed)")

func emit(progress ProgressCallback, event ProgressEvent) {
	if progress != nil {
		progress(event)
	}
}

// Run executes the pipeline. A failing final verdict is not an error: check
// Outcome.Passed.
func Run(ctx context.Context, opts Options, progress ProgressCallback) (*Outcome, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(opts.ResumeText) == "" {
		return nil, &Error{Message: "resume text is empty"}
	}
	if opts.Components == nil {
		return nil, &Error{Message: "components are required"}
	}
	if opts.Client == nil {
		return nil, &Error{Message: "an LLM client is required"}
	}

	start := time.Now()
	first, last, err := parsing.ExtractName(ctx, opts.Client, opts.ResumeText, opts.NameExtractorChars, log)
	if err != nil {
		log.Warn("name extraction failed, continuing without a name", zap.Error(err))
	}
	emit(progress, ProgressEvent{
		Step:    StepName,
		Message: fmt.Sprintf("Resume: %s", displayName(first, last)),
		Content: map[string]string{"first_name": first, "last_name": last},
	})

	job := opts.Job
	if job == nil {
		job, err = parsing.ParseJobPosting(ctx, opts.Client, opts.JobText, log)
		if err != nil {
			return nil, fmt.Errorf("job parsing failed: %w", err)
		}
	}
	emit(progress, ProgressEvent{Step: StepJob, Message: fmt.Sprintf("Job: %s at %s", job.Title, job.Company), Content: job})
	log.Debug("inputs prepared", zap.Duration("elapsed", time.Since(start)))

	source := types.NewSourceDocument(opts.ResumeText, first, last)
	out := &Outcome{Source: source, Job: job}

	store := opts.Store
	if store != nil {
		out.RunID, err = store.CreateRun(ctx, db.RunInput{
			Company:        job.Company,
			RoleTitle:      job.Title,
			JobURL:         opts.JobURL,
			SourceChecksum: source.Checksum,
			Mode:           string(opts.Mode),
			NoShame:        opts.NoShame,
			MaxIterations:  opts.MaxIterations,
		})
		if err != nil {
			log.Warn("failed to record run, continuing without persistence", zap.Error(err))
			store = nil
		} else {
			log = log.With(zap.String("run_id", out.RunID.String()))
		}
	}
	runID := ""
	if store != nil {
		runID = out.RunID.String()
	}

	observers := []optimize.Observer{progressObserver(progress, runID)}
	if opts.Metrics != nil {
		observers = append(observers, opts.Metrics.Observer())
	}
	if store != nil {
		observers = append(observers, storeObserver(store, out.RunID, log))
	}
	if opts.Debug != nil {
		out.DebugDir, err = opts.Debug.DebugDir(job.Company, job.Title)
		if err != nil {
			log.Warn("debug output disabled", zap.Error(err))
		} else {
			observers = append(observers, debugObserver(opts.Debug, out.DebugDir, progress))
		}
	}
	if opts.Observer != nil {
		observers = append(observers, opts.Observer)
	}

	loop, err := opts.Components.Loop(optimize.Options{
		MaxIterations: opts.MaxIterations,
		Mode:          opts.Mode,
		Observer:      chain(observers...),
		Logger:        log,
	}, opts.Metrics)
	if err != nil {
		return nil, err
	}

	result, err := loop.Run(ctx, source, job)
	if err != nil {
		if store != nil {
			if cerr := store.CompleteRun(context.WithoutCancel(ctx), out.RunID, db.RunStatusFailed, 0, false, err.Error()); cerr != nil {
				log.Warn("failed to record run failure", zap.Error(cerr))
			}
		}
		return nil, err
	}
	out.Result = result

	if opts.Metrics != nil {
		opts.Metrics.ObserveOutcome(result.State)
	}
	if store != nil {
		status := db.RunStatusExhausted
		if result.Passed() {
			status = db.RunStatusPassed
		}
		if err := store.CompleteRun(ctx, out.RunID, status, result.Iterations, result.Passed(), ""); err != nil {
			log.Warn("failed to complete run record", zap.Error(err))
		}
	}

	emit(progress, ProgressEvent{
		Step:      StepComplete,
		Message:   fmt.Sprintf("Finished after %d iterations", result.Iterations),
		RunID:     runID,
		Iteration: result.Iterations,
		Passed:    result.Passed(),
		Scores:    result.Verdict.Scores(),
	})
	log.Info("optimization finished",
		zap.String("state", string(result.State)),
		zap.Int("iterations", result.Iterations),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func displayName(first, last string) string {
	if first == "" {
		first = "Unknown"
	}
	return strings.TrimSpace(first + " " + last)
}

// chain calls observers in order, stopping at the first error.
func chain(observers ...optimize.Observer) optimize.Observer {
	return func(ctx context.Context, i int, c *types.Candidate, v evaluation.Verdict) error {
		for _, o := range observers {
			if err := o(ctx, i, c, v); err != nil {
				return err
			}
		}
		return nil
	}
}

func progressObserver(progress ProgressCallback, runID string) optimize.Observer {
	return func(_ context.Context, i int, _ *types.Candidate, v evaluation.Verdict) error {
		status := "PASS"
		if !v.Passed() {
			status = "FAIL"
		}
		emit(progress, ProgressEvent{
			Step:      StepIteration,
			Message:   fmt.Sprintf("Iteration %d: %s [%s]", i+1, status, v.Scores()),
			RunID:     runID,
			Iteration: i,
			Passed:    v.Passed(),
			Scores:    v.Scores(),
			Content:   v,
		})
		return nil
	}
}

// storeObserver persists each verdict. Storage failures are logged, never fatal.
func storeObserver(store RunStore, runID uuid.UUID, log *zap.Logger) optimize.Observer {
	return func(ctx context.Context, i int, c *types.Candidate, v evaluation.Verdict) error {
		if err := store.SaveIteration(ctx, runID, i, v.Passed(), v, c.Raw(), c.PageCount); err != nil {
			log.Warn("failed to save iteration", zap.Int("iteration", i), zap.Error(err))
		}
		return nil
	}
}
