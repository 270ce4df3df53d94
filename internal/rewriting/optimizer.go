package rewriting

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/optimize"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/rendering"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Previewer renders content for the agent's page-count and preview tools.
// rendering.Service implements it.
type Previewer interface {
	Render(ctx context.Context, content types.Content) (*rendering.Result, error)
}

// Options configures the Optimizer.
type Options struct {
	// NoShame selects the lenient rule set.
	NoShame bool
	// Format selects HTML markup or structured data output.
	Format           types.ContentKind
	MaxPages         int
	MaxChars         int
	MaxWords         int
	MaxToolCalls     int
	KeywordThreshold float64
	Now              func() time.Time
	Logger           *zap.Logger
}

// DefaultOptions returns the strict markup profile with a one-page budget.
func DefaultOptions() Options {
	return Options{
		Format:           types.ContentMarkup,
		MaxPages:         1,
		MaxChars:         4500,
		MaxWords:         550,
		MaxToolCalls:     llm.DefaultMaxToolCalls,
		KeywordThreshold: 0.25,
	}
}

// Optimizer rewrites the source resume for a job. It implements optimize.Rewriter.
type Optimizer struct {
	client    llm.Client
	previewer Previewer
	opts      Options
	log       *zap.Logger
}

var _ optimize.Rewriter = (*Optimizer)(nil)

// NewOptimizer creates an Optimizer. previewer may be nil, in which case the
// rendering tools are not offered to the model.
func NewOptimizer(client llm.Client, previewer Previewer, opts Options) *Optimizer {
	if opts.Format == "" {
		opts.Format = types.ContentMarkup
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Optimizer{client: client, previewer: previewer, opts: opts, log: log}
}

type markupOutput struct {
	HTML    string   `json:"html" validate:"required"`
	Changes []string `json:"changes"`
}

type structuredOutput struct {
	Data    types.ResumeData `json:"data"`
	Changes []string         `json:"changes"`
}

// Rewrite produces the next candidate. Model output that does not match the
// output schema is returned as *llm.ParseError.
func (o *Optimizer) Rewrite(ctx context.Context, source *types.SourceDocument, job *types.JobPosting, ictx optimize.IterationContext) (*types.Candidate, error) {
	start := time.Now()
	raw, err := o.client.Generate(ctx, llm.Request{
		Tier:         llm.TierAdvanced,
		System:       o.SystemPrompt(),
		Prompt:       o.UserPrompt(job, ictx),
		JSON:         true,
		Tools:        o.tools(job),
		MaxToolCalls: o.opts.MaxToolCalls,
	})
	if err != nil {
		return nil, &APICallError{Message: "failed to generate optimized resume", Cause: err}
	}

	candidate := &types.Candidate{Iteration: ictx.Iteration, SourceChecksum: source.Checksum}
	switch o.opts.Format {
	case types.ContentStructured:
		out, err := llm.Decode[structuredOutput](raw, schemas.OptimizedStructured)
		if err != nil {
			return nil, err
		}
		candidate.Content = types.Structured{Data: out.Data}
		candidate.Changes = out.Changes
	default:
		out, err := llm.Decode[markupOutput](raw, schemas.OptimizedMarkup)
		if err != nil {
			return nil, err
		}
		candidate.Content = types.Markup{HTML: stripDocumentWrapper(out.HTML)}
		candidate.Changes = out.Changes
	}

	o.log.Debug("resume rewritten",
		zap.Int("iteration", ictx.Iteration),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("changes", len(candidate.Changes)))
	return candidate, nil
}

// SystemPrompt assembles the base rules, the leniency profile, the output guide and today's date.
func (o *Optimizer) SystemPrompt() string {
	outputKey, guideKey := prompts.OutputMarkup, prompts.GuideMarkup
	if o.opts.Format == types.ContentStructured {
		outputKey, guideKey = prompts.OutputStructured, prompts.GuideStructured
	}
	rulesKey := prompts.RulesStrict
	if o.opts.NoShame {
		rulesKey = prompts.RulesLenient
	}
	return prompts.MustRender(prompts.SystemBase, prompts.Vars{
		"OutputRules":  prompts.MustGet(outputKey),
		"ContentRules": prompts.MustGet(rulesKey),
		"Guide":        prompts.MustGet(guideKey),
		"MaxPages":     strconv.Itoa(o.opts.MaxPages),
		"MaxWords":     strconv.Itoa(o.opts.MaxWords),
		"MaxChars":     strconv.Itoa(o.opts.MaxChars),
		"Today":        prompts.Today(o.opts.Now()),
	})
}

// UserPrompt renders the original resume and job, plus the last attempt and the
// check results on refinement iterations.
func (o *Optimizer) UserPrompt(job *types.JobPosting, ictx optimize.IterationContext) string {
	var sb strings.Builder
	sb.WriteString(prompts.MustRender(prompts.OptimizeUser, prompts.Vars{
		"Original":     ictx.Original,
		"Title":        job.Title,
		"Company":      job.Company,
		"Requirements": strings.Join(job.Requirements, ", "),
		"Keywords":     strings.Join(job.Keywords, ", "),
		"Description":  job.Description,
	}))

	if ictx.LastAttempt != nil {
		chars, words := o.measure(*ictx.LastAttempt)
		sb.WriteString(prompts.MustRender(prompts.Refinement, prompts.Vars{
			"Iteration":   strconv.Itoa(ictx.Iteration),
			"LastAttempt": *ictx.LastAttempt,
			"Chars":       strconv.Itoa(chars),
			"Words":       strconv.Itoa(words),
		}))
	}

	if feedback := ictx.FormatFeedback(); feedback != "" {
		sb.WriteString(prompts.MustRender(prompts.Feedback, prompts.Vars{
			"Feedback": feedback,
		}))
	}

	returnKey := prompts.ReturnMarkup
	if o.opts.Format == types.ContentStructured {
		returnKey = prompts.ReturnStructured
	}
	sb.WriteString(prompts.MustGet(returnKey))
	return sb.String()
}

func (o *Optimizer) measure(raw string) (int, int) {
	if o.opts.Format == types.ContentStructured {
		return len([]rune(raw)), len(strings.Fields(raw))
	}
	est := rendering.EstimateContentLength(raw, o.opts.MaxChars, o.opts.MaxWords)
	return est.Chars, est.Words
}

// stripDocumentWrapper returns the inner <body> when the model wrapped its
// output in a full document.
func stripDocumentWrapper(html string) string {
	trimmed := strings.TrimSpace(html)
	lower := strings.ToLower(trimmed)
	if !strings.Contains(lower, "<body") && !strings.HasPrefix(lower, "<html") && !strings.HasPrefix(lower, "<!doctype") {
		return trimmed
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return trimmed
	}
	inner, err := doc.Find("body").Html()
	if err != nil {
		return trimmed
	}
	return strings.TrimSpace(inner)
}

