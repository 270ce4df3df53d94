package evaluators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/rendering"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// ATS score weights.
const (
	weightKeyword    = 0.25
	weightExperience = 0.175
	weightEducation  = 0.075
	weightOverallFit = 0.5
)

// Review is the combined visual and ATS review returned by the model.
type Review struct {
	LooksProfessional bool     `json:"looks_professional"`
	VisualIssues      []string `json:"visual_issues"`
	VisualFeedback    string   `json:"visual_feedback"`
	KeywordScore      float64  `json:"keyword_score" validate:"gte=0,lte=1"`
	ExperienceScore   float64  `json:"experience_score" validate:"gte=0,lte=1"`
	EducationScore    float64  `json:"education_score" validate:"gte=0,lte=1"`
	OverallFitScore   float64  `json:"overall_fit_score" validate:"gte=0,lte=1"`
	Disqualified      bool     `json:"disqualified"`
	ATSIssues         []string `json:"ats_issues"`
	Reasoning         string   `json:"reasoning"`
}

// ATSScore is the weighted sum of the category scores.
func (r Review) ATSScore() float64 {
	return r.KeywordScore*weightKeyword +
		r.ExperienceScore*weightExperience +
		r.EducationScore*weightEducation +
		r.OverallFitScore*weightOverallFit
}

// LLMChecker runs a combined visual and ATS review of the first rendered page.
type LLMChecker struct {
	meta
	client    llm.Client
	pageImage PageImager
	now       func() time.Time
	log       *zap.Logger
}

// NewLLMChecker creates the combined review check.
func NewLLMChecker(client llm.Client, opts Options) *LLMChecker {
	opts = opts.withDefaults()
	return &LLMChecker{
		meta:      meta{name: NameLLMChecker, priority: 30, threshold: opts.ATSThreshold},
		client:    client,
		pageImage: opts.PageImage,
		now:       opts.Now,
		log:       opts.Logger.Named("llm-checker"),
	}
}

// Evaluate implements evaluation.Evaluator.
func (c *LLMChecker) Evaluate(ctx context.Context, candidate *types.Candidate, job *types.JobPosting, _ *types.SourceDocument) (evaluation.Result, error) {
	req := llm.Request{
		Tier:   llm.TierStandard,
		System: prompts.MustRender(prompts.ReviewSystem, prompts.Vars{"Today": prompts.Today(c.now())}),
		Prompt: prompts.MustRender(prompts.ReviewUser, prompts.Vars{
			"Title":        job.Title,
			"Company":      job.Company,
			"Description":  job.Summary(),
			"Requirements": strings.Join(job.Requirements, ", "),
			"Keywords":     strings.Join(job.Keywords, ", "),
			"Resume":       candidate.EvaluationText(),
		}),
		JSON: true,
	}

	if len(candidate.PDF) > 0 {
		img, _, err := c.pageImage(ctx, candidate.PDF)
		var missing *rendering.ToolMissingError
		switch {
		case errors.As(err, &missing):
			c.log.Warn("no rasterizer installed, reviewing text only", zap.Strings("tools", missing.Tools))
		case err != nil:
			res := c.result(false, 0)
			res.Issues = []string{"PDF to image conversion failed: " + err.Error()}
			res.Suggestions = []string{"Check that the document renders to a valid PDF"}
			return res, nil
		default:
			req.Image = img
			req.ImageMIME = "image/png"
		}
	}

	raw, err := c.client.Generate(ctx, req)
	if err != nil {
		return evaluation.Result{}, fmt.Errorf("review request failed: %w", err)
	}
	review, err := llm.Decode[Review](raw, schemas.ResumeReview)
	if err != nil {
		return evaluation.Result{}, err
	}

	score := review.ATSScore()
	res := c.result(!review.Disqualified && review.LooksProfessional && score >= c.threshold, score)
	for _, issue := range review.VisualIssues {
		res.Issues = append(res.Issues, "Visual: "+issue)
	}
	for _, issue := range review.ATSIssues {
		res.Issues = append(res.Issues, "ATS: "+issue)
	}
	if review.Disqualified {
		res.Issues = append(res.Issues, "Candidate would be disqualified by ATS screening")
	}
	if !review.LooksProfessional && review.VisualFeedback != "" {
		res.Suggestions = append(res.Suggestions, review.VisualFeedback)
	}
	if !res.Passed && review.Reasoning != "" {
		res.Suggestions = append(res.Suggestions, review.Reasoning)
	}
	return res, nil
}
