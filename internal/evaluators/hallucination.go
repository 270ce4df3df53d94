package evaluators

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Faithfulness is the model's comparison of the candidate against the source.
type Faithfulness struct {
	NoHallucinationScore float64  `json:"no_hallucination_score" validate:"gte=0,lte=1"`
	Concerns             []string `json:"concerns"`
	Reasoning            string   `json:"reasoning"`
}

// HallucinationChecker compares the candidate with the original resume and
// fails on fabricated content. It is a final check.
type HallucinationChecker struct {
	meta
	client llm.Client
	prompt prompts.Key
	now    func() time.Time
}

// NewHallucinationChecker creates the fabrication check. NoShame selects the
// lenient prompt and threshold.
func NewHallucinationChecker(client llm.Client, opts Options) *HallucinationChecker {
	opts = opts.withDefaults()
	threshold, prompt := opts.HallucinationStrict, prompts.HallucinationStrict
	if opts.NoShame {
		threshold, prompt = opts.HallucinationLenient, prompts.HallucinationLenient
	}
	return &HallucinationChecker{
		meta:   meta{name: NameHallucination, priority: evaluation.FinalCheckPriority, threshold: threshold},
		client: client,
		prompt: prompt,
		now:    opts.Now,
	}
}

// Evaluate implements evaluation.Evaluator.
func (h *HallucinationChecker) Evaluate(ctx context.Context, candidate *types.Candidate, _ *types.JobPosting, source *types.SourceDocument) (evaluation.Result, error) {
	optimized := candidate.Raw()
	if optimized == "" {
		optimized = "(no content)"
	}
	raw, err := h.client.Generate(ctx, llm.Request{
		Tier:   llm.TierAdvanced,
		System: prompts.MustRender(h.prompt, prompts.Vars{"Today": prompts.Today(h.now())}),
		Prompt: prompts.MustRender(prompts.HallucinationUser, prompts.Vars{
			"Original":  source.Content,
			"Optimized": optimized,
		}),
		JSON: true,
	})
	if err != nil {
		return evaluation.Result{}, fmt.Errorf("faithfulness request failed: %w", err)
	}
	f, err := llm.Decode[Faithfulness](raw, schemas.Hallucination)
	if err != nil {
		return evaluation.Result{}, err
	}

	res := h.result(f.NoHallucinationScore >= h.threshold, f.NoHallucinationScore)
	if len(f.Concerns) > 0 {
		res.Issues = []string{"Concerns: " + strings.Join(f.Concerns, ", ")}
	}
	if !res.Passed {
		res.Suggestions = []string{fmt.Sprintf("Score %.2f below %s threshold. %s",
			f.NoHallucinationScore, strconv.FormatFloat(h.threshold, 'f', -1, 64), f.Reasoning)}
	}
	return res, nil
}
