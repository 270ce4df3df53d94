package evaluators

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

const aiTellSuggestion = "Fix AI tells: vary bullet lengths/structure, add specific details instead of generic claims, introduce minor style variations"

// Detection is the model's judgement on machine-written text.
type Detection struct {
	IsAIGenerated bool     `json:"is_ai_generated"`
	AIProbability float64  `json:"ai_probability" validate:"gte=0,lte=1"`
	Indicators    []string `json:"indicators"`
	Reasoning     string   `json:"reasoning"`
}

// AIGeneratedChecker flags resumes that read as machine-written.
type AIGeneratedChecker struct {
	meta
	client llm.Client
	now    func() time.Time
}

// NewAIGeneratedChecker creates the machine-text check.
func NewAIGeneratedChecker(client llm.Client, opts Options) *AIGeneratedChecker {
	opts = opts.withDefaults()
	return &AIGeneratedChecker{
		meta:   meta{name: NameAIGenerated, priority: 40, threshold: opts.AIThreshold},
		client: client,
		now:    opts.Now,
	}
}

// Evaluate implements evaluation.Evaluator. The verdict follows the model's
// is_ai_generated flag; the threshold is informational.
func (a *AIGeneratedChecker) Evaluate(ctx context.Context, candidate *types.Candidate, _ *types.JobPosting, _ *types.SourceDocument) (evaluation.Result, error) {
	raw, err := a.client.Generate(ctx, llm.Request{
		Tier:   llm.TierStandard,
		System: prompts.MustRender(prompts.AIDetectionSystem, prompts.Vars{"Today": prompts.Today(a.now())}),
		Prompt: prompts.MustRender(prompts.AIDetectionUser, prompts.Vars{"Resume": candidate.EvaluationText()}),
		JSON:   true,
	})
	if err != nil {
		return evaluation.Result{}, fmt.Errorf("detection request failed: %w", err)
	}
	d, err := llm.Decode[Detection](raw, schemas.AIDetection)
	if err != nil {
		return evaluation.Result{}, err
	}

	res := a.result(!d.IsAIGenerated, 1-d.AIProbability)
	for _, indicator := range d.Indicators {
		res.Issues = append(res.Issues, "AI giveaway: "+indicator)
	}
	if len(d.Indicators) > 0 {
		res.Suggestions = []string{aiTellSuggestion}
	}
	return res, nil
}
