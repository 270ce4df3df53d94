package rewriting

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/rendering"
	"github.com/jonathan/resume-optimizer/internal/types"
	"github.com/jonathan/resume-optimizer/internal/validation"
)

const (
	previewChars    = 1500
	missingKeywords = 20
)

// contentArgs is the single argument every tool takes.
type contentArgs struct {
	HTML string `json:"html"`
	Data string `json:"data"`
}

func (o *Optimizer) tools(job *types.JobPosting) []llm.Tool {
	param := llm.ToolParam{Name: "html", Type: llm.ParamString, Description: "The resume body HTML to check", Required: true}
	if o.opts.Format == types.ContentStructured {
		param = llm.ToolParam{Name: "data", Type: llm.ParamString, Description: "The resume data object as a JSON string", Required: true}
	}
	params := []llm.ToolParam{param}

	var tools []llm.Tool
	if o.previewer != nil {
		tools = append(tools,
			llm.Tool{
				Name:        "check_content_length",
				Description: "Render the resume and report the real page count plus rough character and word estimates. Call before returning.",
				Params:      params,
				Handler:     o.checkContentLength,
			},
			llm.Tool{
				Name:        "preview_resume",
				Description: "Render the resume and return the page count and the beginning of the extracted text.",
				Params:      params,
				Handler:     o.previewResume,
			},
		)
	}
	tools = append(tools,
		llm.Tool{
			Name:        "check_keywords",
			Description: "Report keyword coverage against the job posting and the missing keywords ranked by importance.",
			Params:      params,
			Handler: func(_ context.Context, args map[string]any) (map[string]any, error) {
				return o.checkKeywords(args, job)
			},
		},
		llm.Tool{
			Name:        "validate_structure",
			Description: "Check that the resume has a name header and section headers, contains no scripts, and avoids forbidden phrasing.",
			Params:      params,
			Handler:     o.validateStructure,
		},
	)
	return tools
}

// contentFromArgs decodes the tool argument into the configured content variant.
func (o *Optimizer) contentFromArgs(args map[string]any) (types.Content, error) {
	var in contentArgs
	if err := llm.DecodeArgs(args, &in); err != nil {
		return nil, err
	}
	if o.opts.Format == types.ContentStructured {
		if strings.TrimSpace(in.Data) == "" {
			return nil, fmt.Errorf("data is required")
		}
		data, err := llm.Decode[types.ResumeData](in.Data, "")
		if err != nil {
			return nil, err
		}
		return types.Structured{Data: data}, nil
	}
	if strings.TrimSpace(in.HTML) == "" {
		return nil, fmt.Errorf("html is required")
	}
	return types.Markup{HTML: in.HTML}, nil
}

func (o *Optimizer) checkContentLength(ctx context.Context, args map[string]any) (map[string]any, error) {
	content, err := o.contentFromArgs(args)
	if err != nil {
		return nil, err
	}
	est := o.estimate(content, "")

	res, err := o.previewer.Render(ctx, content)
	if err != nil {
		return map[string]any{
			"fits":      false,
			"error":     fmt.Sprintf("Render failed: %v", err),
			"estimates": estimateMap(est, "Estimates only. Fix the render error first."),
		}, nil
	}
	if content.Kind() == types.ContentStructured {
		est = o.estimate(content, res.Text)
	}

	fits := o.opts.MaxPages <= 0 || res.PageCount <= o.opts.MaxPages
	out := map[string]any{
		"fits":       fits,
		"page_count": res.PageCount,
		"max_pages":  o.opts.MaxPages,
		"estimates":  estimateMap(est, "Character and word counts are rough estimates. page_count is authoritative."),
	}
	if !fits {
		out["suggestion"] = fmt.Sprintf("Content spans %d pages. Remove about %d words (estimate).", res.PageCount, overflowWords(est, res.PageCount, o.opts.MaxPages))
	}
	o.log.Debug("check_content_length",
		zap.Int("pages", res.PageCount), zap.Int("chars", est.Chars), zap.Int("words", est.Words), zap.Bool("fits", fits))
	return out, nil
}

func (o *Optimizer) previewResume(ctx context.Context, args map[string]any) (map[string]any, error) {
	content, err := o.contentFromArgs(args)
	if err != nil {
		return nil, err
	}
	res, err := o.previewer.Render(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	return map[string]any{
		"page_count":   res.PageCount,
		"text_preview": truncateRunes(res.Text, previewChars),
		"warnings":     res.Warnings,
	}, nil
}

func (o *Optimizer) checkKeywords(args map[string]any, job *types.JobPosting) (map[string]any, error) {
	content, err := o.contentFromArgs(args)
	if err != nil {
		return nil, err
	}
	res := keywords.Check(contentText(content), job)
	o.log.Debug("check_keywords", zap.Float64("score", res.Score), zap.Int("missing", len(res.Missing)))
	return map[string]any{
		"passed":           res.Score >= o.opts.KeywordThreshold,
		"score":            math.Round(res.Score*100) / 100,
		"missing_keywords": res.MissingTerms(missingKeywords),
	}, nil
}

func (o *Optimizer) validateStructure(_ context.Context, args map[string]any) (map[string]any, error) {
	content, err := o.contentFromArgs(args)
	if err != nil {
		return nil, err
	}
	violations, err := validation.ValidateCandidate(&types.Candidate{Content: content}, validation.Options{})
	if err != nil {
		return nil, err
	}
	issues := violations.Messages()
	if issues == nil {
		issues = []string{}
	}
	return map[string]any{
		"valid":       violations.Empty(),
		"issues":      issues,
		"style_hints": CheckBulletStyle(bullets(content)),
	}, nil
}

func (o *Optimizer) estimate(content types.Content, renderedText string) rendering.ContentEstimate {
	switch c := content.(type) {
	case types.Markup:
		return rendering.EstimateContentLength(c.HTML, o.opts.MaxChars, o.opts.MaxWords)
	default:
		return rendering.EstimateText(renderedText, o.opts.MaxChars, o.opts.MaxWords)
	}
}

func estimateMap(est rendering.ContentEstimate, note string) map[string]any {
	return map[string]any{
		"chars": est.Chars,
		"words": est.Words,
		"limits": map[string]any{
			"chars": est.MaxChars,
			"words": est.MaxWords,
		},
		"note": note,
	}
}

// overflowWords estimates how much to cut. The word budget is used when it is
// exceeded, otherwise the surplus pages' share of the words.
func overflowWords(est rendering.ContentEstimate, pages, maxPages int) int {
	if est.OverflowWords > 0 {
		return est.OverflowWords
	}
	if pages <= 0 || maxPages <= 0 || pages <= maxPages {
		return 0
	}
	return est.Words * (pages - maxPages) / pages
}

// contentText returns the visible text used for keyword checks.
func contentText(content types.Content) string {
	switch c := content.(type) {
	case types.Markup:
		return rendering.HTMLText(c.HTML)
	default:
		return content.Raw()
	}
}

func bullets(content types.Content) []string {
	switch c := content.(type) {
	case types.Markup:
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(c.HTML))
		if err != nil {
			return nil
		}
		var out []string
		doc.Find("li").Each(func(_ int, s *goquery.Selection) {
			out = append(out, strings.TrimSpace(s.Text()))
		})
		return out
	case types.Structured:
		var out []string
		for _, exp := range c.Data.Experience {
			out = append(out, exp.Bullets...)
		}
		return out
	}
	return nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
