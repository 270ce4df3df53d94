package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/jonathan/resume-optimizer/internal/logger"
)

// Client is an abstraction over LLM providers
type Client interface {
	// Generate runs a single request, executing tool calls when tools are supplied
	Generate(ctx context.Context, req Request) (string, error)
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// Embed returns one embedding vector per input text
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// GetModel returns the underlying provider model for a tier (for direct access if needed)
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// Request describes one generation call.
type Request struct {
	Tier   ModelTier
	System string
	Prompt string
	// JSON requests application/json output. Ignored when Tools are set since
	// the API rejects the combination; the reply is still cleaned of code fences.
	JSON bool
	// Image is attached after the prompt when non-empty.
	Image     []byte
	ImageMIME string
	Tools     []Tool
	// MaxToolCalls bounds how many function calls are executed before the
	// model is told to answer. Zero means DefaultMaxToolCalls.
	MaxToolCalls int
	// Pace is called before every model round-trip after the first in a
	// tool-calling conversation. WithRateLimit sets it so each turn takes a token.
	Pace func(ctx context.Context) error
}

// DefaultMaxToolCalls bounds a tool-calling conversation.
const DefaultMaxToolCalls = 12

var (
	// ErrEmptyResponse is returned when the model replies without usable text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrToolLimit is returned when the model keeps calling tools past the budget.
	ErrToolLimit = errors.New("tool call limit exceeded")
)

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string, log *zap.Logger) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey, log)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
	logger *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, log *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
		logger: logger.WithFields(log, zap.String(logger.FieldProvider, string(config.Provider))),
	}, nil
}

// Generate runs req against the model for req.Tier.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", req.Tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.JSON && len(req.Tools) == 0 {
		model.ResponseMIMEType = "application/json"
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if len(req.Image) > 0 {
		parts = append(parts, genai.Blob{MIMEType: imageMIME(req.ImageMIME), Data: req.Image})
	}

	log := c.logger.With(zap.String(logger.FieldModel, modelName))
	start := time.Now()

	var (
		text string
		err  error
	)
	if len(req.Tools) > 0 {
		text, err = c.runTools(ctx, model, parts, req, log)
	} else {
		var resp *genai.GenerateContentResponse
		resp, err = model.GenerateContent(ctx, parts...)
		if err != nil {
			err = fmt.Errorf("failed to generate content: %w", err)
		} else {
			text, err = extractTextFromResponse(resp)
		}
	}
	log.Debug("llm call finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("tools", len(req.Tools)),
		zap.Bool("ok", err == nil))
	if err != nil {
		return "", err
	}

	if req.JSON {
		return CleanJSONBlock(text), nil
	}
	return text, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.Generate(ctx, Request{Tier: tier, Prompt: prompt})
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.Generate(ctx, Request{Tier: tier, Prompt: prompt, JSON: true})
}

// Embed returns embedding vectors for texts using the embedding tier.
func (c *GeminiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	modelName := c.config.GetModel(TierEmbedding)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", TierEmbedding)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	em := c.client.EmbeddingModel(modelName)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("embedding %d is missing", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// runTools drives a chat session, answering function calls until the model
// returns text or the call budget is spent.
func (c *GeminiClient) runTools(ctx context.Context, model *genai.GenerativeModel, parts []genai.Part, req Request, log *zap.Logger) (string, error) {
	byName := make(map[string]Tool, len(req.Tools))
	decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
	for _, t := range req.Tools {
		byName[t.Name] = t
		decls = append(decls, t.declaration())
	}
	model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}

	limit := req.MaxToolCalls
	if limit <= 0 {
		limit = DefaultMaxToolCalls
	}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	used := 0
	exhausted := false
	for {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return extractTextFromResponse(resp)
		}
		if exhausted {
			return "", fmt.Errorf("model kept calling tools after %d calls: %w", used, ErrToolLimit)
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			var out map[string]any
			if used >= limit {
				exhausted = true
				out = map[string]any{"error": "tool call limit reached; return the final JSON answer now"}
			} else {
				used++
				out = invokeTool(ctx, byName, call, log)
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: out})
		}

		if req.Pace != nil {
			if err := req.Pace(ctx); err != nil {
				return "", err
			}
		}
		resp, err = session.SendMessage(ctx, replies...)
		if err != nil {
			return "", fmt.Errorf("failed to continue tool conversation: %w", err)
		}
	}
}

func invokeTool(ctx context.Context, tools map[string]Tool, call genai.FunctionCall, log *zap.Logger) map[string]any {
	tool, ok := tools[call.Name]
	if !ok {
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
	}

	start := time.Now()
	out, err := tool.Handler(ctx, call.Args)
	log.Debug("tool call", zap.String("tool", call.Name), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return toProtoCompatible(out)
}

// toProtoCompatible round-trips a tool result through JSON so that nested
// slices and structs become the []any and map[string]any values structpb accepts.
func toProtoCompatible(out map[string]any) map[string]any {
	if out == nil {
		return map[string]any{}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("tool result is not serializable: %v", err)}
	}
	var normalized map[string]any
	if err := json.Unmarshal(b, &normalized); err != nil {
		return map[string]any{"error": fmt.Sprintf("tool result is not serializable: %v", err)}
	}
	return normalized
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func imageMIME(mime string) string {
	if mime == "" {
		return "image/png"
	}
	if !strings.Contains(mime, "/") {
		return "image/" + mime
	}
	return mime
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response: %w", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response: %w", ErrEmptyResponse)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response: %w", ErrEmptyResponse)
	}

	return strings.Join(parts, ""), nil
}
