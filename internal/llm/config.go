// Package llm wraps the Gemini SDK behind a small Client interface: text and
// JSON generation, image input, function calling and embeddings, plus retry
// and rate-limit middleware.
package llm

import "fmt"

// ModelTier selects a model by capability rather than by name.
type ModelTier string

const (
	// TierLite serves extraction: candidate names and job posting fields.
	TierLite ModelTier = "lite"
	// TierStandard serves the evaluator reviews.
	TierStandard ModelTier = "standard"
	// TierAdvanced serves the rewriter and the hallucination check.
	TierAdvanced ModelTier = "advanced"
	// TierEmbedding is the text embedding model used for similarity scoring.
	TierEmbedding ModelTier = "embedding"
)

// Tiers lists every tier a complete Config maps.
var Tiers = []ModelTier{TierLite, TierStandard, TierAdvanced, TierEmbedding}

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the only provider NewClient builds.
const ProviderGemini Provider = "gemini"

// Config maps tiers onto provider model names.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:      "gemini-2.5-flash-lite",
			TierStandard:  "gemini-2.5-flash",
			TierAdvanced:  "gemini-2.5-pro",
			TierEmbedding: "text-embedding-004",
		},
	}
}

// GetModel returns the model for tier. Generative tiers fall back to standard,
// then lite; the embedding tier never falls back.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	if tier == TierEmbedding {
		return ""
	}
	for _, fallback := range []ModelTier{TierStandard, TierLite} {
		if model := c.Models[fallback]; model != "" {
			return model
		}
	}
	return ""
}

// Validate reports tiers that resolve to no model.
func (c *Config) Validate() error {
	var missing []ModelTier
	for _, tier := range Tiers {
		if c.GetModel(tier) == "" {
			missing = append(missing, tier)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no model configured for tiers %v", missing)
	}
	return nil
}
