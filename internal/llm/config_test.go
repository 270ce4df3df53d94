package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "text-embedding-004", config.GetModel(TierEmbedding))
	assert.NoError(t, config.Validate())
}

func TestGetModel(t *testing.T) {
	tests := []struct {
		name   string
		models map[ModelTier]string
		tier   ModelTier
		want   string
	}{
		{name: "exact", models: map[ModelTier]string{TierAdvanced: "pro"}, tier: TierAdvanced, want: "pro"},
		{name: "falls back to standard", models: map[ModelTier]string{TierStandard: "flash", TierLite: "lite"}, tier: TierAdvanced, want: "flash"},
		{name: "falls back to lite", models: map[ModelTier]string{TierLite: "lite"}, tier: "unknown", want: "lite"},
		{name: "empty name falls back", models: map[ModelTier]string{TierAdvanced: "", TierLite: "lite"}, tier: TierAdvanced, want: "lite"},
		{name: "embedding has no fallback", models: map[ModelTier]string{TierStandard: "flash"}, tier: TierEmbedding, want: ""},
		{name: "empty config", models: map[ModelTier]string{}, tier: TierAdvanced, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Provider: ProviderGemini, Models: tt.models}
			assert.Equal(t, tt.want, config.GetModel(tt.tier))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{TierLite: "lite"}}

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding")
	assert.NotContains(t, err.Error(), "advanced")
}
