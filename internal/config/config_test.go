package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// clearEnv isolates a test from the caller's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfigPath, "GEMINI_API_KEY", "DATABASE_URL", EnvPrefix + "GEMINI_API_KEY", EnvPrefix + "DATABASE_URL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 0.9, cfg.HallucinationStrictThreshold)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
max_iterations: 3
sequential: true
keyword_threshold: 0.3
render_timeout: 30s
model_advanced: gemini-exp
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxIterations)
	assert.True(t, cfg.Sequential)
	assert.Equal(t, 0.3, cfg.KeywordThreshold)
	assert.Equal(t, 30*time.Second, cfg.RenderTimeout)
	assert.Equal(t, "gemini-exp", cfg.ModelAdvanced)
	assert.Equal(t, 550, cfg.ResumeMaxWords, "unset keys keep defaults")
}

func TestLoad_JSONFileFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"output_dir": "pdfs", "no_shame": true}`)
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pdfs", cfg.OutputDir)
	assert.True(t, cfg.NoShame)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "max_iterations: 3\nmax_pages: 2\n")
	t.Setenv(EnvPrefix+"MAX_ITERATIONS", "7")
	t.Setenv(EnvPrefix+"USE_BROWSER", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxIterations)
	assert.Equal(t, 2, cfg.MaxPages)
	assert.True(t, cfg.UseBrowser)
}

func TestLoad_SecretFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantKey string
		wantDB  string
	}{
		{
			name:    "plain variables",
			env:     map[string]string{"GEMINI_API_KEY": "plain", "DATABASE_URL": "postgres://plain"},
			wantKey: "plain",
			wantDB:  "postgres://plain",
		},
		{
			name: "prefixed wins",
			env: map[string]string{
				"GEMINI_API_KEY":             "plain",
				EnvPrefix + "GEMINI_API_KEY": "prefixed",
			},
			wantKey: "prefixed",
		},
		{
			name: "nothing set",
			env:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, cfg.GeminiAPIKey)
			assert.Equal(t, tt.wantDB, cfg.DatabaseURL)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadConfig))

	bad := writeFile(t, "bad.yaml", "max_iterations: [unclosed\n")
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero iterations", mutate: func(c *Config) { c.MaxIterations = 0 }, fields: []string{"max_iterations"}},
		{name: "too many iterations", mutate: func(c *Config) { c.MaxIterations = 21 }, fields: []string{"max_iterations"}},
		{name: "bad format", mutate: func(c *Config) { c.ContentFormat = "latex" }, fields: []string{"content_format"}},
		{name: "threshold out of range", mutate: func(c *Config) { c.KeywordThreshold = 1.5 }, fields: []string{"keyword_threshold"}},
		{
			name: "several fields",
			mutate: func(c *Config) {
				c.OutputDir = ""
				c.RenderTimeout = 0
				c.Port = 0
			},
			fields: []string{"output_dir", "render_timeout", "port"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.True(t, verr.Has(f), "expected %s to fail", f)
				assert.Contains(t, err.Error(), f)
			}
		})
	}
}

func TestDerivedSettings(t *testing.T) {
	cfg := Default()
	cfg.ModelAdvanced = "gemini-exp"
	cfg.RetryMaxAttempts = 2

	llmCfg := cfg.LLMConfig()
	assert.Equal(t, llm.ProviderGemini, llmCfg.Provider)
	assert.Equal(t, "gemini-exp", llmCfg.GetModel(llm.TierAdvanced))
	assert.Equal(t, cfg.ModelEmbedding, llmCfg.GetModel(llm.TierEmbedding))

	policy := cfg.RetryPolicy()
	assert.Equal(t, 2, policy.MaxAttempts)
	assert.Equal(t, cfg.RetryMaxWait, policy.MaxWait)

	assert.Equal(t, types.ContentMarkup, cfg.ContentKind())
	cfg.ContentFormat = FormatStructured
	assert.Equal(t, types.ContentStructured, cfg.ContentKind())
}
