// Package config loads optimizer settings from defaults, an optional YAML or JSON
// file and HR_BREAKER_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/retry"
	"github.com/jonathan/resume-optimizer/internal/types"
)

const (
	// EnvPrefix prefixes every environment override, e.g. HR_BREAKER_MAX_ITERATIONS.
	EnvPrefix = "HR_BREAKER_"
	// EnvConfigPath names the config file when no path is given.
	EnvConfigPath = EnvPrefix + "CONFIG"
)

// Content formats accepted by content_format.
const (
	FormatHTML       = "html"
	FormatStructured = "structured"
)

// Config holds every tunable of the optimizer, the CLI and the server.
type Config struct {
	// Loop
	MaxIterations int    `koanf:"max_iterations" json:"max_iterations" validate:"gte=1,lte=20"`
	Sequential    bool   `koanf:"sequential" json:"sequential"`
	NoShame       bool   `koanf:"no_shame" json:"no_shame"`
	Debug         bool   `koanf:"debug" json:"debug"`
	OutputDir     string `koanf:"output_dir" json:"output_dir" validate:"required"`
	ContentFormat string `koanf:"content_format" json:"content_format" validate:"oneof=html structured"`

	// Retry and LLM limits
	RetryMaxAttempts     int           `koanf:"retry_max_attempts" json:"retry_max_attempts" validate:"gte=1,lte=20"`
	RetryMaxWait         time.Duration `koanf:"retry_max_wait" json:"retry_max_wait" validate:"gt=0"`
	LLMRequestsPerMinute int           `koanf:"llm_requests_per_minute" json:"llm_requests_per_minute" validate:"gte=0"`
	LLMToolCallLimit     int           `koanf:"llm_tool_call_limit" json:"llm_tool_call_limit" validate:"gte=0,lte=50"`

	// Models
	ModelLite      string `koanf:"model_lite" json:"model_lite" validate:"required"`
	ModelStandard  string `koanf:"model_standard" json:"model_standard" validate:"required"`
	ModelAdvanced  string `koanf:"model_advanced" json:"model_advanced" validate:"required"`
	ModelEmbedding string `koanf:"model_embedding" json:"model_embedding" validate:"required"`

	// Thresholds
	KeywordThreshold              float64 `koanf:"keyword_threshold" json:"keyword_threshold" validate:"gte=0,lte=1"`
	VectorThreshold               float64 `koanf:"vector_threshold" json:"vector_threshold" validate:"gte=0,lte=1"`
	ATSThreshold                  float64 `koanf:"ats_threshold" json:"ats_threshold" validate:"gte=0,lte=1"`
	AIThreshold                   float64 `koanf:"ai_threshold" json:"ai_threshold" validate:"gte=0,lte=1"`
	HallucinationStrictThreshold  float64 `koanf:"hallucination_strict_threshold" json:"hallucination_strict_threshold" validate:"gte=0,lte=1"`
	HallucinationLenientThreshold float64 `koanf:"hallucination_lenient_threshold" json:"hallucination_lenient_threshold" validate:"gte=0,lte=1"`

	// Limits
	MaxPages           int           `koanf:"max_pages" json:"max_pages" validate:"gte=1,lte=5"`
	ResumeMaxChars     int           `koanf:"resume_max_chars" json:"resume_max_chars" validate:"gt=0"`
	ResumeMaxWords     int           `koanf:"resume_max_words" json:"resume_max_words" validate:"gt=0"`
	NameExtractorChars int           `koanf:"name_extractor_chars" json:"name_extractor_chars" validate:"gt=0"`
	RenderTimeout      time.Duration `koanf:"render_timeout" json:"render_timeout" validate:"gt=0"`
	UseBrowser         bool          `koanf:"use_browser" json:"use_browser"`

	// Secrets and outputs
	GeminiAPIKey string `koanf:"gemini_api_key" json:"-"`
	DatabaseURL  string `koanf:"database_url" json:"-"`
	MetricsFile  string `koanf:"metrics_file" json:"metrics_file,omitempty"`

	// Server
	Port            int `koanf:"port" json:"port" validate:"gte=1,lte=65535"`
	ClientRateLimit int `koanf:"client_rate_limit" json:"client_rate_limit" validate:"gte=1"`

	// Logging
	LogJSON bool `koanf:"log_json" json:"log_json"`
	Verbose bool `koanf:"verbose" json:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	models := llm.DefaultGeminiConfig()
	return &Config{
		MaxIterations: 5,
		OutputDir:     "output",
		ContentFormat: FormatHTML,

		RetryMaxAttempts:     retry.DefaultMaxAttempts,
		RetryMaxWait:         retry.DefaultMaxWait,
		LLMRequestsPerMinute: 60,
		LLMToolCallLimit:     llm.DefaultMaxToolCalls,

		ModelLite:      models.GetModel(llm.TierLite),
		ModelStandard:  models.GetModel(llm.TierStandard),
		ModelAdvanced:  models.GetModel(llm.TierAdvanced),
		ModelEmbedding: models.GetModel(llm.TierEmbedding),

		KeywordThreshold:              0.25,
		VectorThreshold:               0.4,
		ATSThreshold:                  0.6,
		AIThreshold:                   0.5,
		HallucinationStrictThreshold:  0.9,
		HallucinationLenientThreshold: 0.6,

		MaxPages:           1,
		ResumeMaxChars:     4500,
		ResumeMaxWords:     550,
		NameExtractorChars: 2000,
		RenderTimeout:      60 * time.Second,

		Port:            8080,
		ClientRateLimit: 10,
	}
}

// Load builds a Config by layering, lowest priority first: defaults, the file at
// path (or $HR_BREAKER_CONFIG), HR_BREAKER_* variables, then GEMINI_API_KEY and
// DATABASE_URL for the secrets the prefixed variables left empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrLoadConfig, err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks field ranges. It returns *ValidationError listing every
// failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: rule, Value: fe.Value()})
	}
	return out
}

// LLMConfig returns the model mapping for the LLM client.
func (c *Config) LLMConfig() *llm.Config {
	return &llm.Config{
		Provider: llm.ProviderGemini,
		Models: map[llm.ModelTier]string{
			llm.TierLite:      c.ModelLite,
			llm.TierStandard:  c.ModelStandard,
			llm.TierAdvanced:  c.ModelAdvanced,
			llm.TierEmbedding: c.ModelEmbedding,
		},
	}
}

// RetryPolicy returns the retry policy for external calls.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: c.RetryMaxAttempts, MaxWait: c.RetryMaxWait}
}

// ContentKind maps content_format onto the candidate representation.
func (c *Config) ContentKind() types.ContentKind {
	if c.ContentFormat == FormatStructured {
		return types.ContentStructured
	}
	return types.ContentMarkup
}
