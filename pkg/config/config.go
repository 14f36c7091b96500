package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Everything is environment-driven;
// only the credential for the selected provider is mandatory.
type Config struct {
	// Provider selects the inference backend: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `env:"PROVIDER" envDefault:"openai"`

	// APIKey is the bearer credential for the OpenAI-compatible service.
	APIKey string `env:"API_KEY"`

	// AnthropicAPIKey is the credential for the Anthropic provider.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// BaseURL is the OpenAI-compatible endpoint root.
	BaseURL string `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`

	// AnthropicBaseURL overrides the Anthropic endpoint root. Empty uses
	// the SDK default.
	AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`

	// Model is the vision model identifier to request.
	Model string `env:"MODEL" envDefault:"gpt-4o-mini"`

	// FallbackProvider optionally names a second provider to try when the
	// primary fails ("openai" or "anthropic"). Empty disables fallback.
	FallbackProvider string `env:"FALLBACK_PROVIDER"`

	// FallbackModel is the model used with the fallback provider.
	FallbackModel string `env:"FALLBACK_MODEL"`

	// Timeout bounds the whole inference exchange (probe + extraction).
	Timeout time.Duration `env:"TIMEOUT" envDefault:"120s"`

	// SkipProbe disables the model-listing probe before extraction. Some
	// OpenAI-compatible gateways do not serve a models endpoint.
	SkipProbe bool `env:"SKIP_PROBE" envDefault:"false"`

	// AuditDir is where per-run request/response/result artifacts land.
	AuditDir string `env:"AUDIT_DIR" envDefault:"logs"`

	// MaxDimension is the pixel bound images are normalized to.
	MaxDimension int `env:"MAX_DIMENSION" envDefault:"1024"`
}

// Load reads configuration from PIXTRACT_-prefixed environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "PIXTRACT_"}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxDimension <= 0 {
		return nil, fmt.Errorf("PIXTRACT_MAX_DIMENSION must be positive, got %d", cfg.MaxDimension)
	}
	return cfg, nil
}

// Credential returns the credential for the selected provider.
func (c *Config) Credential() string {
	if c.Provider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.APIKey
}

// CredentialVar names the environment variable holding the credential for
// the selected provider, for error messages.
func (c *Config) CredentialVar() string {
	if c.Provider == "anthropic" {
		return "PIXTRACT_ANTHROPIC_API_KEY"
	}
	return "PIXTRACT_API_KEY"
}
