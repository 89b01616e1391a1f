package llm

import (
	"fmt"
	"os"
	"time"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Providers lists the provider names NewProvider accepts.
var Providers = []string{"anthropic", "openai", "gemini", "mock"}

type Config struct {
	// Provider is one of Providers. Empty means no LLM is configured.
	Provider string

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig also serves OpenAI-compatible gateways such as OpenRouter
// through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// DiscoverConfig looks for a vendor API key in the usual environment
// variables, Gemini first, and returns a Config for the first one found.
// An OpenRouter key becomes an OpenAI config pointed at OpenRouter.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = os.Getenv("OPENROUTER_API_KEY")
		cfg.OpenAI.BaseURL = defaultOpenRouterBaseURL
		cfg.OpenAI.Model = "google/gemini-2.0-flash-001"
	default:
		return Config{}, false
	}
	return cfg, true
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "":
		return fmt.Errorf("%w (set SKILLTRACK_LLM_PROVIDER or a vendor API key)", ErrNotConfigured)
	case "mock":
		return nil
	case "anthropic":
		key, env = c.Anthropic.APIKey, "SKILLTRACK_LLM_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "SKILLTRACK_LLM_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "SKILLTRACK_LLM_GEMINI_API_KEY"
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
