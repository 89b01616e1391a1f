package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/skilltrack/internal/logger"
)

// NewProvider builds the configured provider wrapped as
// caller → retry → logging → provider.
func NewProvider(ctx context.Context, cfg Config, recorder RequestRecorder, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("service", "LLM", "provider", cfg.Provider)

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewStubProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, recorder, log)
	return WithRetry(logged, cfg.Retry, log), nil
}
