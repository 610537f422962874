package llm

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/abhisek/studychat/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with timeout, retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider().WithFallback(EchoReply)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, logger)
	retried := WithRetry(logged, cfg.Retry)

	return WithTimeout(retried, cfg.Timeout), nil
}

// NewUnavailableProvider returns a Provider that fails every request with
// cause wrapped in ErrProviderUnavailable. It stands in when the configured
// provider cannot be built, so the app still starts.
func NewUnavailableProvider(cause error) Provider {
	return unavailableProvider{cause: cause}
}

type unavailableProvider struct {
	cause error
}

func (p unavailableProvider) Stream(context.Context, Request) iter.Seq2[Fragment, error] {
	return errorSeq(&ErrProviderUnavailable{Err: p.cause})
}

func (p unavailableProvider) ModelID() string { return "unavailable" }
