package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// OpenRouter credits calls to the app named in these headers.
	openRouterReferer = "https://github.com/abhisek/studychat"
	openRouterTitle   = "studychat"
)

// openRouterModels maps the bare names used elsewhere in the config to
// OpenRouter's vendor-prefixed ids. Prefixed ids pass through unchanged.
var openRouterModels = map[string]string{
	"gpt-4o":       "openai/gpt-4o",
	"gpt-4o-mini":  "openai/gpt-4o-mini",
	"gpt-4.1-mini": "openai/gpt-4.1-mini",
	"claude-haiku": "anthropic/claude-3.5-haiku",
	"gemini-flash": "google/gemini-2.0-flash-001",
}

// OpenRouterProvider streams coaching and chat replies through OpenRouter's
// OpenAI-compatible endpoint, tagging every call with studychat's app
// attribution.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	inner, err := newOpenAIProviderRaw(
		OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: baseURL},
		openRouterModels,
		attributingDoer{next: http.DefaultClient},
	)
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attributingDoer sets OpenRouter's app attribution headers unless the
// request already carries them.
type attributingDoer struct {
	next openai.HTTPDoer
}

func (d attributingDoer) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("HTTP-Referer") == "" {
		req.Header.Set("HTTP-Referer", openRouterReferer)
	}
	if req.Header.Get("X-Title") == "" {
		req.Header.Set("X-Title", openRouterTitle)
	}
	return d.next.Do(req)
}
