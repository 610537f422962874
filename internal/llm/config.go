package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string `toml:"provider"`

	Anthropic  AnthropicConfig  `toml:"anthropic"`
	OpenAI     OpenAIConfig     `toml:"openai"`
	Gemini     GeminiConfig     `toml:"gemini"`
	OpenRouter OpenRouterConfig `toml:"openrouter"`
	Retry      RetryConfig      `toml:"retry"`

	// Timeout is the maximum duration for a single streamed reply
	// (including retries). Default: 60s.
	Timeout time.Duration `toml:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `toml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`    // Default: "openai/gpt-4o-mini"
	BaseURL string `toml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `toml:"max_attempts"`
	InitialWait time.Duration `toml:"initial_wait"`
	MaxWait     time.Duration `toml:"max_wait"`
	Multiplier  float64       `toml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o-mini",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ApplyEnv overrides cfg with STUDYCHAT_* environment variables.
func (c *Config) ApplyEnv() {
	setFromEnv(&c.Provider, "STUDYCHAT_LLM_PROVIDER")

	setFromEnv(&c.Anthropic.APIKey, "STUDYCHAT_ANTHROPIC_API_KEY")
	setFromEnv(&c.Anthropic.Model, "STUDYCHAT_ANTHROPIC_MODEL")

	setFromEnv(&c.OpenAI.APIKey, "STUDYCHAT_OPENAI_API_KEY")
	setFromEnv(&c.OpenAI.Model, "STUDYCHAT_OPENAI_MODEL")
	setFromEnv(&c.OpenAI.BaseURL, "STUDYCHAT_OPENAI_BASE_URL")

	setFromEnv(&c.Gemini.APIKey, "STUDYCHAT_GEMINI_API_KEY")
	setFromEnv(&c.Gemini.Model, "STUDYCHAT_GEMINI_MODEL")

	setFromEnv(&c.OpenRouter.APIKey, "STUDYCHAT_OPENROUTER_API_KEY")
	setFromEnv(&c.OpenRouter.Model, "STUDYCHAT_OPENROUTER_MODEL")

	if v := os.Getenv("STUDYCHAT_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverKeys fills API keys that are still empty from the providers'
// standard env vars (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY,
// OPENROUTER_API_KEY). If the selected provider still has no key, the first
// provider with a discovered key (in that order) is selected instead.
// It reports whether the resulting provider has a key.
func (c *Config) DiscoverKeys() bool {
	discovered := []struct {
		name string
		key  *string
		env  string
	}{
		{"openai", &c.OpenAI.APIKey, "OPENAI_API_KEY"},
		{"anthropic", &c.Anthropic.APIKey, "ANTHROPIC_API_KEY"},
		{"gemini", &c.Gemini.APIKey, "GEMINI_API_KEY"},
		{"openrouter", &c.OpenRouter.APIKey, "OPENROUTER_API_KEY"},
	}
	for _, d := range discovered {
		if *d.key == "" {
			*d.key = os.Getenv(d.env)
		}
	}

	if c.Validate() == nil {
		return true
	}
	for _, d := range discovered {
		if *d.key != "" {
			c.Provider = d.name
			return true
		}
	}
	return false
}

// SetModel overrides the model of the selected provider.
func (c *Config) SetModel(model string) {
	switch c.Provider {
	case "anthropic":
		c.Anthropic.Model = model
	case "openai":
		c.OpenAI.Model = model
	case "gemini":
		c.Gemini.Model = model
	case "openrouter":
		c.OpenRouter.Model = model
	}
}

// Model returns the configured model of the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.Model
	case "openai":
		return c.OpenAI.Model
	case "gemini":
		return c.Gemini.Model
	case "openrouter":
		return c.OpenRouter.Model
	case "mock":
		return "mock"
	}
	return ""
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
