package llm

import (
	"testing"
	"time"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
		"STUDYCHAT_LLM_PROVIDER", "STUDYCHAT_OPENAI_API_KEY", "STUDYCHAT_OPENAI_MODEL",
		"STUDYCHAT_LLM_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestApplyEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("STUDYCHAT_LLM_PROVIDER", "openai")
	t.Setenv("STUDYCHAT_OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("STUDYCHAT_LLM_TIMEOUT", "5s")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Errorf("model = %q", cfg.OpenAI.Model)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
}

func TestDiscoverKeys(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		env      map[string]string
		wantOK   bool
		want     string
	}{
		{"selected provider has key", "openai", map[string]string{"OPENAI_API_KEY": "k"}, true, "openai"},
		{"falls back to first discovered", "openai", map[string]string{"GEMINI_API_KEY": "g", "OPENROUTER_API_KEY": "o"}, true, "gemini"},
		{"mock needs no key", "mock", nil, true, "mock"},
		{"nothing found", "anthropic", nil, false, "anthropic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviderEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := DefaultConfig()
			cfg.Provider = tt.provider
			ok := cfg.DiscoverKeys()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if cfg.Provider != tt.want {
				t.Errorf("provider = %q, want %q", cfg.Provider, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}

	cfg.Provider = "anthropic"
	cfg.Anthropic.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "gemini"
	cfg.SetModel("gemini-pro")
	if cfg.Model() != "gemini-pro" {
		t.Fatalf("model = %q", cfg.Model())
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("openai model changed: %q", cfg.OpenAI.Model)
	}
}
