package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/studychat/internal/llm"
)

// Chat answers outside of lesson coaching.
type Chat struct {
	provider llm.Provider
	cfg      Config
}

// NewChat creates a normal chat handler.
func NewChat(provider llm.Provider, cfg Config) *Chat {
	return &Chat{provider: provider, cfg: cfg}
}

// Respond sends the full history with the system prompt and appends the
// reply when it is not blank. It returns the appended text.
func (c *Chat) Respond(ctx context.Context, state *ConversationState, sink func(string)) (string, error) {
	if _, ok := state.latestUser(); !ok {
		return "", nil
	}

	req := llm.Request{
		System:      systemPrompt(state),
		Messages:    state.Messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	reply, err := llm.Collect(c.provider.Stream(state.callContext(ctx, "chat"), req), sink)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	if strings.TrimSpace(reply.Text) == "" {
		return "", nil
	}
	state.appendAssistant(reply.Text)
	return reply.Text, nil
}
