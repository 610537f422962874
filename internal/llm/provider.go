package llm

import (
	"context"
	"iter"
	"strings"
)

// Provider is the core abstraction for LLM interaction.
// Consumers call Stream with a Request and range over the reply fragments.
type Provider interface {
	// Stream sends the conversation to the LLM and yields the assistant reply
	// as a lazy, finite sequence of fragments. The sequence is not
	// restartable: ranging over it a second time issues a new request.
	// A non-nil error ends the sequence.
	Stream(ctx context.Context, req Request) iter.Seq2[Fragment, error]

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Fragment is one piece of a streamed reply. Text fragments arrive in order;
// providers that report token usage emit a final fragment carrying Usage.
type Fragment struct {
	Text  string
	Usage *Usage
	Model string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Reply is a fully drained stream.
type Reply struct {
	Text  string
	Usage Usage
	Model string
}

// Collect drains seq, forwarding every text fragment to sink (which may be
// nil), and returns the concatenated reply. Fragments received before an
// error are still reported through sink.
func Collect(seq iter.Seq2[Fragment, error], sink func(string)) (Reply, error) {
	var (
		b     strings.Builder
		reply Reply
	)
	for frag, err := range seq {
		if err != nil {
			reply.Text = b.String()
			return reply, err
		}
		if frag.Text != "" {
			b.WriteString(frag.Text)
			if sink != nil {
				sink(frag.Text)
			}
		}
		if frag.Usage != nil {
			reply.Usage = *frag.Usage
		}
		if frag.Model != "" {
			reply.Model = frag.Model
		}
	}
	reply.Text = b.String()
	return reply, nil
}

// errorSeq returns a sequence that yields err and stops.
func errorSeq(err error) iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		yield(Fragment{}, err)
	}
}
