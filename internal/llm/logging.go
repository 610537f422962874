package llm

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/studychat/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event
// once its stream ends.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	logger    *slog.Logger
}

// WithLogging wraps a Provider with event logging. provider names the
// backend ("openai", "anthropic", ...) in the recorded events.
func WithLogging(p Provider, provider string, repo store.EventRepo, logger *slog.Logger) Provider {
	if repo == nil {
		repo = store.NopEventRepo{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Stream(ctx context.Context, req Request) iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		start := time.Now()
		var (
			text    strings.Builder
			usage   Usage
			model   = l.inner.ModelID()
			failure error
		)
		defer func() {
			l.record(ctx, req, start, text.String(), usage, model, failure)
		}()

		for frag, err := range l.inner.Stream(ctx, req) {
			if err != nil {
				failure = err
				yield(Fragment{}, err)
				return
			}
			text.WriteString(frag.Text)
			if frag.Usage != nil {
				usage = *frag.Usage
			}
			if frag.Model != "" {
				model = frag.Model
			}
			if !yield(frag, nil) {
				return
			}
		}
	}
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) record(ctx context.Context, req Request, start time.Time, reply string, usage Usage, model string, failure error) {
	call := CallFrom(ctx)
	data := store.LLMRequestEventData{
		Provider:     l.provider,
		Model:        model,
		Purpose:      call.Purpose,
		SessionID:    call.SessionID,
		LessonID:     call.LessonID,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      failure == nil,
		RequestBody:  serializeRequest(req),
		ResponseBody: reply,
	}
	if failure != nil {
		data.ErrorMessage = failure.Error()
	}

	attrs := []any{
		"provider", data.Provider,
		"model", data.Model,
		"purpose", data.Purpose,
		"session_id", data.SessionID,
		"lesson_id", data.LessonID,
		"latency_ms", data.LatencyMs,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
	}
	if failure != nil {
		l.logger.Warn("llm request failed", append(attrs, "error", failure)...)
	} else {
		l.logger.Debug("llm request", attrs...)
	}

	// The request context may already be cancelled; the event still lands.
	if err := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); err != nil {
		l.logger.Warn("failed to log LLM request event", "error", err)
	}
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
