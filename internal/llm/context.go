package llm

import "context"

// CallInfo labels an LLM call in the event log so it can be joined with the
// lesson events of the same session.
type CallInfo struct {
	Purpose   string // "coach", "chat", ...
	SessionID string
	LessonID  string // empty outside a lesson
}

type callInfoKey struct{}

// WithCall attaches info to ctx for the logging middleware.
func WithCall(ctx context.Context, info CallInfo) context.Context {
	return context.WithValue(ctx, callInfoKey{}, info)
}

// CallFrom returns the CallInfo attached to ctx. Purpose is "unknown" when
// the caller never labelled the call.
func CallFrom(ctx context.Context) CallInfo {
	info, _ := ctx.Value(callInfoKey{}).(CallInfo)
	if info.Purpose == "" {
		info.Purpose = "unknown"
	}
	return info
}
