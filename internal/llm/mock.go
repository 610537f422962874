package llm

import (
	"context"
	"iter"
	"strings"
	"sync"
)

// MockResponse is a canned reply for the MockProvider.
// Chunks, when set, are streamed as separate fragments; otherwise Text is
// streamed as one fragment. A non-nil Err is yielded after the fragments,
// so an Err with no text fails before anything is streamed.
type MockResponse struct {
	Text   string
	Chunks []string
	Usage  Usage
	Err    error
}

// MockProvider is a deterministic Provider for testing and offline use.
// It replays canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	fallback  func(Request) string
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// WithFallback sets the reply generator used once the queue is empty.
// Without one, an empty queue yields ErrProviderUnavailable.
func (m *MockProvider) WithFallback(fn func(Request) string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
	return m
}

func (m *MockProvider) Stream(_ context.Context, req Request) iter.Seq2[Fragment, error] {
	resp, ok := m.next(req)
	if !ok {
		return errorSeq(&ErrProviderUnavailable{})
	}

	return func(yield func(Fragment, error) bool) {
		chunks := resp.Chunks
		if len(chunks) == 0 && resp.Text != "" {
			chunks = []string{resp.Text}
		}
		for _, c := range chunks {
			if !yield(Fragment{Text: c}, nil) {
				return
			}
		}
		if resp.Err != nil {
			yield(Fragment{}, resp.Err)
			return
		}
		usage := resp.Usage
		yield(Fragment{Usage: &usage, Model: "mock"}, nil)
	}
}

func (m *MockProvider) next(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) > 0 {
		resp := m.responses[0]
		m.responses = m.responses[1:]
		return resp, true
	}
	if m.fallback != nil {
		return MockResponse{Chunks: splitWords(m.fallback(req))}, true
	}
	return MockResponse{}, false
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Stream calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or false if none was made.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

// splitWords breaks s into word fragments that keep their trailing spaces,
// so the concatenation equals s.
func splitWords(s string) []string {
	var out []string
	for len(s) > 0 {
		i := strings.IndexByte(s, ' ')
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i+1])
		s = s[i+1:]
	}
	return out
}

// EchoReply is the fallback used by the "mock" provider: it acknowledges the
// latest user message so the app can be exercised without credentials.
func EchoReply(req Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			text := []rune(strings.TrimSpace(req.Messages[i].Content))
			if len(text) > 200 {
				text = append(text[:200], '…')
			}
			return "(mock) I received: " + string(text)
		}
	}
	return "(mock) Hello!"
}
