package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string
	LessonID     string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// UsageSummary aggregates token usage for one group key (purpose or model).
type UsageSummary struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LessonEventKind labels a lesson lifecycle transition.
type LessonEventKind string

const (
	LessonStarted      LessonEventKind = "started"
	LessonCaptured     LessonEventKind = "captured"
	LessonAdvanced     LessonEventKind = "advanced"
	LessonCompleted    LessonEventKind = "completed"
	LessonExportFailed LessonEventKind = "export_failed"
)

// LessonEventData captures one lesson lifecycle transition.
type LessonEventData struct {
	SessionID string
	LessonID  string
	Kind      LessonEventKind
	StepIndex int
	Revised   bool
	Detail    string
}

// LessonEventRecord is a stored lesson event.
type LessonEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LessonEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns a single LLM request event by ID.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates LLM usage grouped by purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]UsageSummary, error)

	// LLMUsageByModel aggregates LLM usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]UsageSummary, error)

	// AppendLessonEvent records a lesson lifecycle transition.
	AppendLessonEvent(ctx context.Context, data LessonEventData) error

	// QueryLessonEvents returns lesson events, newest first. An empty
	// sessionID matches every session.
	QueryLessonEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]LessonEventRecord, error)
}

// NopEventRepo discards appends and returns empty query results. Used when
// no database is configured.
type NopEventRepo struct{}

func (NopEventRepo) AppendLLMRequest(context.Context, LLMRequestEventData) error { return nil }

func (NopEventRepo) QueryLLMEvents(context.Context, QueryOpts) ([]LLMEventRecord, error) {
	return nil, nil
}

func (NopEventRepo) GetLLMEvent(context.Context, int) (*LLMEventRecord, error) { return nil, nil }

func (NopEventRepo) LLMUsageByPurpose(context.Context) ([]UsageSummary, error) { return nil, nil }

func (NopEventRepo) LLMUsageByModel(context.Context) ([]UsageSummary, error) { return nil, nil }

func (NopEventRepo) AppendLessonEvent(context.Context, LessonEventData) error { return nil }

func (NopEventRepo) QueryLessonEvents(context.Context, string, QueryOpts) ([]LessonEventRecord, error) {
	return nil, nil
}
