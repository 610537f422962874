package tutor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/llm"
	"github.com/abhisek/studychat/internal/store"
	"github.com/google/uuid"
)

var (
	// ErrUnknownLesson is returned when starting a lesson the catalog lacks.
	ErrUnknownLesson = errors.New("unknown lesson")
	// ErrEmptyMessage is returned when submitting a blank message.
	ErrEmptyMessage = errors.New("empty message")
)

// Mode is the study-mode indicator shown while a lesson is coached.
type Mode struct {
	Active   bool   `json:"active"`
	LessonID string `json:"lesson_id,omitempty"`
	Title    string `json:"title,omitempty"`
	Step     int    `json:"step,omitempty"` // 1-based
	StepName string `json:"step_name,omitempty"`
	Total    int    `json:"total,omitempty"`
}

// Badge renders the indicator text, or "" when no lesson is coached.
func (m Mode) Badge() string {
	if !m.Active {
		return ""
	}
	return fmt.Sprintf("Study & Learn Mode — %s (Step %d)", m.Title, m.Step)
}

// Transcript is a read-only copy of a session for rendering.
type Transcript struct {
	SessionID string        `json:"session_id"`
	Messages  []llm.Message `json:"messages"`
	Mode      Mode          `json:"mode"`
}

// Session owns one user's conversation. It is not safe for concurrent use;
// callers serialise turns.
type Session struct {
	ID    string
	state *ConversationState
	orch  *Orchestrator
}

// NewSession creates a session with a fresh conversation.
func NewSession(orch *Orchestrator) *Session {
	id := uuid.NewString()
	return &Session{ID: id, state: NewConversationState(id), orch: orch}
}

// Submit runs one turn for text. Messages containing a banned phrase are
// refused without touching the conversation.
func (s *Session) Submit(ctx context.Context, text string, sink func(string)) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, ErrEmptyMessage
	}
	if IsBanned(text) {
		if sink != nil {
			sink(RefusalMessage)
		}
		return TurnResult{
			Handler:   HandlerRefused,
			Reply:     RefusalMessage,
			StepIndex: s.state.Lesson.CurrentStep,
		}, nil
	}

	s.state.Messages = append(s.state.Messages, llm.Message{Role: llm.RoleUser, Content: text})
	return s.orch.Turn(ctx, s.state, sink)
}

// StartLesson begins lesson id from its first step, discarding any lesson
// in progress, and appends the kickoff message. It returns the kickoff.
func (s *Session) StartLesson(ctx context.Context, id string) (string, error) {
	s.orch.EnsureCatalog(s.state)
	lesson := s.state.Catalog.Get(id)
	if lesson == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLesson, id)
	}

	s.state.Lesson = startLessonState(id)
	kickoff := kickoffMessage(lesson)
	s.state.appendAssistant(kickoff)
	s.orch.record(ctx, s.state, store.LessonEventData{LessonID: id, Kind: store.LessonStarted, Detail: "start"})
	return kickoff, nil
}

// Lessons returns the catalog in display order.
func (s *Session) Lessons() []*catalog.Lesson {
	s.orch.EnsureCatalog(s.state)
	return s.state.Catalog.Sorted()
}

// Mode returns the current study-mode indicator.
func (s *Session) Mode() Mode {
	ls := s.state.Lesson
	if !ls.Coaching() {
		return Mode{}
	}
	m := Mode{Active: true, LessonID: ls.LessonID, Title: ls.LessonID, Step: ls.CurrentStep + 1}
	if lesson := s.state.activeLesson(); lesson != nil {
		m.Title = lesson.DisplayTitle()
		m.Total = len(lesson.Steps)
		if step, ok := lesson.Step(ls.CurrentStep); ok {
			m.StepName = stepName(step, ls.CurrentStep)
		}
	}
	return m
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []llm.Message {
	return slices.Clone(s.state.Messages)
}

// Snapshot returns the transcript and mode together.
func (s *Session) Snapshot() Transcript {
	return Transcript{SessionID: s.ID, Messages: s.Messages(), Mode: s.Mode()}
}

// LessonState returns a copy of the lesson progress.
func (s *Session) LessonState() LessonState {
	return s.state.Lesson.Clone()
}
