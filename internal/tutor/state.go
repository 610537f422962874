package tutor

import (
	"context"
	"maps"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/llm"
)

// LessonState tracks progress through one active lesson.
//
// ImprovementSuggested is true exactly when the coach has given feedback on
// the current step but has not advanced past it. UserEntries holds the first
// submission for each step and is never overwritten once recorded.
type LessonState struct {
	Active               bool
	LessonID             string
	CurrentStep          int
	ImprovementSuggested bool
	UserEntries          map[int]string
	Guidance             map[int]string
	Completed            bool
}

// NewLessonState returns the default, inactive lesson state.
func NewLessonState() LessonState {
	return LessonState{
		UserEntries: map[int]string{},
		Guidance:    map[int]string{},
	}
}

// startLessonState returns a fresh state positioned on the first step of id.
func startLessonState(id string) LessonState {
	ls := NewLessonState()
	ls.Active = true
	ls.LessonID = id
	return ls
}

// Coaching reports whether the next turn belongs to the step coach.
func (ls LessonState) Coaching() bool {
	return ls.Active && !ls.Completed
}

// IsDefault reports whether ls equals NewLessonState().
func (ls LessonState) IsDefault() bool {
	return !ls.Active && ls.LessonID == "" && ls.CurrentStep == 0 &&
		!ls.ImprovementSuggested && !ls.Completed &&
		len(ls.UserEntries) == 0 && len(ls.Guidance) == 0
}

// Clone returns a deep copy.
func (ls LessonState) Clone() LessonState {
	ls.UserEntries = maps.Clone(ls.UserEntries)
	ls.Guidance = maps.Clone(ls.Guidance)
	ls.ensureMaps()
	return ls
}

func (ls *LessonState) ensureMaps() {
	if ls.UserEntries == nil {
		ls.UserEntries = map[int]string{}
	}
	if ls.Guidance == nil {
		ls.Guidance = map[int]string{}
	}
}

// ConversationState is everything one chat session owns: the transcript, the
// lesson progress and the cached catalog. It is not safe for concurrent use.
type ConversationState struct {
	SessionID string
	Messages  []llm.Message
	Lesson    LessonState
	Catalog   catalog.Catalog
}

// NewConversationState returns an empty conversation for sessionID.
func NewConversationState(sessionID string) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		Lesson:    NewLessonState(),
	}
}

// latestUser returns the content of the last message when it was sent by
// the user.
func (s *ConversationState) latestUser() (string, bool) {
	if len(s.Messages) == 0 {
		return "", false
	}
	last := s.Messages[len(s.Messages)-1]
	if last.Role != llm.RoleUser {
		return "", false
	}
	return last.Content, true
}

func (s *ConversationState) appendAssistant(content string) {
	s.Messages = append(s.Messages, llm.Message{Role: llm.RoleAssistant, Content: content})
}

// callContext labels an LLM call made on behalf of this conversation.
func (s *ConversationState) callContext(ctx context.Context, purpose string) context.Context {
	return llm.WithCall(ctx, llm.CallInfo{
		Purpose:   purpose,
		SessionID: s.SessionID,
		LessonID:  s.Lesson.LessonID,
	})
}

// activeLesson returns the catalog entry for the active lesson, or nil.
func (s *ConversationState) activeLesson() *catalog.Lesson {
	if s.Lesson.LessonID == "" {
		return nil
	}
	return s.Catalog.Get(s.Lesson.LessonID)
}
