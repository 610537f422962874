package tutor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/studychat/internal/llm"
)

// StepOutcome describes what one coaching pass did.
type StepOutcome struct {
	// Step is the index that was coached.
	Step int
	// Reply is the appended assistant message, empty when none was added.
	Reply string
	// Captured is set on the first pass, when the user's text was recorded.
	Captured bool
	// Advanced is set on the second pass. Revised tells whether the second
	// answer differed from the recorded one; it does not affect advancing.
	Advanced bool
	Revised  bool
	// Completed is set once the step index reaches the end of the lesson.
	Completed bool
}

// Coach drives one step of an active lesson.
type Coach struct {
	provider llm.Provider
	cfg      Config
}

// NewCoach creates a step coach.
func NewCoach(provider llm.Provider, cfg Config) *Coach {
	return &Coach{provider: provider, cfg: cfg}
}

// CoachStep replies to the latest user message with step-scoped coaching and
// applies the improvement cycle: the first answer on a step is recorded and
// gets one suggestion; the second answer always advances.
//
// A step index already past the end only marks the lesson completed. A
// lesson missing from the catalog counts as having no steps. Without a
// trailing user message nothing happens. On a completion error the state is
// left untouched.
func (c *Coach) CoachStep(ctx context.Context, state *ConversationState, sink func(string)) (StepOutcome, error) {
	return c.run(ctx, state, sink, false)
}

// Open answers the message that started the lesson. It introduces the first
// step without recording the message as an attempt.
func (c *Coach) Open(ctx context.Context, state *ConversationState, sink func(string)) (StepOutcome, error) {
	return c.run(ctx, state, sink, true)
}

func (c *Coach) run(ctx context.Context, state *ConversationState, sink func(string), opening bool) (StepOutcome, error) {
	ls := &state.Lesson
	ls.ensureMaps()

	lesson := state.activeLesson()
	steps := 0
	if lesson != nil {
		steps = len(lesson.Steps)
	}

	out := StepOutcome{Step: ls.CurrentStep}
	if ls.CurrentStep >= steps {
		ls.Completed = true
		out.Completed = true
		return out, nil
	}

	userText, ok := state.latestUser()
	if !ok {
		return out, nil
	}

	idx := ls.CurrentStep
	instruction := coachInstruction(lesson, idx, ls.ImprovementSuggested)
	if opening {
		instruction = openingInstruction(lesson)
	}
	req := llm.Request{
		System: systemPrompt(state),
		Messages: append(slices.Clone(state.Messages), llm.Message{
			Role:    llm.RoleUser,
			Content: instruction,
		}),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	reply, err := llm.Collect(c.provider.Stream(state.callContext(ctx, "coach"), req), sink)
	if err != nil {
		return StepOutcome{}, fmt.Errorf("coach step %d of %s: %w", idx+1, ls.LessonID, err)
	}

	if strings.TrimSpace(reply.Text) != "" {
		state.appendAssistant(reply.Text)
		ls.Guidance[idx] = reply.Text
		out.Reply = reply.Text
	}
	if opening {
		return out, nil
	}

	if !ls.ImprovementSuggested {
		ls.UserEntries[idx] = userText
		ls.ImprovementSuggested = true
		out.Captured = true
	} else {
		answer := strings.TrimSpace(userText)
		out.Revised = answer != "" && answer != strings.TrimSpace(ls.UserEntries[idx])
		ls.CurrentStep++
		ls.ImprovementSuggested = false
		out.Advanced = true
	}

	if ls.CurrentStep >= steps {
		ls.Completed = true
		out.Completed = true
	}
	return out, nil
}
