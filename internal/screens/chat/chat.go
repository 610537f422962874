// Package chat is the main conversation screen.
package chat

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studychat/internal/llm"
	"github.com/abhisek/studychat/internal/router"
	"github.com/abhisek/studychat/internal/screen"
	"github.com/abhisek/studychat/internal/screens/lessons"
	"github.com/abhisek/studychat/internal/tutor"
	"github.com/abhisek/studychat/internal/ui/components"
	"github.com/abhisek/studychat/internal/ui/layout"
)

// ChatScreen sends user messages to a tutoring session and renders the
// transcript. While a turn runs, the session belongs to the turn goroutine;
// the screen only reads it again after turnDoneMsg.
type ChatScreen struct {
	ctx     context.Context
	session *tutor.Session
	input   components.TextInput

	messages []llm.Message
	mode     tutor.Mode

	busy    bool
	pending string
	stream  <-chan tea.Msg

	notice string
	errMsg string
}

var (
	_ screen.Screen          = (*ChatScreen)(nil)
	_ screen.KeyHintProvider = (*ChatScreen)(nil)
	_ screen.StatusProvider  = (*ChatScreen)(nil)
)

// New creates a chat screen for session.
func New(ctx context.Context, session *tutor.Session) *ChatScreen {
	return &ChatScreen{
		ctx:     ctx,
		session: session,
		input:   components.NewTextInput("Ask anything, or say \"teach me DMAIC\"...", 2000),
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string { return "Chat" }

// Status returns the study-mode badge.
func (s *ChatScreen) Status() string { return s.mode.Badge() }

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	if s.busy {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+L", Description: "Lessons"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case fragmentMsg:
		s.pending += string(msg)
		return s, waitForStream(s.stream)

	case turnDoneMsg:
		return s.handleTurnDone(msg)

	case lessons.StartLessonMsg:
		return s.startLesson(msg.ID)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return s.submit()
		case "ctrl+l":
			if s.busy {
				return s, nil
			}
			picker := lessons.New(s.session.Lessons())
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: picker} }
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) submit() (screen.Screen, tea.Cmd) {
	text := s.input.Value()
	if s.busy || strings.TrimSpace(text) == "" {
		return s, nil
	}
	s.input.Reset()
	s.notice, s.errMsg = "", ""
	s.busy = true
	s.pending = ""
	s.messages = append(s.messages, llm.Message{Role: llm.RoleUser, Content: text})

	ch := make(chan tea.Msg, 64)
	s.stream = ch
	go func(ctx context.Context, sess *tutor.Session) {
		defer close(ch)
		res, err := sess.Submit(ctx, text, func(fragment string) {
			ch <- fragmentMsg(fragment)
		})
		ch <- turnDoneMsg{Result: res, Err: err}
	}(s.ctx, s.session)

	return s, waitForStream(ch)
}

func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (s *ChatScreen) handleTurnDone(msg turnDoneMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	s.pending = ""
	s.stream = nil
	s.refresh()

	switch {
	case msg.Err != nil:
		s.errMsg = "Something went wrong: " + msg.Err.Error()
	case msg.Result.Handler == tutor.HandlerRefused:
		s.notice = msg.Result.Reply
	case msg.Result.ExportErr != nil:
		s.errMsg = "Export failed: " + msg.Result.ExportErr.Error()
	}
	return s, nil
}

func (s *ChatScreen) startLesson(id string) (screen.Screen, tea.Cmd) {
	s.notice, s.errMsg = "", ""
	if _, err := s.session.StartLesson(s.ctx, id); err != nil {
		s.errMsg = err.Error()
	}
	s.refresh()
	return s, nil
}

func (s *ChatScreen) refresh() {
	s.messages = s.session.Messages()
	s.mode = s.session.Mode()
}
