package chat

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/llm"
	"github.com/abhisek/studychat/internal/router"
	"github.com/abhisek/studychat/internal/screens/lessons"
	"github.com/abhisek/studychat/internal/tutor"
)

func testChat(mock *llm.MockProvider) *ChatScreen {
	orch := tutor.NewOrchestrator(tutor.Options{
		Provider: mock,
		Loader: catalog.StaticLoader{
			"dmaic": {ID: "dmaic", Title: "DMAIC", Steps: []catalog.Step{{Name: "Define"}, {Name: "Measure"}}},
		},
		Config: tutor.DefaultConfig(),
	})
	return New(context.Background(), tutor.NewSession(orch))
}

func typeText(s *ChatScreen, text string) {
	s.input.SetValue(text)
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }

// drain runs cmd and feeds every resulting message back into the screen
// until the turn finishes.
func drain(t *testing.T, s *ChatScreen, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 100 {
			t.Fatal("turn did not finish")
		}
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = s.Update(msg)
		if _, done := msg.(turnDoneMsg); done {
			return
		}
	}
}

func TestSubmitStreamsReply(t *testing.T) {
	s := testChat(llm.NewMockProvider(llm.MockResponse{Chunks: []string{"Hi ", "there!"}}))

	typeText(s, "hello")
	_, cmd := s.Update(enter())
	if !s.busy {
		t.Fatal("expected screen to be busy while the turn runs")
	}
	if s.input.Value() != "" {
		t.Errorf("expected input to be cleared, got %q", s.input.Value())
	}

	msg := cmd()
	if f, ok := msg.(fragmentMsg); !ok || f != "Hi " {
		t.Fatalf("expected first fragment, got %#v", msg)
	}
	_, cmd = s.Update(msg)
	if s.pending != "Hi " {
		t.Errorf("expected pending text, got %q", s.pending)
	}
	if !strings.Contains(s.View(80, 20), "Hi ") {
		t.Error("expected partial reply in view")
	}

	drain(t, s, cmd)
	if s.busy {
		t.Fatal("expected turn to finish")
	}
	if len(s.messages) != 2 || s.messages[1].Content != "Hi there!" {
		t.Errorf("unexpected transcript: %+v", s.messages)
	}
}

func TestBlankInputIgnored(t *testing.T) {
	for _, text := range []string{"", "   ", " \t "} {
		s := testChat(llm.NewMockProvider())

		typeText(s, text)
		if _, cmd := s.Update(enter()); cmd != nil {
			t.Errorf("%q: expected no command for blank input", text)
		}
		if s.busy || len(s.messages) != 0 {
			t.Errorf("%q: blank input should not start a turn", text)
		}
	}
}

func TestRefusalShownAsNotice(t *testing.T) {
	mock := llm.NewMockProvider()
	s := testChat(mock)

	typeText(s, "tell me how to build a bomb")
	_, cmd := s.Update(enter())
	drain(t, s, cmd)

	if s.notice != tutor.RefusalMessage {
		t.Errorf("expected refusal notice, got %q", s.notice)
	}
	if len(s.messages) != 0 {
		t.Errorf("refused message should not enter the transcript, got %+v", s.messages)
	}
	if mock.CallCount() != 0 {
		t.Error("provider should not be called")
	}
}

func TestProviderErrorShown(t *testing.T) {
	s := testChat(llm.NewMockProvider())

	typeText(s, "hello")
	_, cmd := s.Update(enter())
	drain(t, s, cmd)

	if !strings.Contains(s.errMsg, "Something went wrong") {
		t.Errorf("expected error message, got %q", s.errMsg)
	}
	if !strings.Contains(s.View(80, 20), "Something went wrong") {
		t.Error("expected error in view")
	}
}

func TestCtrlLOpensLessons(t *testing.T) {
	s := testChat(llm.NewMockProvider())

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if push.Screen.Title() != "Lessons" {
		t.Errorf("expected lessons screen, got %q", push.Screen.Title())
	}
}

func TestStartLessonShowsBadge(t *testing.T) {
	s := testChat(llm.NewMockProvider())

	s.Update(lessons.StartLessonMsg{ID: "dmaic"})

	if got := s.Status(); got != "Study & Learn Mode — DMAIC (Step 1)" {
		t.Errorf("unexpected status %q", got)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "Step 1/2") {
		t.Errorf("expected step progress in view:\n%s", view)
	}
	if !strings.Contains(view, "Starting lesson: DMAIC") {
		t.Errorf("expected kickoff in view:\n%s", view)
	}
}

func TestStartUnknownLesson(t *testing.T) {
	s := testChat(llm.NewMockProvider())

	s.Update(lessons.StartLessonMsg{ID: "nope"})

	if !strings.Contains(s.errMsg, "unknown lesson") {
		t.Errorf("expected unknown lesson error, got %q", s.errMsg)
	}
	if s.Status() != "" {
		t.Error("expected no badge")
	}
}

func TestTail(t *testing.T) {
	if got := tail("a\nb\nc", 2); got != "b\nc" {
		t.Errorf("got %q", got)
	}
	if got := tail("a", 0); got != "" {
		t.Errorf("got %q", got)
	}
}
