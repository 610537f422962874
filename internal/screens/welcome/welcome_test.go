package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/router"
	"github.com/abhisek/studychat/internal/screen"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "chat" }
func (s *stubScreen) Title() string                           { return "Chat" }

func newTestWelcome(lessons []*catalog.Lesson) (*WelcomeScreen, *int) {
	calls := 0
	return New(lessons, func() screen.Screen {
		calls++
		return &stubScreen{}
	}), &calls
}

func sendTicks(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		_, cmd = w.Update(tickMsg(time.Now()))
	}
	return cmd
}

func TestLessonsRevealedAfterDelay(t *testing.T) {
	w, _ := newTestWelcome([]*catalog.Lesson{{ID: "dmaic", Title: "DMAIC"}, {ID: "5s"}})

	if strings.Contains(w.View(100, 30), "Lessons:") {
		t.Error("lesson list should not be visible at start")
	}
	sendTicks(w, 5)
	view := w.View(100, 30)
	if !strings.Contains(view, "Lessons: DMAIC · 5s") {
		t.Errorf("expected lesson list after delay:\n%s", view)
	}
}

func TestEmptyCatalogHint(t *testing.T) {
	w, _ := newTestWelcome(nil)
	sendTicks(w, 5)
	if !strings.Contains(w.View(100, 30), "No lessons loaded") {
		t.Error("expected empty catalog hint")
	}
}

func TestManyLessonsTruncated(t *testing.T) {
	var ls []*catalog.Lesson
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		ls = append(ls, &catalog.Lesson{ID: id})
	}
	w, _ := newTestWelcome(ls)
	if got := w.lessonLine(); !strings.Contains(got, "+2 more") {
		t.Errorf("lessonLine = %q, want +2 more", got)
	}
}

func TestKeyPressReplacesScreenOnce(t *testing.T) {
	w, calls := newTestWelcome(nil)

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'x'})
	if cmd == nil {
		t.Fatal("expected transition command")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}

	if _, cmd := w.Update(tea.KeyPressMsg{Code: 'y'}); cmd != nil {
		t.Error("second key press should not transition again")
	}
	if *calls != 1 {
		t.Errorf("factory called %d times, want 1", *calls)
	}
}

func TestAutoAdvance(t *testing.T) {
	w, calls := newTestWelcome(nil)
	n := int(autoAdvance / tickInterval)

	cmd := sendTicks(w, n)
	if cmd == nil {
		t.Fatal("expected command after auto-advance")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Errorf("expected ReplaceScreenMsg after %d ticks", n)
	}
	if *calls != 1 {
		t.Errorf("factory called %d times, want 1", *calls)
	}
}

func TestCompactBanner(t *testing.T) {
	if got := RenderBanner(30); !strings.Contains(got, "S T U D Y") {
		t.Errorf("expected compact banner, got %q", got)
	}
}
