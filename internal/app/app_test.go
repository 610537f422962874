package app

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

func testModel() AppModel {
	orch := tutor.NewOrchestrator(tutor.Options{
		Provider: llm.NewMockProvider(),
		Loader: catalog.StaticLoader{
			"dmaic": {ID: "dmaic", Title: "DMAIC", Steps: []catalog.Step{{Name: "Define"}}},
		},
		Config: tutor.DefaultConfig(),
	})
	return newAppModel(context.Background(), Options{Session: tutor.NewSession(orch)})
}

func TestViewBeforeSize(t *testing.T) {
	m := testModel()
	if got := m.render(); got != "" {
		t.Errorf("expected empty view before first resize, got %q", got)
	}
}

func TestTooSmall(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	view := updated.(AppModel).render()
	if !strings.Contains(view, "Terminal too small") {
		t.Errorf("expected size warning, got %q", view)
	}
}

func TestLessonPickedShowsBadgeInHeader(t *testing.T) {
	var m tea.Model = testModel()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = m.Update(router.PushScreenMsg{Screen: lessons.New(nil)})
	if !strings.Contains(m.(AppModel).render(), "Lessons") {
		t.Fatal("expected lessons screen title")
	}

	m, _ = m.Update(router.PopScreenMsg{Result: lessons.StartLessonMsg{ID: "dmaic"}})
	content := m.(AppModel).render()
	if !strings.Contains(content, "Study & Learn Mode — DMAIC (Step 1)") {
		t.Errorf("expected study-mode badge in view:\n%s", content)
	}
}

func TestEscPopsOnlyAboveRoot(t *testing.T) {
	var m tea.Model = testModel()
	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("esc on the root screen should do nothing")
	}

	m, _ = m.Update(router.PushScreenMsg{Screen: lessons.New(nil)})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestSplashReplacedByChat(t *testing.T) {
	orch := tutor.NewOrchestrator(tutor.Options{
		Provider: llm.NewMockProvider(),
		Loader:   catalog.StaticLoader{},
		Config:   tutor.DefaultConfig(),
	})
	var m tea.Model = newAppModel(context.Background(), Options{Session: tutor.NewSession(orch), Splash: true})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(m.(AppModel).render(), "press any key to start") {
		t.Fatal("expected splash screen")
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'a'})
	if cmd == nil {
		t.Fatal("expected transition command")
	}
	m, _ = m.Update(cmd())
	if strings.Contains(m.(AppModel).render(), "press any key to start") {
		t.Error("splash still shown after transition")
	}
}
