// Package welcome renders the startup splash shown before the chat.
package welcome

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/router"
	"github.com/abhisek/studychat/internal/screen"
	"github.com/abhisek/studychat/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	revealAfter  = 500 * time.Millisecond
	autoAdvance  = 3 * time.Second
	maxListed    = 5
)

type tickMsg time.Time

// WelcomeScreen shows the banner and the lesson catalog, then replaces
// itself with the screen built by next on any key or after autoAdvance.
type WelcomeScreen struct {
	next         func() screen.Screen
	lessons      []*catalog.Lesson
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New(lessons []*catalog.Lesson, next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next, lessons: lessons}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		w.elapsed += tickInterval
		if w.elapsed >= autoAdvance {
			return w, w.transition()
		}
		return w, tick()
	case tea.KeyPressMsg:
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{RenderBanner(width), ""}

	if w.elapsed >= revealAfter {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
				Render("Ask anything, or say \"teach me\" and a lesson name."),
			"",
			w.lessonLine(),
		)
	}

	sections = append(sections, "", theme.Hint.Render("press any key to start"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

func (w *WelcomeScreen) lessonLine() string {
	if len(w.lessons) == 0 {
		return theme.Hint.Render("No lessons loaded. Add YAML files to your lessons directory.")
	}
	titles := make([]string, 0, maxListed)
	for i, l := range w.lessons {
		if i == maxListed {
			titles = append(titles, fmt.Sprintf("+%d more", len(w.lessons)-maxListed))
			break
		}
		titles = append(titles, l.DisplayTitle())
	}
	return lipgloss.NewStyle().Foreground(theme.Secondary).
		Render("Lessons: " + strings.Join(titles, " · "))
}
