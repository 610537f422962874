// Package lessons is the lesson picker screen.
package lessons

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/router"
	"github.com/abhisek/studychat/internal/screen"
	"github.com/abhisek/studychat/internal/ui/components"
	"github.com/abhisek/studychat/internal/ui/layout"
	"github.com/abhisek/studychat/internal/ui/theme"
)

// StartLessonMsg is returned to the screen underneath when a lesson is
// picked.
type StartLessonMsg struct {
	ID string
}

// LessonsScreen lists the cataloged lessons.
type LessonsScreen struct {
	lessons []*catalog.Lesson
	menu    components.Menu
}

var (
	_ screen.Screen          = (*LessonsScreen)(nil)
	_ screen.KeyHintProvider = (*LessonsScreen)(nil)
)

// New creates the picker for lessons, shown in the given order.
func New(lessons []*catalog.Lesson) *LessonsScreen {
	items := make([]components.MenuItem, len(lessons))
	for i, l := range lessons {
		id := l.ID
		items[i] = components.MenuItem{
			Label:  l.DisplayTitle(),
			Detail: fmt.Sprintf("%d steps", len(l.Steps)),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PopScreenMsg{Result: StartLessonMsg{ID: id}}
				}
			},
		}
	}
	return &LessonsScreen{lessons: lessons, menu: components.NewMenu(items)}
}

func (s *LessonsScreen) Init() tea.Cmd { return nil }

func (s *LessonsScreen) Title() string { return "Lessons" }

func (s *LessonsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start lesson"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *LessonsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  Study & Learn"))
	b.WriteString("\n\n")

	if len(s.lessons) == 0 {
		b.WriteString(theme.Hint.Render("  No lessons found. Add YAML lesson files to your lessons directory."))
		return b.String()
	}

	b.WriteString(s.menu.View())

	selected := s.lessons[s.menu.Selected]
	if desc := strings.TrimSpace(selected.Description); desc != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(max(width-4, 10)).
			PaddingLeft(2).
			Foreground(theme.TextDim).
			Render(desc))
	}
	return b.String()
}
