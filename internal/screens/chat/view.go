package chat

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studychat/internal/llm"
	"github.com/abhisek/studychat/internal/ui/components"
	"github.com/abhisek/studychat/internal/ui/theme"
)

func (s *ChatScreen) View(width, height int) string {
	var top []string
	if s.mode.Active {
		line := theme.Badge.Render(s.mode.Badge())
		if s.mode.StepName != "" {
			line += "  " + theme.Hint.Render(s.mode.StepName)
		}
		top = append(top, line)
		if s.mode.Total > 0 {
			top = append(top, components.StepProgress{Step: s.mode.Step, Total: s.mode.Total, Width: min(width-2, 48)}.View())
		}
		top = append(top, "")
	}

	var bottom []string
	switch {
	case s.errMsg != "":
		bottom = append(bottom, theme.ErrorText.Render(s.errMsg))
	case s.notice != "":
		bottom = append(bottom, theme.Notice.Render(s.notice))
	}
	s.input.SetWidth(max(width-8, 10))
	bottom = append(bottom, theme.InputBox.Width(max(width-2, 10)).Render(s.input.View()))

	topText := strings.Join(top, "\n")
	bottomText := strings.Join(bottom, "\n")
	avail := height - lipgloss.Height(bottomText)
	if topText != "" {
		avail -= lipgloss.Height(topText)
	}

	transcript := tail(s.renderTranscript(max(width-2, 10)), max(avail, 0))

	parts := make([]string, 0, 3)
	if topText != "" {
		parts = append(parts, topText)
	}
	parts = append(parts, lipgloss.NewStyle().Height(max(avail, 0)).Render(transcript), bottomText)
	return strings.Join(parts, "\n")
}

func (s *ChatScreen) renderTranscript(width int) string {
	if len(s.messages) == 0 && !s.busy {
		return theme.Hint.Render("Start chatting, or press Ctrl+L to pick a lesson.")
	}

	body := lipgloss.NewStyle().Width(width).Foreground(theme.Text)
	var b strings.Builder
	for _, m := range s.messages {
		b.WriteString(label(m.Role))
		b.WriteString("\n")
		b.WriteString(body.Render(m.Content))
		b.WriteString("\n\n")
	}
	if s.busy {
		b.WriteString(label(llm.RoleAssistant))
		b.WriteString("\n")
		if s.pending == "" {
			b.WriteString(theme.Hint.Render("thinking..."))
		} else {
			b.WriteString(body.Render(s.pending + "▍"))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func label(role llm.Role) string {
	if role == llm.RoleUser {
		return theme.UserLabel.Render("You")
	}
	return theme.TutorLabel.Render("Tutor")
}

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
