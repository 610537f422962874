package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studychat/internal/ui/theme"
)

// StepProgress shows how far through a lesson the user is.
type StepProgress struct {
	Step  int // 1-based
	Total int
	Width int
}

// View renders "Step n/total" followed by a bar.
func (p StepProgress) View() string {
	if p.Total <= 0 {
		return ""
	}
	label := fmt.Sprintf("Step %d/%d", p.Step, p.Total)
	result := lipgloss.NewStyle().Foreground(theme.Text).Render(label) + "  "

	barWidth := max(p.Width-lipgloss.Width(result), 4)
	filled := min(max(barWidth*(p.Step-1)/p.Total, 0), barWidth)

	return result +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
}
