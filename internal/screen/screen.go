// Package screen defines the contract between TUI screens and the router.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studychat/internal/ui/layout"
)

// Screen is one page of the TUI.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen show a status badge in the header.
type StatusProvider interface {
	Status() string
}
