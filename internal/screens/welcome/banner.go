package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studychat/internal/ui/theme"
)

const bannerArt = `
 ┏━┓╺┳╸╻ ╻╺┳┓╻ ╻┏━╸╻ ╻┏━┓╺┳╸
 ┗━┓ ┃ ┃ ┃ ┃┃┗┳┛┃  ┣━┫┣━┫ ┃
 ┗━┛ ╹ ┗━┛╺┻┛ ╹ ┗━╸╹ ╹╹ ╹ ╹ `

const bannerCompact = "S T U D Y C H A T"

// RenderBanner returns the banner in the primary color, or a compact
// fallback below 40 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
