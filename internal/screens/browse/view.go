package browse

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aniquiz/aniquiz/internal/ui/components"
	"github.com/aniquiz/aniquiz/internal/ui/theme"
)

func renderLoading(width int, what string) string {
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render(fmt.Sprintf("\n\n  Loading %s...", what))
}

func renderError(width int, err string) string {
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Error).
		Render(fmt.Sprintf("\n\nCould not load: %s\n\nPress r to retry", err))
}

func renderEmpty(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
		Render("\n\n  " + text)
}

// renderMenu draws a heading and the menu, leaving room for both in height.
func renderMenu(width, height int, heading, sub string, menu components.Menu) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Title.Render(heading)))
	b.WriteString("\n")
	if sub != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Subtitle.Render(sub)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	used := lipgloss.Height(b.String())
	list := menu.View(height - used)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(min(width-4, 64)).Render(list)))
	return b.String()
}
