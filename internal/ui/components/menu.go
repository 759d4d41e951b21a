package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aniquiz/aniquiz/internal/ui/layout"
	"github.com/aniquiz/aniquiz/internal/ui/theme"
)

// MenuItem is one selectable row. Rows with Heading set are section
// titles and can never be selected.
type MenuItem struct {
	Label    string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
	Heading  bool
}

func (it MenuItem) selectable() bool {
	return !it.Disabled && !it.Heading
}

// Menu is a vertical list that scrolls to keep the selection visible.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first selectable item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	for i, item := range items {
		if item.selectable() {
			m.Selected = i
			break
		}
	}
	return m
}

// Empty reports whether nothing can be selected.
func (m Menu) Empty() bool { return m.Selected < 0 }

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || m.Empty() {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.Selected = -1
		m.move(1)
	case "end", "G":
		m.Selected = len(m.Items)
		m.move(-1)
	case "enter":
		item := m.Items[m.Selected]
		if item.Action != nil {
			return m, item.Action()
		}
	}
	return m, nil
}

func (m *Menu) move(step int) {
	for i := m.Selected + step; i >= 0 && i < len(m.Items); i += step {
		if m.Items[i].selectable() {
			m.Selected = i
			return
		}
	}
}

// View renders at most height rows around the selection; height <= 0
// renders everything.
func (m Menu) View(height int) string {
	start, end := layout.Window(len(m.Items), max(m.Selected, 0), height)

	var b strings.Builder
	for i := start; i < end; i++ {
		item := m.Items[i]
		var line string
		switch {
		case item.Heading:
			line = theme.SectionHeading.Render(item.Label)
		case i == m.Selected:
			line = theme.Selected.Render("  ▸ " + item.Label)
		case item.Disabled:
			line = theme.Disabled.Render("    " + item.Label)
		default:
			line = theme.Unselected.Render("    " + item.Label)
		}
		if item.Hint != "" {
			line += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Hint)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
