// Package summary shows the outcome of a revealed batch: the result banner,
// the score and a verdict for every question.
package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aniquiz/aniquiz/internal/review"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screen"
	"github.com/aniquiz/aniquiz/internal/session"
	"github.com/aniquiz/aniquiz/internal/ui/layout"
	"github.com/aniquiz/aniquiz/internal/ui/theme"
)

// Row is one question of the batch.
type Row struct {
	Number  int
	Prompt  string
	Answer  string
	Verdict review.Verdict
}

// Result is everything the screen displays.
type Result struct {
	Section string
	Message session.Message
	Score   session.Score
	Rows    []Row

	// TryMore is delivered to the screen below after popping when the
	// learner asks for the next batch. Nil hides the option.
	TryMore tea.Msg
}

// SummaryScreen displays a batch result.
type SummaryScreen struct {
	result   Result
	selected int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

func New(result Result) *SummaryScreen {
	return &SummaryScreen{result: result}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	if s.result.Message.Study {
		return "Study Mode"
	}
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Review answers"},
		{Key: "↑↓", Description: "Scroll"},
	}
	if s.result.TryMore != nil {
		hints = append(hints, layout.KeyHint{Key: "t", Description: "Try more"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter", "esc":
		return s, router.Pop()
	case "t":
		if s.result.TryMore != nil {
			next := s.result.TryMore
			return s, tea.Sequence(router.Pop(), func() tea.Msg { return next })
		}
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.result.Rows)-1 {
			s.selected++
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(bannerColor(r.Message)).Bold(true),
		r.Message.Icon+"  "+r.Message.Title))
	b.WriteString("\n\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text),
		lipgloss.NewStyle().Width(layout.TextWidth(width)).Render(r.Message.Text)))
	b.WriteString("\n\n")

	if !r.Message.Study {
		stats := fmt.Sprintf("Correct: %d        Answered: %d of %d        Score: %.0f%%",
			r.Score.Correct, r.Score.Answered, r.Score.Total, r.Score.Percent())
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), stats))
		b.WriteString("\n\n")
	}

	if r.Section != "" {
		b.WriteString(center(theme.SectionHeading, r.Section))
		b.WriteString("\n")
	}
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	rows := make([]string, len(r.Rows))
	w := min(layout.TextWidth(width), 72)
	for i, row := range r.Rows {
		rows[i] = renderRow(row, i == s.selected, w)
	}
	used := lipgloss.Height(b.String())
	start, end := layout.Window(len(rows), s.selected, max(height-used-1, 1))
	for _, line := range rows[start:end] {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(row Row, selected bool, width int) string {
	prompt := truncate(strings.Join(strings.Fields(row.Prompt), " "), width-14)
	mark, style := "·", lipgloss.NewStyle().Foreground(theme.TextDim)
	switch row.Verdict.Kind {
	case review.Correct:
		mark, style = "✓", lipgloss.NewStyle().Foreground(theme.Success)
	case review.Incorrect:
		mark, style = "✗", lipgloss.NewStyle().Foreground(theme.Error)
	case review.Ungraded:
		mark, style = "?", lipgloss.NewStyle().Foreground(theme.Accent)
	}
	prefix := "  "
	if selected {
		prefix = "▸ "
		style = style.Bold(true)
	}
	line := fmt.Sprintf("%s%s %2d. %s", prefix, mark, row.Number, prompt)
	return lipgloss.NewStyle().Width(width).Render(style.Render(line))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func bannerColor(m session.Message) color.Color {
	if m.Study {
		return theme.Study
	}
	switch m.Tier {
	case session.TierPerfect, session.TierExcellent:
		return theme.Success
	case session.TierGood:
		return theme.Secondary
	case session.TierAverage:
		return theme.Accent
	default:
		return theme.Error
	}
}
