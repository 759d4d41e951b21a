// Package missed shows the learner's missed-question ledger grouped by
// section, with per-entry removal and a confirmed clear-all.
package missed

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screen"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/ui/layout"
	"github.com/aniquiz/aniquiz/internal/ui/theme"
)

// Group is one section's missed entries.
type Group struct {
	Section ledger.Section
	Entries []ledger.Entry
}

// Title is "Subject › Chapter › Type".
func (g Group) Title() string {
	return g.Section.Subject + " › " + g.Section.Chapter + " › " + g.Section.Type.Label()
}

// Groups orders a ledger listing by subject, chapter and type. Malformed
// keys are skipped.
func Groups(all map[string][]ledger.Entry) []Group {
	out := make([]Group, 0, len(all))
	for key, entries := range all {
		sec, ok := ledger.ParseKey(key)
		if !ok || len(entries) == 0 {
			continue
		}
		out = append(out, Group{Section: sec, Entries: entries})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Section, out[j].Section
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Chapter != b.Chapter {
			return a.Chapter < b.Chapter
		}
		return a.Type < b.Type
	})
	return out
}

type missedLoadedMsg struct {
	owner  *MissedScreen
	Groups []Group
	Err    error
}

// row addresses one entry of the flattened list.
type row struct {
	group, entry int
}

// MissedScreen lists every missed question of the current identity.
type MissedScreen struct {
	env      *screens.Env
	groups   []Group
	rows     []row
	selected int
	expanded map[string]bool
	loaded   bool
	confirm  bool
	errMsg   string
}

var _ screen.Screen = (*MissedScreen)(nil)
var _ screen.KeyHintProvider = (*MissedScreen)(nil)
var _ screen.InputCapturer = (*MissedScreen)(nil)

func New(env *screens.Env) *MissedScreen {
	return &MissedScreen{env: env, expanded: make(map[string]bool)}
}

func (s *MissedScreen) Init() tea.Cmd {
	if s.env.Ledger == nil {
		s.loaded = true
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		all, err := s.env.Ledger.ListAll(ctx)
		if err != nil {
			return missedLoadedMsg{owner: s, Err: err}
		}
		return missedLoadedMsg{owner: s, Groups: Groups(all)}
	}
}

func (s *MissedScreen) Title() string { return "Missed Questions" }

func (s *MissedScreen) CapturingInput() bool { return s.confirm }

func (s *MissedScreen) KeyHints() []layout.KeyHint {
	if s.confirm {
		return []layout.KeyHint{
			{Key: "y", Description: "Clear everything"},
			{Key: "n", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Show answer"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "d", Description: "Remove"},
		{Key: "C", Description: "Clear all"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *MissedScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case missedLoadedMsg:
		if msg.owner != s {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.setGroups(msg.Groups)
		return s, nil

	case tea.KeyMsg:
		if s.confirm {
			switch msg.String() {
			case "y", "Y":
				s.confirm = false
				s.clear()
			case "n", "N", "esc":
				s.confirm = false
			}
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.rows)-1 {
				s.selected++
			}
		case "enter":
			if e, ok := s.current(); ok {
				s.expanded[e.QuestionID] = !s.expanded[e.QuestionID]
			}
		case "d":
			s.removeCurrent()
		case "C":
			if len(s.rows) > 0 {
				s.confirm = true
			}
		}
	}
	return s, nil
}

func (s *MissedScreen) setGroups(groups []Group) {
	s.groups = groups
	s.rows = s.rows[:0]
	for gi, g := range groups {
		for ei := range g.Entries {
			s.rows = append(s.rows, row{group: gi, entry: ei})
		}
	}
	s.selected = min(s.selected, max(len(s.rows)-1, 0))
}

func (s *MissedScreen) current() (ledger.Entry, bool) {
	if s.selected < 0 || s.selected >= len(s.rows) {
		return ledger.Entry{}, false
	}
	r := s.rows[s.selected]
	return s.groups[r.group].Entries[r.entry], true
}

func (s *MissedScreen) removeCurrent() {
	if s.selected >= len(s.rows) || s.env.Ledger == nil {
		return
	}
	r := s.rows[s.selected]
	g := s.groups[r.group]
	e := g.Entries[r.entry]

	ctx, cancel := s.env.Context()
	defer cancel()
	if err := s.env.Ledger.Remove(ctx, g.Section, e.QuestionID); err != nil {
		s.errMsg = err.Error()
		return
	}

	groups := make([]Group, 0, len(s.groups))
	for gi, grp := range s.groups {
		if gi == r.group {
			grp.Entries = append(append([]ledger.Entry(nil), grp.Entries[:r.entry]...), grp.Entries[r.entry+1:]...)
			if len(grp.Entries) == 0 {
				continue
			}
		}
		groups = append(groups, grp)
	}
	s.setGroups(groups)
}

func (s *MissedScreen) clear() {
	if s.env.Ledger == nil {
		return
	}
	ctx, cancel := s.env.Context()
	defer cancel()
	if err := s.env.Ledger.Clear(ctx); err != nil {
		s.errMsg = err.Error()
		return
	}
	s.setGroups(nil)
}

func (s *MissedScreen) View(width, height int) string {
	centered := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}
	if s.errMsg != "" {
		return centered(lipgloss.NewStyle().Foreground(theme.Error), fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return centered(lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading missed questions...")
	}
	if !s.env.Identity.RecordsMisses() {
		return centered(theme.Hint, "\n\n  Missed questions are only kept for students.")
	}
	if len(s.rows) == 0 {
		return centered(theme.Hint, "\n\n  No missed questions. Great job! 🎉")
	}
	if s.confirm {
		return centered(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
			fmt.Sprintf("\n\n\nClear all %d missed questions?\n\ny / n", len(s.rows)))
	}

	w := min(layout.TextWidth(width), 80)
	var lines []string
	selLine := 0
	for i, r := range s.rows {
		g := s.groups[r.group]
		if r.entry == 0 {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, theme.SectionHeading.Render(
				fmt.Sprintf("%s (%d)", g.Title(), len(g.Entries))))
		}
		e := g.Entries[r.entry]
		prefix, style := "    ", theme.Unselected
		if i == s.selected {
			prefix, style = "  ▸ ", theme.Selected
			selLine = len(lines)
		}
		lines = append(lines, style.Width(w).Render(prefix+e.Prompt))
		if s.expanded[e.QuestionID] {
			detail := "Answer: " + e.CorrectAnswer
			if e.Explanation != "" {
				detail += "\n" + e.Explanation
			}
			lines = append(lines, theme.AnswerCard.Width(w-4).MarginLeft(4).Render(detail))
		}
	}

	header := fmt.Sprintf("%d missed in %d sections", len(s.rows), len(s.groups))
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centered(theme.Subtitle, header))
	b.WriteString("\n\n")
	start, end := layout.Window(len(lines), selLine, max(height-4, 1))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(w).Render(strings.Join(lines[start:end], "\n"))))
	return b.String()
}
