package browse

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/question"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screen"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/screens/quiz"
	"github.com/aniquiz/aniquiz/internal/ui/components"
	"github.com/aniquiz/aniquiz/internal/ui/layout"
)

// SectionsScreen lists a chapter's question files under their section
// headings, with the learner's missed count for each type.
type SectionsScreen struct {
	env      *screens.Env
	subject  content.Subject
	chapter  content.Chapter
	sections content.Sections
	missed   map[question.Type]int
	menu     components.Menu
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*SectionsScreen)(nil)
var _ screen.KeyHintProvider = (*SectionsScreen)(nil)

func NewSections(env *screens.Env, subject content.Subject, chapter content.Chapter) *SectionsScreen {
	return &SectionsScreen{env: env, subject: subject, chapter: chapter}
}

func (s *SectionsScreen) Init() tea.Cmd {
	s.loaded = false
	s.errMsg = ""
	subjKey, chapKey := s.subject.Key(), s.chapter.Key()
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		secs, err := s.env.Repo.ListSections(ctx, subjKey, chapKey)
		if err != nil {
			return sectionsLoadedMsg{owner: s, Err: err}
		}
		return sectionsLoadedMsg{owner: s, Sections: secs, Missed: s.missedCounts(ctx)}
	}
}

// missedCounts is best effort: a ledger failure only hides the counts.
func (s *SectionsScreen) missedCounts(ctx context.Context) map[question.Type]int {
	if s.env.Ledger == nil {
		return nil
	}
	byType, err := s.env.Ledger.ListForChapter(ctx, s.subject.Name, s.chapter.Name)
	if err != nil {
		s.env.Logger.Warn().Err(err).Msg("missed counts unavailable")
		return nil
	}
	out := make(map[question.Type]int, len(byType))
	for t, entries := range byType {
		out[t] = len(entries)
	}
	return out
}

func (s *SectionsScreen) Title() string { return s.chapter.Name }

func (s *SectionsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start quiz"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SectionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sectionsLoadedMsg:
		if msg.owner != s {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.env.Logger.Warn().Err(msg.Err).
				Str("subject", s.subject.Name).Str("chapter", s.chapter.Name).
				Msg("list sections failed")
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.sections = msg.Sections
		s.missed = msg.Missed
		s.menu = components.NewMenu(s.items())
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "r" && s.errMsg != "" {
			return s, s.Init()
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SectionsScreen) items() []components.MenuItem {
	var items []components.MenuItem
	for i, g := range s.sections.Groups() {
		if i > 0 {
			items = append(items, components.MenuItem{Heading: true})
		}
		items = append(items, components.MenuItem{Label: g.Title, Heading: true})
		for _, ref := range g.Refs {
			ref := ref
			label := ref.DisplayLabel()
			if ref.Icon != "" {
				label = ref.Icon + "  " + label
			}
			var hint string
			if ref.Count > 0 {
				hint = fmt.Sprintf("%d questions", ref.Count)
			}
			if n := s.missed[ref.Type()]; n > 0 {
				if hint != "" {
					hint += " · "
				}
				hint += fmt.Sprintf("%d missed", n)
			}
			items = append(items, components.MenuItem{
				Label: label,
				Hint:  hint,
				Action: func() tea.Cmd {
					return router.Push(quiz.New(s.env, s.subject, s.chapter, ref))
				},
			})
		}
	}
	return items
}

func (s *SectionsScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case !s.loaded:
		return renderLoading(width, "sections")
	case s.sections.Empty():
		return renderEmpty(width, "No questions in this chapter yet.")
	}
	return renderMenu(width, height, s.chapter.Name, s.subject.Name, s.menu)
}
