// Package browse implements the navigation screens: subjects, then a
// subject's chapters, then a chapter's question-type sections.
package browse

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screen"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/screens/missed"
	"github.com/aniquiz/aniquiz/internal/ui/components"
	"github.com/aniquiz/aniquiz/internal/ui/layout"
)

// SubjectsScreen is the first screen: every subject of the bank.
type SubjectsScreen struct {
	env      *screens.Env
	subjects []content.Subject
	menu     components.Menu
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*SubjectsScreen)(nil)
var _ screen.KeyHintProvider = (*SubjectsScreen)(nil)

func NewSubjects(env *screens.Env) *SubjectsScreen {
	return &SubjectsScreen{env: env}
}

func (s *SubjectsScreen) Init() tea.Cmd {
	s.loaded = false
	s.errMsg = ""
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		subjects, err := s.env.Repo.ListSubjects(ctx)
		return subjectsLoadedMsg{owner: s, Subjects: subjects, Err: err}
	}
}

func (s *SubjectsScreen) Title() string { return "Subjects" }

func (s *SubjectsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "m", Description: "Missed"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *SubjectsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case subjectsLoadedMsg:
		if msg.owner != s {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.env.Logger.Warn().Err(msg.Err).Msg("list subjects failed")
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.subjects = msg.Subjects
		s.menu = components.NewMenu(s.items())
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "m":
			return s, router.Push(missed.New(s.env))
		case "r":
			if s.errMsg != "" {
				return s, s.Init()
			}
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SubjectsScreen) items() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(s.subjects)+3)
	for _, subj := range s.subjects {
		subj := subj
		hint := ""
		if subj.ChapterCount > 0 {
			hint = fmt.Sprintf("%d chapters", subj.ChapterCount)
		}
		items = append(items, components.MenuItem{
			Label: subj.DisplayIcon() + "  " + subj.Name,
			Hint:  hint,
			Action: func() tea.Cmd {
				return router.Push(NewChapters(s.env, subj))
			},
		})
	}
	items = append(items,
		components.MenuItem{Heading: true},
		components.MenuItem{Label: "📝  Missed Questions", Action: func() tea.Cmd {
			return router.Push(missed.New(s.env))
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

func (s *SubjectsScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case !s.loaded:
		return renderLoading(width, "subjects")
	}
	sub := "Pick a subject to practise"
	if len(s.subjects) == 0 {
		sub = "No subjects published yet"
	}
	return renderMenu(width, height, "Choose a Subject", sub, s.menu)
}
