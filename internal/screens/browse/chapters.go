package browse

import (
	tea "charm.land/bubbletea/v2"

	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screen"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/ui/components"
	"github.com/aniquiz/aniquiz/internal/ui/layout"
)

// ChaptersScreen lists one subject's chapters. Chapters without questions
// are shown but cannot be opened.
type ChaptersScreen struct {
	env      *screens.Env
	subject  content.Subject
	chapters []content.Chapter
	menu     components.Menu
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ChaptersScreen)(nil)
var _ screen.KeyHintProvider = (*ChaptersScreen)(nil)

func NewChapters(env *screens.Env, subject content.Subject) *ChaptersScreen {
	return &ChaptersScreen{env: env, subject: subject}
}

func (s *ChaptersScreen) Init() tea.Cmd {
	s.loaded = false
	s.errMsg = ""
	key := s.subject.Key()
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		chapters, err := s.env.Repo.ListChapters(ctx, key)
		return chaptersLoadedMsg{owner: s, Chapters: chapters, Err: err}
	}
}

func (s *ChaptersScreen) Title() string { return s.subject.Name }

func (s *ChaptersScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ChaptersScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chaptersLoadedMsg:
		if msg.owner != s {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.env.Logger.Warn().Err(msg.Err).Str("subject", s.subject.Name).Msg("list chapters failed")
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.chapters = msg.Chapters
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

func (s *ChaptersScreen) items() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(s.chapters))
	for _, ch := range s.chapters {
		ch := ch
		item := components.MenuItem{Label: ch.Name}
		if !ch.HasQuestions {
			item.Disabled = true
			item.Hint = "coming soon"
		} else {
			item.Action = func() tea.Cmd {
				return router.Push(NewSections(s.env, s.subject, ch))
			}
		}
		items = append(items, item)
	}
	return items
}

func (s *ChaptersScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case !s.loaded:
		return renderLoading(width, "chapters")
	case len(s.chapters) == 0:
		return renderEmpty(width, "No chapters for this subject yet.")
	}
	return renderMenu(width, height, s.subject.DisplayIcon()+"  "+s.subject.Name, "Pick a chapter", s.menu)
}
