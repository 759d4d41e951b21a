package browse

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniquiz/aniquiz/internal/auth"
	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/question"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/screens/missed"
	"github.com/aniquiz/aniquiz/internal/screens/quiz"
)

func bank() fstest.MapFS {
	return fstest.MapFS{
		"subjects.json":         {Data: []byte(`{"version":"1.0.0","subjects":[{"name":"Science","chapter_count":2},{"name":"Social Studies"}]}`)},
		"Science/chapters.json": {Data: []byte(`{"chapters":[{"name":"Light","has_questions":true},{"name":"Sound","has_questions":false}]}`)},
		"Science/Light/sections.json": {Data: []byte(`{"sections":{
			"textbook":[{"value":"textbook_qa","count":4}],
			"exam":[{"value":"mcq","label":"MCQs","count":12}]}}`)},
	}
}

func testEnv(t *testing.T) *screens.Env {
	t.Helper()
	l := ledger.New(ledger.NewMemoryBackend(), "asha@example.com")
	sec := ledger.Section{Subject: "Science", Chapter: "Light", Type: question.TypeMCQ}
	require.NoError(t, l.Add(context.Background(), sec, question.Question{ID: "m1", Type: question.TypeMCQ, Prompt: "Speed?"}))
	return &screens.Env{
		Repo:     content.NewBank(content.FSFetcher{FS: bank()}, zerolog.Nop()),
		Ledger:   l,
		Identity: auth.Identity{Role: auth.RoleStudent},
		Logger:   zerolog.Nop(),
	}
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }
func down() tea.KeyPressMsg  { return tea.KeyPressMsg{Code: tea.KeyDown} }

func pushed(t *testing.T, cmd tea.Cmd) any {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	return msg.Screen
}

func TestSubjects_OpenChapters(t *testing.T) {
	s := NewSubjects(testEnv(t))
	s.Update(s.Init()())

	view := s.View(100, 30)
	assert.Contains(t, view, "Science")
	assert.Contains(t, view, "2 chapters")
	assert.Contains(t, view, "Social Studies")

	_, cmd := s.Update(enter())
	ch, ok := pushed(t, cmd).(*ChaptersScreen)
	require.True(t, ok)
	assert.Equal(t, "Science", ch.Title())
}

func TestSubjects_MissedShortcut(t *testing.T) {
	s := NewSubjects(testEnv(t))
	s.Update(s.Init()())

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'm', Text: "m"})
	_, ok := pushed(t, cmd).(*missed.MissedScreen)
	assert.True(t, ok)
}

func TestSubjects_ErrorAndRetry(t *testing.T) {
	s := NewSubjects(testEnv(t))
	s.Init()
	s.Update(subjectsLoadedMsg{owner: s, Err: errors.New("offline")})
	assert.Contains(t, s.View(100, 30), "Press r to retry")

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	require.NotNil(t, cmd)
	assert.Contains(t, s.View(100, 30), "Loading subjects")
}

func TestSubjects_IgnoresOtherScreensResults(t *testing.T) {
	s := NewSubjects(testEnv(t))
	other := NewSubjects(testEnv(t))
	s.Update(subjectsLoadedMsg{owner: other, Subjects: []content.Subject{{Name: "Stale"}}})
	assert.False(t, s.loaded)
}

func TestChapters_DisabledWithoutQuestions(t *testing.T) {
	env := testEnv(t)
	c := NewChapters(env, content.Subject{Name: "Science"})
	c.Update(c.Init()())

	assert.Contains(t, c.View(100, 30), "coming soon")

	// Sound is disabled, so down stays on Light.
	c.Update(down())
	_, cmd := c.Update(enter())
	sec, ok := pushed(t, cmd).(*SectionsScreen)
	require.True(t, ok)
	assert.Equal(t, "Light", sec.Title())
}

func TestSections_GroupsAndMissedCounts(t *testing.T) {
	env := testEnv(t)
	s := NewSections(env, content.Subject{Name: "Science"}, content.Chapter{Name: "Light", HasQuestions: true})
	s.Update(s.Init()())

	view := s.View(100, 30)
	assert.Contains(t, view, "Textbook")
	assert.Contains(t, view, "Exam Practice")
	assert.Contains(t, view, "Textbook Q&A")
	assert.Contains(t, view, "12 questions · 1 missed")

	s.Update(down())
	_, cmd := s.Update(enter())
	q, ok := pushed(t, cmd).(*quiz.QuizScreen)
	require.True(t, ok)
	assert.Equal(t, "MCQs", q.Title())
}

func TestSections_TextbookGroupIsNotShuffled(t *testing.T) {
	env := testEnv(t)
	env.Repo = content.NewBank(content.FSFetcher{FS: fstest.MapFS{
		"Science/Light/sections.json": {Data: []byte(`{"sections":{
			"textbook":[{"value":"mcq","label":"Exercise MCQs"}],
			"exam":[{"value":"mcq","label":"Practice MCQs"}]}}`)},
	}}, zerolog.Nop())
	s := NewSections(env, content.Subject{Name: "Science"}, content.Chapter{Name: "Light", HasQuestions: true})
	s.Update(s.Init()())

	_, cmd := s.Update(enter())
	q, ok := pushed(t, cmd).(*quiz.QuizScreen)
	require.True(t, ok)
	assert.Equal(t, "Exercise MCQs", q.Title())
	assert.False(t, q.Ref().Shuffled())

	s.Update(down())
	_, cmd = s.Update(enter())
	q, ok = pushed(t, cmd).(*quiz.QuizScreen)
	require.True(t, ok)
	assert.Equal(t, "Practice MCQs", q.Title())
	assert.True(t, q.Ref().Shuffled())
}
