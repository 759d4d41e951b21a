package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniquiz/aniquiz/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

type pingMsg struct{}

func TestPushPop(t *testing.T) {
	subjects := &stubScreen{title: "Subjects"}
	r := New(subjects)

	chapters := &stubScreen{title: "Chapters"}
	r.Push(chapters)
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "Chapters", r.Active().Title())
	assert.True(t, chapters.initRan)

	r.Pop()
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "Subjects", r.Active().Title())

	r.Pop()
	assert.Equal(t, 1, r.Depth(), "bottom screen stays")
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "Subjects"})
	r.Push(&stubScreen{title: "Quiz"})

	result := &stubScreen{title: "Result"}
	r.Update(ReplaceScreenMsg{Screen: result})

	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "Result", r.Active().Title())
	assert.True(t, result.initRan)
}

func TestPopToRoot(t *testing.T) {
	r := New(&stubScreen{title: "Subjects"})
	r.Push(&stubScreen{title: "Chapters"})
	r.Push(&stubScreen{title: "Sections"})

	r.Update(PopToRootMsg{})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "Subjects", r.View(80, 24))
}

func TestUpdateReachesActiveOnly(t *testing.T) {
	bottom := &stubScreen{title: "Subjects"}
	top := &stubScreen{title: "Quiz"}
	r := New(bottom)
	r.Push(top)

	r.Update(pingMsg{})
	require.Len(t, top.got, 1)
	assert.Empty(t, bottom.got)
}

func TestCommandHelpers(t *testing.T) {
	assert.IsType(t, PopScreenMsg{}, Pop()())

	s := &stubScreen{title: "Missed"}
	msg, ok := Push(s)().(PushScreenMsg)
	require.True(t, ok)
	assert.Same(t, s, msg.Screen)
}
