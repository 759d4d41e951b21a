package missed

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniquiz/aniquiz/internal/auth"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/question"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screens"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

var (
	lightMCQ  = ledger.Section{Subject: "Science", Chapter: "Light", Type: question.TypeMCQ}
	lightFill = ledger.Section{Subject: "Science", Chapter: "Light", Type: question.TypeFillInBlanks}
	mathsTF   = ledger.Section{Subject: "Mathematics", Chapter: "Sets", Type: question.TypeTrueFalse}
)

func seeded(t *testing.T) (*MissedScreen, *ledger.Store) {
	t.Helper()
	ctx := context.Background()
	l := ledger.New(ledger.NewMemoryBackend(), "asha@example.com")
	require.NoError(t, l.Add(ctx, lightMCQ, question.Question{ID: "m1", Type: question.TypeMCQ, Prompt: "Speed of light?", CorrectAnswer: "3e8 m/s"}))
	require.NoError(t, l.Add(ctx, lightMCQ, question.Question{ID: "m2", Type: question.TypeMCQ, Prompt: "Unit of power?", CorrectAnswer: "Dioptre"}))
	require.NoError(t, l.Add(ctx, lightFill, question.Question{ID: "f1", Type: question.TypeFillInBlanks, Prompt: "Light travels in ___ lines.", CorrectAnswer: "straight"}))
	require.NoError(t, l.Add(ctx, mathsTF, question.Question{ID: "t1", Type: question.TypeTrueFalse, Prompt: "Empty set is finite.", CorrectAnswer: "True"}))

	env := &screens.Env{
		Ledger:   l,
		Identity: auth.Identity{Email: "asha@example.com", Role: auth.RoleStudent},
		Logger:   zerolog.Nop(),
	}
	s := New(env)
	s.Update(s.Init()())
	return s, l
}

func TestGroups_Order(t *testing.T) {
	all := map[string][]ledger.Entry{
		lightMCQ.Key():  {{QuestionID: "m1"}},
		mathsTF.Key():   {{QuestionID: "t1"}},
		lightFill.Key(): {{QuestionID: "f1"}},
		"broken":        {{QuestionID: "x"}},
	}
	all[lightMCQ.Key()+"-empty"] = nil
	groups := Groups(all)
	require.Len(t, groups, 3)
	assert.Equal(t, mathsTF, groups[0].Section)
	assert.Equal(t, lightFill, groups[1].Section)
	assert.Equal(t, lightMCQ, groups[2].Section)
	assert.Equal(t, "Science › Light › Multiple Choice", groups[2].Title())
}

func TestMissedScreen_ListsEntries(t *testing.T) {
	s, _ := seeded(t)
	assert.Len(t, s.rows, 4)

	view := s.View(100, 40)
	assert.Contains(t, view, "4 missed in 3 sections")
	assert.Contains(t, view, "Speed of light?")
	assert.NotContains(t, view, "Dioptre")

	for range 3 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(100, 40), "Dioptre")
}

func TestMissedScreen_Remove(t *testing.T) {
	s, l := seeded(t)
	// First row is the Mathematics entry.
	s.Update(keyPress('d'))
	assert.Len(t, s.rows, 3)
	assert.Len(t, s.groups, 2)

	all, err := l.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, all, mathsTF.Key())
}

func TestMissedScreen_ClearNeedsConfirm(t *testing.T) {
	s, l := seeded(t)

	s.Update(keyPress('C'))
	assert.True(t, s.CapturingInput())
	s.Update(keyPress('n'))
	assert.Len(t, s.rows, 4)

	s.Update(keyPress('C'))
	s.Update(keyPress('y'))
	assert.Empty(t, s.rows)
	assert.Contains(t, s.View(100, 40), "No missed questions")

	all, err := l.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMissedScreen_EscPops(t *testing.T) {
	s, _ := seeded(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}
