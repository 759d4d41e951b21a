package quiz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniquiz/aniquiz/internal/auth"
	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/screens/summary"
	"github.com/aniquiz/aniquiz/internal/session"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func mcqBank(n int) fstest.MapFS {
	var qs []string
	for i := 1; i <= n; i++ {
		qs = append(qs, fmt.Sprintf(
			`{"id":"m%d","question":"Question %d?","options":["right %d","wrong %d"],"correct_answer":"right %d"}`,
			i, i, i, i, i))
	}
	return fstest.MapFS{
		"Science/Light/mcq.json": {Data: []byte(`{"questions":[` + strings.Join(qs, ",") + `]}`)},
		"Science/Light/short_answer.json": {Data: []byte(`{"questions":[
			{"id":"s1","question":"Why is the sky blue?","answer":"Scattering of light"}]}`)},
	}
}

type stubEvaluator struct {
	calls int
}

func (e *stubEvaluator) Evaluate(_ context.Context, req evaluation.Request) (evaluation.Result, error) {
	e.calls++
	return evaluation.Result{
		Kind:   evaluation.KindAnswer,
		Answer: &evaluation.AnswerJudgment{Score: "Good", KeyPointsCovered: "70%", Feedback: "Mention Rayleigh scattering."},
	}, nil
}

type fixture struct {
	env    *screens.Env
	ledger *ledger.Store
}

func newFixture(fs fstest.MapFS) fixture {
	l := ledger.New(ledger.NewMemoryBackend(), "asha@example.com")
	return fixture{
		env: &screens.Env{
			Repo:      content.NewBank(content.FSFetcher{FS: fs}, zerolog.Nop()),
			Ledger:    l,
			Identity:  auth.Identity{Email: "asha@example.com", Name: "Asha", Role: auth.RoleStudent},
			Evaluator: &stubEvaluator{},
			BatchSize: 10,
			Logger:    zerolog.Nop(),
		},
		ledger: l,
	}
}

func newQuiz(f fixture, typ string) *QuizScreen {
	return New(f.env,
		content.Subject{Name: "Science"},
		content.Chapter{Name: "Light", HasQuestions: true},
		content.QuestionTypeRef{Value: typ})
}

// loaded runs the content request synchronously.
func loaded(t *testing.T, s *QuizScreen) *QuizScreen {
	t.Helper()
	s.Update(s.load()())
	require.Equal(t, session.PhaseActive, s.sess.Phase())
	return s
}

// choose selects the right or wrong option of the current question.
func choose(t *testing.T, s *QuizScreen, right bool) {
	t.Helper()
	q, ok := s.sess.CurrentQuestion()
	require.True(t, ok)
	i := slices.Index(q.Options(), q.CorrectAnswer)
	require.GreaterOrEqual(t, i, 0)
	if !right {
		i = 1 - i
	}
	s.Update(keyPress(rune('1' + i)))
}

func TestQuiz_LoadShowsFirstQuestion(t *testing.T) {
	s := loaded(t, newQuiz(newFixture(mcqBank(12)), "mcq"))

	assert.True(t, s.sess.OneByOne())
	assert.Len(t, s.sess.Batch(), 10)
	assert.Equal(t, "Multiple Choice", s.Title())

	view := s.View(100, 40)
	assert.Contains(t, view, "Q1.")
	assert.Contains(t, view, "Questions 1-10 of 12")
}

func TestQuiz_InOrderRefKeepsSourceOrder(t *testing.T) {
	s := New(newFixture(mcqBank(12)).env,
		content.Subject{Name: "Science"},
		content.Chapter{Name: "Light", HasQuestions: true},
		content.QuestionTypeRef{Value: "mcq", InOrder: true})
	loaded(t, s)

	var ids []string
	for _, q := range s.sess.Batch() {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8", "m9", "m10"}, ids)
}

func TestQuiz_NextRequiresAnswer(t *testing.T) {
	s := loaded(t, newQuiz(newFixture(mcqBank(3)), "mcq"))

	s.Update(specialKey(tea.KeyTab))
	assert.Equal(t, 0, s.sess.Cursor())
	assert.Contains(t, s.notice, "Answer this question first")

	choose(t, s, true)
	s.Update(specialKey(tea.KeyTab))
	assert.Equal(t, 1, s.sess.Cursor())
	assert.Empty(t, s.notice)

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, 0, s.sess.Cursor())
}

func TestQuiz_RevealUnblocksNext(t *testing.T) {
	s := loaded(t, newQuiz(newFixture(mcqBank(3)), "mcq"))

	s.Update(ctrl('r'))
	assert.True(t, s.sess.CurrentRevealed())
	assert.Contains(t, s.View(100, 40), "Correct answer:")

	s.Update(specialKey(tea.KeyTab))
	assert.Equal(t, 1, s.sess.Cursor())
}

func TestQuiz_TenMCQFinish(t *testing.T) {
	f := newFixture(mcqBank(10))
	s := loaded(t, newQuiz(f, "mcq"))

	for i := range 10 {
		choose(t, s, i < 8)
		if i < 9 {
			s.Update(specialKey(tea.KeyTab))
		}
	}
	require.True(t, s.sess.AtLast())

	_, cmd := s.Update(ctrl('f'))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	_, isSummary := push.Screen.(*summary.SummaryScreen)
	assert.True(t, isSummary)

	assert.Equal(t, session.PhaseRevealed, s.sess.Phase())
	assert.Equal(t, session.Score{Correct: 8, Answered: 10, Total: 10}, s.sess.Score())

	all, err := f.ledger.ListAll(context.Background())
	require.NoError(t, err)
	key := ledger.Section{Subject: "Science", Chapter: "Light", Type: "mcq"}.Key()
	assert.Len(t, all[key], 2)
}

func TestQuiz_TryMoreAfterReveal(t *testing.T) {
	s := loaded(t, newQuiz(newFixture(mcqBank(12)), "mcq"))
	s.Update(ctrl('l'))
	require.False(t, s.sess.OneByOne())

	for i := range 10 {
		q := s.sess.Batch()[i]
		s.sess.SetAnswer(q.ID, q.CorrectAnswer)
	}
	_, cmd := s.Update(ctrl('s'))
	require.NotNil(t, cmd)
	require.True(t, s.sess.CanTryMore())

	s.Update(tryMoreMsg{owner: s.sess})
	assert.Equal(t, session.PhaseActive, s.sess.Phase())
	assert.Equal(t, 10, s.sess.Offset())
	assert.Len(t, s.sess.Batch(), 2)
}

func TestQuiz_TryMoreForOtherSessionIgnored(t *testing.T) {
	s := loaded(t, newQuiz(newFixture(mcqBank(12)), "mcq"))
	s.sess.ShowAllAnswers()

	s.Update(tryMoreMsg{owner: session.New(session.Config{})})
	assert.Equal(t, session.PhaseStudy, s.sess.Phase())
	assert.Equal(t, 0, s.sess.Offset())
}

func TestQuiz_StaleLoadDiscarded(t *testing.T) {
	s := newQuiz(newFixture(mcqBank(12)), "mcq")
	first := s.load()
	second := s.load()

	s.Update(first())
	assert.Equal(t, session.PhaseLoading, s.sess.Phase())

	s.Update(second())
	assert.Equal(t, session.PhaseActive, s.sess.Phase())
}

func TestQuiz_LoadFailure(t *testing.T) {
	s := newQuiz(newFixture(mcqBank(1)), "mcq")
	cmd := s.load()
	msg := cmd().(questionsLoadedMsg)
	msg.Raws, msg.Err = nil, errors.New("offline")
	s.Update(msg)

	assert.Equal(t, session.PhaseEmpty, s.sess.Phase())
	assert.Contains(t, s.View(100, 40), "Could not load questions")

	_, retry := s.Update(keyPress('r'))
	assert.NotNil(t, retry)
	assert.Equal(t, session.PhaseLoading, s.sess.Phase())
}

func TestQuiz_TypedAnswerAndFeedback(t *testing.T) {
	f := newFixture(mcqBank(1))
	s := loaded(t, newQuiz(f, "short_answer"))

	for _, r := range "Rayleigh" {
		s.Update(keyPress(r))
	}
	q, _ := s.sess.CurrentQuestion()
	assert.Equal(t, "Rayleigh", s.sess.Answer(q.ID).Text)

	_, cmd := s.Update(ctrl('e'))
	require.NotNil(t, cmd)
	assert.True(t, s.sess.Evaluating(q.ID))

	s.Update(cmd())
	res, ok := s.sess.Evaluation(q.ID)
	require.True(t, ok)
	assert.Equal(t, "Mention Rayleigh scattering.", res.Feedback())
	assert.Contains(t, s.View(100, 40), "Key points covered: 70%")
	assert.Equal(t, 1, f.env.Evaluator.(*stubEvaluator).calls)
}

func TestQuiz_FeedbackUnavailableForChoices(t *testing.T) {
	s := loaded(t, newQuiz(newFixture(mcqBank(1)), "mcq"))
	choose(t, s, true)

	_, cmd := s.Update(ctrl('e'))
	assert.Nil(t, cmd)
	assert.Contains(t, s.notice, "written answers")
}

func TestQuiz_EscConfirmsWhenAnswered(t *testing.T) {
	s := loaded(t, newQuiz(newFixture(mcqBank(3)), "mcq"))

	_, cmd := s.Update(specialKey(tea.KeyEscape))
	assert.IsType(t, router.PopScreenMsg{}, cmd(), "nothing answered leaves at once")

	s = loaded(t, newQuiz(newFixture(mcqBank(3)), "mcq"))
	choose(t, s, true)
	_, cmd = s.Update(specialKey(tea.KeyEscape))
	assert.Nil(t, cmd)
	assert.True(t, s.confirmLeave)
	assert.True(t, s.CapturingInput())

	s.Update(keyPress('n'))
	assert.False(t, s.confirmLeave)

	s.Update(specialKey(tea.KeyEscape))
	_, cmd = s.Update(keyPress('y'))
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
	assert.Equal(t, session.PhaseEmpty, s.sess.Phase())
}

func TestQuiz_ShowAllAnswersIsStudy(t *testing.T) {
	f := newFixture(mcqBank(3))
	s := loaded(t, newQuiz(f, "mcq"))
	choose(t, s, false)

	_, cmd := s.Update(ctrl('a'))
	require.NotNil(t, cmd)
	assert.Equal(t, session.PhaseStudy, s.sess.Phase())

	all, err := f.ledger.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "study mode never touches the ledger")
}
