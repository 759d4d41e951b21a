package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniquiz/aniquiz/internal/auth"
	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/screens"
)

var bank = fstest.MapFS{
	"Science/Light/sections.json": {Data: []byte(`{"sections":{"textbook":[{"value":"true_false"}]}}`)},
	"Science/Light/true_false.json": {Data: []byte(`{"questions":[
		{"id":"t1","statement":"Light travels in straight lines.","answer":true},
		{"id":"t2","statement":"Light is a form of energy.","answer":true},
		{"id":"t3","statement":"Light needs a medium.","answer":true}]}`)},
	"Science/Light/short_answer.json": {Data: []byte(`{"questions":[
		{"id":"s1","question":"Why is the sky blue?","answer":"Scattering of light"}]}`)},
}

type fixedEvaluator struct{ calls int }

func (e *fixedEvaluator) Evaluate(context.Context, evaluation.Request) (evaluation.Result, error) {
	e.calls++
	return evaluation.Result{
		Kind:   evaluation.KindAnswer,
		Answer: &evaluation.AnswerJudgment{Score: "Good", KeyPointsCovered: "60%", Feedback: "Name the scattering."},
	}, nil
}

func quizEnv(eval evaluation.Evaluator) (*screens.Env, *ledger.Store) {
	l := ledger.New(ledger.NewMemoryBackend(), "asha@example.com")
	return &screens.Env{
		Repo:      content.NewBank(content.FSFetcher{FS: bank}, zerolog.Nop()),
		Ledger:    l,
		Identity:  auth.Identity{Email: "asha@example.com", Role: auth.RoleStudent},
		Evaluator: eval,
		BatchSize: 2,
		Logger:    zerolog.Nop(),
	}, l
}

func runLineQuiz(t *testing.T, env *screens.Env, typ, input string) string {
	t.Helper()
	var out bytes.Buffer
	lq := newLineQuiz(env, strings.NewReader(input), &out)
	require.NoError(t, lq.Run(context.Background(), "Science", "Light", typ))
	return out.String()
}

func TestLineQuiz_BatchesAndLedger(t *testing.T) {
	env, l := quizEnv(nil)
	out := runLineQuiz(t, env, "true_false", "1\n1\ny\n2\n")

	assert.Contains(t, out, "Science › Light › True or False (3 questions)")
	assert.Contains(t, out, "── Question 1/3 ──")
	assert.Contains(t, out, "── Question 3/3 ──")
	assert.Contains(t, out, "Correct: 2  Answered: 2 of 2  Score: 100%")
	assert.Contains(t, out, "Correct: 0  Answered: 1 of 1  Score: 0%")

	missed, err := l.ListForChapter(context.Background(), "Science", "Light")
	require.NoError(t, err)
	var n int
	for _, entries := range missed {
		n += len(entries)
	}
	assert.Equal(t, 1, n)
}

func TestLineQuiz_StopsWhenDeclined(t *testing.T) {
	env, _ := quizEnv(nil)
	out := runLineQuiz(t, env, "true_false", "1\n1\nn\n")
	assert.NotContains(t, out, "── Question 3/3 ──")
}

func TestLineQuiz_InputClosed(t *testing.T) {
	env, _ := quizEnv(nil)
	out := runLineQuiz(t, env, "true_false", "1\n")
	assert.Contains(t, out, "(input closed)")
}

func TestLineQuiz_WrittenAnswerFeedback(t *testing.T) {
	eval := &fixedEvaluator{}
	env, _ := quizEnv(eval)
	out := runLineQuiz(t, env, "short_answer", "Because of scattering\n")

	assert.Equal(t, 1, eval.calls)
	assert.Contains(t, out, "Key points covered: 60%")
	assert.Contains(t, out, "💬 Name the scattering.")
}

func TestLineQuiz_EmptySection(t *testing.T) {
	env, _ := quizEnv(nil)
	env.Repo = content.NewBank(content.FSFetcher{FS: fstest.MapFS{
		"Science/Light/mcq.json": {Data: []byte(`{"questions":[]}`)},
	}}, zerolog.Nop())
	out := runLineQuiz(t, env, "mcq", "")
	assert.Contains(t, out, "No questions in this section yet.")
}

func TestPickOption(t *testing.T) {
	opts := []string{"Convex", "Concave"}
	tests := []struct {
		in, want string
	}{
		{"1", "Convex"},
		{"2", "Concave"},
		{"3", "3"},
		{"Concave", "Concave"},
	}
	for _, tt := range tests {
		if got := pickOption(tt.in, opts); got != tt.want {
			t.Errorf("pickOption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLineQuiz_TextbookSectionKeepsOrder(t *testing.T) {
	env, _ := quizEnv(nil)
	env.BatchSize = 3
	out := runLineQuiz(t, env, "true_false", "1\n1\n1\n")

	first := strings.Index(out, "Light travels in straight lines.")
	second := strings.Index(out, "Light is a form of energy.")
	third := strings.Index(out, "Light needs a medium.")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}
