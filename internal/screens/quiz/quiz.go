// Package quiz is the screen where a section is answered: one question at
// a time or the whole batch as a list, then revealed and scored.
package quiz

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/question"
	"github.com/aniquiz/aniquiz/internal/review"
	"github.com/aniquiz/aniquiz/internal/router"
	"github.com/aniquiz/aniquiz/internal/screen"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/screens/summary"
	"github.com/aniquiz/aniquiz/internal/session"
	"github.com/aniquiz/aniquiz/internal/ui/components"
	"github.com/aniquiz/aniquiz/internal/ui/layout"
)

// evaluationTimeout bounds one request to the answer evaluator.
const evaluationTimeout = 60 * time.Second

// QuizScreen drives one session.
type QuizScreen struct {
	env     *screens.Env
	subject content.Subject
	chapter content.Chapter
	ref     content.QuestionTypeRef
	sess    *session.Session

	input   components.TextInput
	option  int // highlighted option of a choice question
	part    int // active part of a multi-part question
	listPos int // focused question in list mode

	confirmLeave bool
	notice       string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.InputCapturer = (*QuizScreen)(nil)

// New creates the quiz for one question file of a chapter.
func New(env *screens.Env, subject content.Subject, chapter content.Chapter, ref content.QuestionTypeRef) *QuizScreen {
	if env.Normalizer == nil {
		env.Normalizer = &question.Normalizer{}
	}
	return &QuizScreen{
		env:     env,
		subject: subject,
		chapter: chapter,
		ref:     ref,
		sess: session.New(session.Config{
			Ledger:    env.Ledger,
			Identity:  env.Identity,
			BatchSize: env.BatchSize,
			Logger:    env.Logger,
		}),
		input: components.NewTextInput("Type your answer...", 0),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(s.load(), s.input.Init())
}

func (s *QuizScreen) Title() string { return s.ref.DisplayLabel() }

// Session exposes the underlying state machine.
func (s *QuizScreen) Session() *session.Session { return s.sess }

// Ref is the question file this screen draws from.
func (s *QuizScreen) Ref() content.QuestionTypeRef { return s.ref }

func (s *QuizScreen) section() ledger.Section {
	return ledger.Section{Subject: s.subject.Name, Chapter: s.chapter.Name, Type: s.ref.Type()}
}

func (s *QuizScreen) load() tea.Cmd {
	token := s.sess.BeginLoad(s.section(), s.ref.Shuffled())
	owner := s.sess
	env := s.env
	subjKey, chapKey, typeKey := s.subject.Key(), s.chapter.Key(), s.ref.Value
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		raws, err := env.Repo.ListQuestions(ctx, subjKey, chapKey, typeKey)
		return questionsLoadedMsg{owner: owner, token: token, Raws: raws, Err: err}
	}
}

// CapturingInput keeps Esc inside the screen while answers are being
// entered, so leaving can be confirmed.
func (s *QuizScreen) CapturingInput() bool {
	return s.confirmLeave || s.sess.Phase() == session.PhaseActive
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmLeave {
		return []layout.KeyHint{
			{Key: "y", Description: "Leave"},
			{Key: "n", Description: "Keep answering"},
		}
	}
	switch s.sess.Phase() {
	case session.PhaseActive:
		hints := []layout.KeyHint{{Key: "Tab/⇧Tab", Description: "Next/Prev"}}
		if s.sess.OneByOne() {
			hints = append(hints, layout.KeyHint{Key: "^R", Description: "Reveal"})
			if s.sess.AtLast() {
				hints = append(hints, layout.KeyHint{Key: "^F", Description: "Finish"})
			}
		} else {
			hints = append(hints, layout.KeyHint{Key: "^S", Description: "Submit all"})
		}
		if s.canEvaluate() {
			hints = append(hints, layout.KeyHint{Key: "^E", Description: "Feedback"})
		}
		return append(hints,
			layout.KeyHint{Key: "^A", Description: "Show answers"},
			layout.KeyHint{Key: "^L", Description: "List/Single"},
			layout.KeyHint{Key: "Esc", Description: "Back"},
		)
	case session.PhaseRevealed, session.PhaseStudy:
		hints := []layout.KeyHint{
			{Key: "Tab/⇧Tab", Description: "Browse"},
			{Key: "Enter", Description: "Results"},
		}
		if s.sess.CanTryMore() {
			hints = append(hints, layout.KeyHint{Key: "t", Description: "Try more"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	case session.PhaseEmpty:
		if s.sess.LoadError() != nil {
			return []layout.KeyHint{{Key: "r", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsLoadedMsg:
		return s.handleLoaded(msg)

	case evaluatedMsg:
		if msg.owner != s.sess {
			return s, nil
		}
		if msg.Err != nil {
			s.env.Logger.Warn().Err(msg.Err).Str("question", msg.ticket.QuestionID).Msg("answer evaluation failed")
		}
		s.sess.CompleteEvaluation(msg.ticket, msg.Result)
		return s, nil

	case tryMoreMsg:
		if msg.owner != s.sess {
			return s, nil
		}
		s.tryMore()
		return s, nil

	case tea.WindowSizeMsg:
		s.input.SetWidth(max(layout.TextWidth(msg.Width)-12, 10))
		return s, nil

	case tea.KeyMsg:
		s.notice = ""
		return s.handleKey(msg)
	}

	if s.sess.Phase() == session.PhaseActive && s.textFocus() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleLoaded(msg questionsLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.owner != s.sess {
		return s, nil
	}
	if msg.Err != nil {
		s.sess.FailLoad(msg.token, msg.Err)
		return s, nil
	}
	qs := s.env.Normalizer.NormalizeAll(msg.Raws, s.ref.Type())
	if s.sess.ApplyLoad(msg.token, qs) {
		s.env.Logger.Info().
			Str("section", s.section().Key()).
			Int("questions", len(qs)).
			Msg("section loaded")
		s.listPos = 0
		s.syncFocus()
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmLeave {
		switch key {
		case "y", "Y":
			return s, s.leave()
		case "n", "N", "esc":
			s.confirmLeave = false
		}
		return s, nil
	}

	switch s.sess.Phase() {
	case session.PhaseLoading:
		if key == "esc" {
			return s, s.leave()
		}
		return s, nil

	case session.PhaseEmpty:
		switch key {
		case "esc":
			return s, s.leave()
		case "r":
			if s.sess.LoadError() != nil {
				return s, s.load()
			}
		}
		return s, nil

	case session.PhaseRevealed, session.PhaseStudy:
		return s.handleReviewKey(key)
	}

	return s.handleActiveKey(msg)
}

func (s *QuizScreen) handleReviewKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "esc":
		return s, s.leave()
	case "tab", "down":
		s.moveNext()
	case "shift+tab", "up":
		s.movePrev()
	case "enter":
		return s, router.Push(summary.New(s.result()))
	case "t":
		s.tryMore()
	case "ctrl+l":
		s.toggleList()
	case "ctrl+e":
		return s, s.evaluate()
	}
	return s, nil
}

func (s *QuizScreen) handleActiveKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		if s.sess.Score().Answered > 0 {
			s.confirmLeave = true
			return s, nil
		}
		return s, s.leave()
	case "tab":
		s.moveNext()
		return s, nil
	case "shift+tab":
		s.movePrev()
		return s, nil
	case "ctrl+r":
		if s.sess.OneByOne() {
			s.ctxDo(func(ctx context.Context) { _ = s.sess.RevealCurrent(ctx) })
		}
		return s, nil
	case "ctrl+f":
		return s, s.finish()
	case "ctrl+s":
		if !s.sess.OneByOne() {
			return s, s.submitAll()
		}
		return s, nil
	case "ctrl+a":
		s.sess.ShowAllAnswers()
		return s, router.Push(summary.New(s.result()))
	case "ctrl+l":
		s.toggleList()
		return s, nil
	case "ctrl+e":
		return s, s.evaluate()
	}

	q, ok := s.focused()
	if !ok || s.sess.IsRevealed(q.ID) {
		return s, nil
	}

	if _, opts, _ := review.Choices(q); len(opts) > 0 {
		s.handleChoiceKey(q, opts, key)
		return s, nil
	}

	parts := review.Parts(q)
	switch key {
	case "enter":
		if len(parts) > 0 && s.part < len(parts)-1 {
			s.part++
			s.syncInput(q)
			return s, nil
		}
		s.moveNext()
		return s, nil
	case "up":
		if len(parts) > 0 && s.part > 0 {
			s.part--
			s.syncInput(q)
		}
		return s, nil
	case "down":
		if len(parts) > 0 && s.part < len(parts)-1 {
			s.part++
			s.syncInput(q)
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.storeInput(q)
	return s, cmd
}

func (s *QuizScreen) handleChoiceKey(q question.Question, opts []string, key string) {
	switch key {
	case "up", "k":
		if s.option > 0 {
			s.option--
		}
	case "down", "j":
		if s.option < len(opts)-1 {
			s.option++
		}
	case "enter", "space":
		s.sess.SetAnswer(q.ID, opts[s.option])
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(opts) {
			s.option = n - 1
			s.sess.SetAnswer(q.ID, opts[s.option])
		}
	}
}

// focused is the question keys act on.
func (s *QuizScreen) focused() (question.Question, bool) {
	if s.sess.OneByOne() {
		return s.sess.CurrentQuestion()
	}
	b := s.sess.Batch()
	if s.listPos < 0 || s.listPos >= len(b) {
		return question.Question{}, false
	}
	return b[s.listPos], true
}

func (s *QuizScreen) focusIndex() int {
	if s.sess.OneByOne() {
		return s.sess.Cursor()
	}
	return s.listPos
}

// textFocus reports whether the focused question takes typed input.
func (s *QuizScreen) textFocus() bool {
	q, ok := s.focused()
	if !ok || s.sess.IsRevealed(q.ID) {
		return false
	}
	_, opts, _ := review.Choices(q)
	return len(opts) == 0
}

// syncFocus resets per-question widgets after the focus moved.
func (s *QuizScreen) syncFocus() {
	s.part = 0
	s.option = 0
	q, ok := s.focused()
	if !ok {
		s.input.Reset()
		return
	}
	if _, opts, _ := review.Choices(q); len(opts) > 0 {
		if i := slices.Index(opts, s.sess.Answer(q.ID).Text); i >= 0 {
			s.option = i
		}
	}
	s.syncInput(q)
}

func (s *QuizScreen) syncInput(q question.Question) {
	a := s.sess.Answer(q.ID)
	if len(review.Parts(q)) > 0 {
		s.input.SetValue(a.Parts[s.part])
		return
	}
	s.input.SetValue(a.Text)
}

func (s *QuizScreen) storeInput(q question.Question) {
	v := s.input.Value()
	if len(review.Parts(q)) > 0 {
		if a := s.sess.Answer(q.ID); a.Parts[s.part] != v {
			s.sess.SetSubAnswer(q.ID, s.part, v)
		}
		return
	}
	if s.sess.Answer(q.ID).Text != v {
		s.sess.SetAnswer(q.ID, v)
	}
}

func (s *QuizScreen) moveNext() {
	if !s.sess.OneByOne() {
		if s.listPos < len(s.sess.Batch())-1 {
			s.listPos++
			s.syncFocus()
		}
		return
	}
	switch err := s.sess.Next(); {
	case err == nil:
		s.syncFocus()
	case errors.Is(err, session.ErrAdvanceBlocked):
		s.notice = "🙈 Answer this question first, or press ctrl+r to reveal it."
	case errors.Is(err, session.ErrAtEnd):
		if s.sess.Phase() == session.PhaseActive {
			s.notice = "Last question. Press ctrl+f to finish and see your score."
		}
	}
}

func (s *QuizScreen) movePrev() {
	if !s.sess.OneByOne() {
		if s.listPos > 0 {
			s.listPos--
			s.syncFocus()
		}
		return
	}
	if s.sess.Previous() == nil {
		s.syncFocus()
	}
}

func (s *QuizScreen) toggleList() {
	if s.sess.OneByOne() {
		s.listPos = s.sess.Cursor()
		s.sess.SetOneByOne(false)
	} else {
		s.sess.SetOneByOne(true)
	}
	s.syncFocus()
}

func (s *QuizScreen) finish() tea.Cmd {
	if !s.sess.OneByOne() {
		return nil
	}
	var err error
	s.ctxDo(func(ctx context.Context) { _, err = s.sess.Finish(ctx) })
	if errors.Is(err, session.ErrNotAtEnd) {
		s.notice = "Finish is available on the last question."
		return nil
	}
	if err != nil {
		return nil
	}
	s.logScore()
	return router.Push(summary.New(s.result()))
}

func (s *QuizScreen) submitAll() tea.Cmd {
	s.ctxDo(func(ctx context.Context) { s.sess.RevealAll(ctx) })
	s.logScore()
	return router.Push(summary.New(s.result()))
}

func (s *QuizScreen) tryMore() {
	if err := s.sess.TryMore(); err != nil {
		if !s.sess.AllAnswered() {
			s.notice = "Answer every question to unlock more."
		} else {
			s.notice = "That was the last batch of this section."
		}
		return
	}
	s.listPos = 0
	s.syncFocus()
}

func (s *QuizScreen) leave() tea.Cmd {
	s.sess.Reset()
	return router.Pop()
}

// ctxDo runs fn with a bounded context for ledger writes.
func (s *QuizScreen) ctxDo(fn func(ctx context.Context)) {
	ctx, cancel := s.env.Context()
	defer cancel()
	fn(ctx)
}

func (s *QuizScreen) logScore() {
	sc := s.sess.Score()
	s.env.Logger.Info().
		Str("section", s.section().Key()).
		Int("correct", sc.Correct).
		Int("answered", sc.Answered).
		Int("total", sc.Total).
		Msg("batch revealed")
}

// canEvaluate reports whether written feedback can be requested for the
// focused question.
func (s *QuizScreen) canEvaluate() bool {
	if s.env.Evaluator == nil {
		return false
	}
	q, ok := s.focused()
	if !ok || question.Gradable(q.Type) || len(review.Parts(q)) > 0 {
		return false
	}
	if _, opts, _ := review.Choices(q); len(opts) > 0 {
		return false
	}
	return s.sess.IsAnswered(q.ID)
}

func (s *QuizScreen) evaluate() tea.Cmd {
	if !s.canEvaluate() {
		if s.env.Evaluator == nil {
			s.notice = "Answer feedback is not configured."
		} else {
			s.notice = "Feedback is available for written answers only."
		}
		return nil
	}
	q, _ := s.focused()
	ticket, ok := s.sess.BeginEvaluation(q.ID)
	if !ok {
		if s.sess.Evaluating(q.ID) {
			s.notice = "Already checking this answer..."
		}
		return nil
	}
	req := evaluation.NewRequest(q, s.sess.Answer(q.ID).Text)
	owner, ev := s.sess, s.env.Evaluator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), evaluationTimeout)
		defer cancel()
		res, err := ev.Evaluate(ctx, req)
		return evaluatedMsg{owner: owner, ticket: ticket, Result: res, Err: err}
	}
}

// result builds the summary of the visible batch.
func (s *QuizScreen) result() summary.Result {
	msg, _ := s.sess.Result()
	batch := s.sess.Batch()
	rows := make([]summary.Row, len(batch))
	for i, q := range batch {
		a := s.sess.Answer(q.ID)
		rows[i] = summary.Row{
			Number:  s.sess.Offset() + i + 1,
			Prompt:  q.Prompt,
			Answer:  review.AnswerText(q, a),
			Verdict: review.Check(q, a),
		}
	}
	r := summary.Result{
		Section: s.breadcrumb(),
		Message: msg,
		Score:   s.sess.Score(),
		Rows:    rows,
	}
	if s.sess.CanTryMore() {
		r.TryMore = tryMoreMsg{owner: s.sess}
	}
	return r
}

func (s *QuizScreen) breadcrumb() string {
	return s.subject.Name + " › " + s.chapter.Name + " › " + s.ref.DisplayLabel()
}
