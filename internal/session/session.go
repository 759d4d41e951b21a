package session

import (
	"context"
	"fmt"

	"github.com/aniquiz/aniquiz/internal/batch"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/question"
)

// BeginLoad starts a content request for sec. Any request still in flight
// becomes stale.
func (s *Session) BeginLoad(sec ledger.Section, shuffle bool) LoadToken {
	s.token++
	s.pendingSec = sec
	s.pendingShuf = shuffle
	if s.phase != PhaseLoading {
		s.phaseBefore = s.phase
	}
	s.phase = PhaseLoading
	return s.token
}

// ApplyLoad installs the questions fetched for token. It returns false and
// changes nothing when token is stale.
func (s *Session) ApplyLoad(token LoadToken, all []question.Question) bool {
	if token != s.token {
		s.log.Debug().Uint64("token", uint64(token)).Msg("discarding stale load")
		return false
	}
	s.loadErr = nil
	s.Start(s.pendingSec, all, s.pendingShuf)
	return true
}

// FailLoad records a failed request for token and restores the phase the
// session had before the load began.
func (s *Session) FailLoad(token LoadToken, err error) bool {
	if token != s.token {
		return false
	}
	s.loadErr = err
	s.phase = s.phaseBefore
	if s.pool == nil {
		s.phase = PhaseEmpty
	}
	s.log.Warn().Err(err).Str("section", s.pendingSec.Key()).Msg("content load failed")
	return true
}

// Start fixes the draw order for all and shows the first batch.
func (s *Session) Start(sec ledger.Section, all []question.Question, shuffle bool) {
	s.section = sec
	s.shuffle = shuffle
	s.pool = batch.NewPool(all, s.cfg.BatchSize, shuffle, s.cfg.Rand)
	s.LoadBatch(s.pool.Draw(0))
}

// LoadBatch replaces the visible batch with r and clears answers, reveals
// and pending evaluations. Offset 0 enters one-by-one mode.
func (s *Session) LoadBatch(r batch.Result) {
	s.current = r
	s.clearBatchState()
	if r.Offset == 0 {
		s.oneByOne = true
	}
	if len(r.Batch) == 0 {
		s.phase = PhaseEmpty
		return
	}
	s.phase = PhaseActive
}

// TryMore shows the next batch from the same draw order. It requires every
// question of the visible batch to have been answered.
func (s *Session) TryMore() error {
	if s.pool == nil {
		return ErrNoBatch
	}
	if !s.CanTryMore() {
		return ErrNoMore
	}
	s.LoadBatch(s.pool.Draw(s.current.NewOffset))
	return nil
}

// SetAnswer stores a text answer. Unknown ids are ignored.
func (s *Session) SetAnswer(id, text string) {
	if _, ok := s.find(id); !ok {
		return
	}
	a := s.answers[id]
	a.Text = text
	s.answers[id] = a
}

// SetSubAnswer stores the answer to one part of a multi-part question.
func (s *Session) SetSubAnswer(id string, index int, text string) {
	if _, ok := s.find(id); !ok {
		return
	}
	s.answers[id] = s.answers[id].WithPart(index, text)
}

// RevealAll checks every answer in the batch, records misses and returns
// the score.
func (s *Session) RevealAll(ctx context.Context) Score {
	if len(s.current.Batch) == 0 {
		return Score{}
	}
	sc := s.Score()
	for _, q := range s.current.Batch {
		s.track(ctx, q)
	}
	s.allAnswered = sc.Answered == sc.Total
	s.phase = PhaseRevealed
	return sc
}

// ShowAllAnswers reveals every answer for study without scoring or
// touching the ledger.
func (s *Session) ShowAllAnswers() {
	if len(s.current.Batch) == 0 {
		return
	}
	s.phase = PhaseStudy
	s.allAnswered = true
}

// RevealCurrent shows the current question's answer and records it.
func (s *Session) RevealCurrent(ctx context.Context) error {
	q, ok := s.CurrentQuestion()
	if !ok {
		return ErrNoBatch
	}
	if !s.revealed[q.ID] {
		s.revealed[q.ID] = true
		s.track(ctx, q)
	}
	return nil
}

// Next moves the cursor forward. The current question must be answered or
// revealed first.
func (s *Session) Next() error {
	q, ok := s.CurrentQuestion()
	if !ok {
		return ErrNoBatch
	}
	if !s.IsAnswered(q.ID) && !s.IsRevealed(q.ID) {
		return ErrAdvanceBlocked
	}
	if s.AtLast() {
		return ErrAtEnd
	}
	s.cursor++
	return nil
}

// Previous moves the cursor back.
func (s *Session) Previous() error {
	if len(s.current.Batch) == 0 {
		return ErrNoBatch
	}
	if s.cursor == 0 {
		return ErrAtStart
	}
	s.cursor--
	return nil
}

// Finish ends one-by-one mode at the last question and scores the batch
// exactly as RevealAll does.
func (s *Session) Finish(ctx context.Context) (Score, error) {
	if len(s.current.Batch) == 0 {
		return Score{}, ErrNoBatch
	}
	if !s.AtLast() {
		return Score{}, ErrNotAtEnd
	}
	return s.RevealAll(ctx), nil
}

// Reset leaves the section. In-flight loads and evaluations are voided.
func (s *Session) Reset() {
	s.token++
	s.pool = nil
	s.current = batch.Result{}
	s.section = ledger.Section{}
	s.loadErr = nil
	s.oneByOne = false
	s.clearBatchState()
	s.phase = PhaseEmpty
}

// track adds or removes q from the ledger according to its answer. Only
// answered, gradable questions are recorded, and only for students.
func (s *Session) track(ctx context.Context, q question.Question) {
	if s.cfg.Ledger == nil || !s.cfg.Identity.RecordsMisses() {
		return
	}
	a := s.answers[q.ID]
	if a.IsEmpty() || !question.Gradable(q.Type) {
		return
	}
	sec := s.section
	sec.Type = q.Type

	var err error
	if question.IsCorrect(q, a) {
		err = s.cfg.Ledger.Remove(ctx, sec, q.ID)
	} else {
		err = s.cfg.Ledger.Add(ctx, sec, q)
	}
	if err != nil {
		s.log.Error().Err(err).Str("question", q.ID).Str("section", sec.Key()).Msg("ledger update failed")
	}
}

// Score is the derived result of a batch.
type Score struct {
	Correct  int
	Answered int
	Total    int
}

// Percent is Correct as a share of Total.
func (sc Score) Percent() float64 {
	if sc.Total == 0 {
		return 0
	}
	return float64(sc.Correct) / float64(sc.Total) * 100
}

func (sc Score) String() string {
	return fmt.Sprintf("%d/%d", sc.Correct, sc.Answered)
}

// Score recomputes the batch score from the stored answers.
func (s *Session) Score() Score {
	sc := Score{Total: len(s.current.Batch)}
	for _, q := range s.current.Batch {
		a := s.answers[q.ID]
		if a.IsEmpty() {
			continue
		}
		sc.Answered++
		if question.IsCorrect(q, a) {
			sc.Correct++
		}
	}
	return sc
}
