// Package session implements the quiz state machine for one question-type
// section: batch loading, answer capture, reveal and grading, one-by-one
// navigation and missed-question tracking.
package session

import (
	"errors"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/aniquiz/aniquiz/internal/auth"
	"github.com/aniquiz/aniquiz/internal/batch"
	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/question"
)

// Phase is the session's position in its lifecycle.
type Phase int

const (
	PhaseLoading  Phase = iota // waiting for content
	PhaseActive                // batch visible, answers hidden
	PhaseRevealed              // answers checked and scored
	PhaseStudy                 // all answers shown without scoring
	PhaseEmpty                 // no content for the section
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseRevealed:
		return "revealed"
	case PhaseStudy:
		return "study"
	case PhaseEmpty:
		return "empty"
	}
	return "unknown"
}

var (
	ErrNoBatch        = errors.New("no batch loaded")
	ErrAdvanceBlocked = errors.New("answer or reveal the current question first")
	ErrAtStart        = errors.New("already at the first question")
	ErrAtEnd          = errors.New("already at the last question")
	ErrNotAtEnd       = errors.New("finish is only available at the last question")
	ErrNoMore         = errors.New("no more questions available")
)

// Config holds a session's collaborators.
type Config struct {
	// Ledger records missed questions. Nil disables tracking.
	Ledger ledger.Ledger

	// Identity gates ledger population: only students record misses.
	Identity auth.Identity

	// BatchSize defaults to batch.DefaultSize.
	BatchSize int

	// Rand is the shuffle source. Nil uses the global source.
	Rand *rand.Rand

	Logger zerolog.Logger
}

// LoadToken identifies one content request. Only the latest token may
// apply its result.
type LoadToken uint64

// Ticket identifies one pending evaluation request.
type Ticket struct {
	QuestionID string
	epoch      uint64
	seq        uint64
}

// Session is the state of one section's quiz. It is not safe for concurrent
// use; a single event loop drives it.
type Session struct {
	cfg Config
	log zerolog.Logger

	section ledger.Section
	shuffle bool
	phase   Phase

	// Load bookkeeping.
	token       LoadToken
	pendingSec  ledger.Section
	pendingShuf bool
	phaseBefore Phase
	loadErr     error

	pool    *batch.Pool
	current batch.Result

	answers     map[string]question.Answer
	revealed    map[string]bool
	oneByOne    bool
	cursor      int
	allAnswered bool

	// epoch changes whenever the visible batch does, voiding older tickets.
	epoch       uint64
	ticketSeq   uint64
	pending     map[string]Ticket
	evaluations map[string]evaluation.Result
}

// New creates a session waiting for its first load.
func New(cfg Config) *Session {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = batch.DefaultSize
	}
	s := &Session{
		cfg:   cfg,
		log:   cfg.Logger.With().Str("component", "session").Logger(),
		phase: PhaseLoading,
	}
	s.clearBatchState()
	return s
}

func (s *Session) clearBatchState() {
	s.answers = make(map[string]question.Answer)
	s.revealed = make(map[string]bool)
	s.pending = make(map[string]Ticket)
	s.evaluations = make(map[string]evaluation.Result)
	s.cursor = 0
	s.allAnswered = false
	s.epoch++
}

// Phase reports the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Section is the section the visible batch belongs to.
func (s *Session) Section() ledger.Section { return s.section }

// LoadError is the error of the latest failed load, if any.
func (s *Session) LoadError() error { return s.loadErr }

// Batch returns a copy of the visible questions.
func (s *Session) Batch() []question.Question {
	return append([]question.Question(nil), s.current.Batch...)
}

// Offset is the position of the visible batch in the draw order.
func (s *Session) Offset() int { return s.current.Offset }

// Available is the number of questions in the loaded section.
func (s *Session) Available() int {
	if s.pool == nil {
		return 0
	}
	return s.pool.Len()
}

// HasMore reports whether another batch exists after the visible one.
func (s *Session) HasMore() bool { return s.current.HasMore }

// AllAnswered reports whether every question was answered at the last
// reveal. It gates TryMore.
func (s *Session) AllAnswered() bool { return s.allAnswered }

// CanTryMore reports whether TryMore would succeed.
func (s *Session) CanTryMore() bool {
	return s.pool != nil && s.allAnswered && s.current.HasMore &&
		(s.phase == PhaseRevealed || s.phase == PhaseStudy)
}

// OneByOne reports whether navigation is per question.
func (s *Session) OneByOne() bool { return s.oneByOne }

// SetOneByOne switches between one-by-one and whole-batch presentation.
func (s *Session) SetOneByOne(on bool) { s.oneByOne = on }

// Cursor is the index of the current question in one-by-one mode.
func (s *Session) Cursor() int { return s.cursor }

// CurrentQuestion is the question under the cursor.
func (s *Session) CurrentQuestion() (question.Question, bool) {
	if s.cursor < 0 || s.cursor >= len(s.current.Batch) {
		return question.Question{}, false
	}
	return s.current.Batch[s.cursor], true
}

// AtLast reports whether the cursor is on the last question.
func (s *Session) AtLast() bool {
	return len(s.current.Batch) > 0 && s.cursor >= len(s.current.Batch)-1
}

// Answer returns the stored answer for id.
func (s *Session) Answer(id string) question.Answer { return s.answers[id] }

// IsAnswered reports whether id has a non-empty answer.
func (s *Session) IsAnswered(id string) bool { return !s.answers[id].IsEmpty() }

// IsRevealed reports whether id's reference answer is visible.
func (s *Session) IsRevealed(id string) bool {
	return s.phase == PhaseRevealed || s.phase == PhaseStudy || s.revealed[id]
}

// CurrentRevealed reports whether the current question has been revealed.
func (s *Session) CurrentRevealed() bool {
	q, ok := s.CurrentQuestion()
	return ok && s.IsRevealed(q.ID)
}

func (s *Session) find(id string) (question.Question, bool) {
	for _, q := range s.current.Batch {
		if q.ID == id {
			return q, true
		}
	}
	return question.Question{}, false
}
