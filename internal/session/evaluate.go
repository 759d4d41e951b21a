package session

import (
	"strings"

	"github.com/aniquiz/aniquiz/internal/evaluation"
)

// BeginEvaluation reserves the single evaluation slot for a question. It
// returns false when the question is unknown, has no text answer, or
// already has a request in flight.
func (s *Session) BeginEvaluation(id string) (Ticket, bool) {
	if _, ok := s.find(id); !ok {
		return Ticket{}, false
	}
	if strings.TrimSpace(s.answers[id].Text) == "" {
		return Ticket{}, false
	}
	if _, busy := s.pending[id]; busy {
		return Ticket{}, false
	}
	s.ticketSeq++
	t := Ticket{QuestionID: id, epoch: s.epoch, seq: s.ticketSeq}
	s.pending[id] = t
	return t, true
}

// CompleteEvaluation stores result for t. Results arriving after the batch
// changed, or after the cursor has left the question in one-by-one mode,
// are dropped.
func (s *Session) CompleteEvaluation(t Ticket, result evaluation.Result) bool {
	if t.epoch != s.epoch {
		return false
	}
	cur, ok := s.pending[t.QuestionID]
	if !ok || cur != t {
		return false
	}
	delete(s.pending, t.QuestionID)

	if s.oneByOne {
		q, ok := s.CurrentQuestion()
		if !ok || q.ID != t.QuestionID {
			s.log.Debug().Str("question", t.QuestionID).Msg("discarding evaluation for departed question")
			return false
		}
	}
	s.evaluations[t.QuestionID] = result
	return true
}

// Evaluating reports whether a request for id is in flight.
func (s *Session) Evaluating(id string) bool {
	_, ok := s.pending[id]
	return ok
}

// Evaluation returns the stored advisory result for id.
func (s *Session) Evaluation(id string) (evaluation.Result, bool) {
	r, ok := s.evaluations[id]
	return r, ok
}
