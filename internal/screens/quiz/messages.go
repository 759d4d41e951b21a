package quiz

import (
	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/question"
	"github.com/aniquiz/aniquiz/internal/session"
)

// Messages name the session they were produced for. A screen ignores
// messages for any other session.

// questionsLoadedMsg carries the raw records of one section fetch.
type questionsLoadedMsg struct {
	owner *session.Session
	token session.LoadToken
	Raws  []question.Raw
	Err   error
}

// evaluatedMsg carries the advisory result of one evaluation request.
type evaluatedMsg struct {
	owner  *session.Session
	ticket session.Ticket
	Result evaluation.Result
	Err    error
}

// tryMoreMsg asks the quiz to show its next batch. The result screen sends
// it after popping back to the quiz.
type tryMoreMsg struct {
	owner *session.Session
}
